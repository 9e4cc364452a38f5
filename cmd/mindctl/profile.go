package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	profileCmd := &cobra.Command{Use: "profile", Short: "Profile operations"}

	getCmd := &cobra.Command{
		Use:   "get",
		Short: "Get the caller's profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doGet(apiFlag + "/api/profile")
			if err != nil {
				return err
			}
			printJSON(os.Stdout, data)
			return nil
		},
	}
	profileCmd.AddCommand(getCmd)

	var patchJSON string
	saveCmd := &cobra.Command{
		Use:   "save",
		Short: "Merge profile fields from a JSON patch",
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch map[string]interface{}
			if err := json.Unmarshal([]byte(patchJSON), &patch); err != nil {
				return fmt.Errorf("profile patch must be a JSON object: %w", err)
			}
			data, err := doJSON(http.MethodPut, apiFlag+"/api/profile", patch)
			if err != nil {
				return err
			}
			printJSON(os.Stdout, data)
			return nil
		},
	}
	saveCmd.Flags().StringVarP(&patchJSON, "json", "j", "", "Profile patch as a JSON object (required)")
	_ = saveCmd.MarkFlagRequired("json")
	profileCmd.AddCommand(saveCmd)

	completenessCmd := &cobra.Command{
		Use:   "completeness",
		Short: "Show profile completeness score and tips",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doGet(apiFlag + "/api/profile/completeness")
			if err != nil {
				return err
			}
			printJSON(os.Stdout, data)
			return nil
		},
	}
	profileCmd.AddCommand(completenessCmd)

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show profile, memory, and mind entity stats",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doGet(apiFlag + "/api/profile/stats")
			if err != nil {
				return err
			}
			printJSON(os.Stdout, data)
			return nil
		},
	}
	profileCmd.AddCommand(statsCmd)

	rootCmd.AddCommand(profileCmd)
}
