package main

import (
	"net/http"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	entityCmd := &cobra.Command{Use: "entity", Short: "Mind entity operations"}

	getCmd := &cobra.Command{
		Use:   "get",
		Short: "Get the caller's mind entity",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doGet(apiFlag + "/api/entity")
			if err != nil {
				return err
			}
			printJSON(os.Stdout, data)
			return nil
		},
	}
	entityCmd.AddCommand(getCmd)

	synthesizeCmd := &cobra.Command{
		Use:   "synthesize",
		Short: "Synthesize the mind entity from profile, memories, and assessments",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doPostJSON(apiFlag+"/api/entity/synthesize", map[string]interface{}{})
			if err != nil {
				return err
			}
			printJSON(os.Stdout, data)
			return nil
		},
	}
	entityCmd.AddCommand(synthesizeCmd)

	var isPublic, inCollective bool
	settingsCmd := &cobra.Command{
		Use:   "settings",
		Short: "Update entity visibility settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]interface{}{}
			if cmd.Flags().Changed("public") {
				payload["isPublic"] = isPublic
			}
			if cmd.Flags().Changed("collective") {
				payload["inCollective"] = inCollective
			}
			data, err := doJSON(http.MethodPatch, apiFlag+"/api/entity/settings", payload)
			if err != nil {
				return err
			}
			printJSON(os.Stdout, data)
			return nil
		},
	}
	settingsCmd.Flags().BoolVar(&isPublic, "public", false, "List the mind in the public ocean")
	settingsCmd.Flags().BoolVar(&inCollective, "collective", false, "Join the collective")
	entityCmd.AddCommand(settingsCmd)

	shareCmd := &cobra.Command{
		Use:   "share-link",
		Short: "Generate share links for the mind entity",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doPostJSON(apiFlag+"/api/entity/share-link", map[string]interface{}{})
			if err != nil {
				return err
			}
			printJSON(os.Stdout, data)
			return nil
		},
	}
	entityCmd.AddCommand(shareCmd)

	rootCmd.AddCommand(entityCmd)

	oceanCmd := &cobra.Command{
		Use:   "ocean",
		Short: "Browse public minds",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doGet(apiFlag + "/api/ocean")
			if err != nil {
				return err
			}
			printJSON(os.Stdout, data)
			return nil
		},
	}
	rootCmd.AddCommand(oceanCmd)
}
