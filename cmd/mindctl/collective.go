package main

import (
	"os"

	"github.com/spf13/cobra"
)

func init() {
	collectiveCmd := &cobra.Command{Use: "collective", Short: "Collective operations"}

	mindsCmd := &cobra.Command{
		Use:   "minds",
		Short: "List minds in the collective",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doGet(apiFlag + "/api/collective/minds")
			if err != nil {
				return err
			}
			printJSON(os.Stdout, data)
			return nil
		},
	}
	collectiveCmd.AddCommand(mindsCmd)

	consultCmd := &cobra.Command{
		Use:   "consult QUESTION",
		Short: "Put a question to the collective",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doPostJSON(apiFlag+"/api/collective/consult", map[string]interface{}{"question": args[0]})
			if err != nil {
				return err
			}
			printJSON(os.Stdout, data)
			return nil
		},
	}
	collectiveCmd.AddCommand(consultCmd)

	rootCmd.AddCommand(collectiveCmd)
}
