package main

import (
	"os"

	"github.com/spf13/cobra"
)

func init() {
	chatCmd := &cobra.Command{Use: "chat", Short: "Chat with a mind"}

	var mode, visitorName string
	startCmd := &cobra.Command{
		Use:   "start PERSONA_ID",
		Short: "Start a conversation with a mind",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]interface{}{"entityId": args[0]}
			if mode != "" {
				payload["mode"] = mode
			}
			if visitorName != "" {
				payload["visitorName"] = visitorName
			}
			data, err := doPostJSON(apiFlag+"/api/chat/conversations", payload)
			if err != nil {
				return err
			}
			printJSON(os.Stdout, data)
			return nil
		},
	}
	startCmd.Flags().StringVarP(&mode, "mode", "m", "", "Conversation mode (general, comfort, advice, estate)")
	startCmd.Flags().StringVarP(&visitorName, "name", "n", "", "Visitor display name")
	chatCmd.AddCommand(startCmd)

	sendCmd := &cobra.Command{
		Use:   "send CONVERSATION_ID MESSAGE",
		Short: "Send a message and print the mind's reply",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			url := apiFlag + "/api/chat/conversations/" + args[0] + "/messages"
			data, err := doPostJSON(url, map[string]interface{}{"content": args[1]})
			if err != nil {
				return err
			}
			printJSON(os.Stdout, data)
			return nil
		},
	}
	chatCmd.AddCommand(sendCmd)

	historyCmd := &cobra.Command{
		Use:   "history CONVERSATION_ID",
		Short: "Print conversation history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doGet(apiFlag + "/api/chat/conversations/" + args[0] + "/messages")
			if err != nil {
				return err
			}
			printJSON(os.Stdout, data)
			return nil
		},
	}
	chatCmd.AddCommand(historyCmd)

	rootCmd.AddCommand(chatCmd)
}
