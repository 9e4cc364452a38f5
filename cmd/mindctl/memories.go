package main

import (
	"fmt"
	"net/http"
	"net/url"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	memoriesCmd := &cobra.Command{Use: "memories", Short: "Memory operations"}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List memories, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doGet(apiFlag + "/api/memories")
			if err != nil {
				return err
			}
			printJSON(os.Stdout, data)
			return nil
		},
	}
	memoriesCmd.AddCommand(listCmd)

	var searchQuery, searchCategory string
	searchCmd := &cobra.Command{
		Use:   "search",
		Short: "Search memories by text and category",
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			if searchQuery != "" {
				q.Set("q", searchQuery)
			}
			if searchCategory != "" {
				q.Set("category", searchCategory)
			}
			data, err := doGet(apiFlag + "/api/memories/search?" + q.Encode())
			if err != nil {
				return err
			}
			printJSON(os.Stdout, data)
			return nil
		},
	}
	searchCmd.Flags().StringVarP(&searchQuery, "query", "q", "", "Text to match in title or content")
	searchCmd.Flags().StringVarP(&searchCategory, "category", "c", "", "Category filter")
	memoriesCmd.AddCommand(searchCmd)

	var title, content, category string
	var importance int
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add a memory",
		RunE: func(cmd *cobra.Command, args []string) error {
			if content == "" {
				return fmt.Errorf("--content required")
			}
			payload := map[string]interface{}{"content": content}
			if title != "" {
				payload["title"] = title
			}
			if category != "" {
				payload["category"] = category
			}
			if importance != 0 {
				payload["importance"] = importance
			}
			data, err := doPostJSON(apiFlag+"/api/memories", payload)
			if err != nil {
				return err
			}
			printJSON(os.Stdout, data)
			return nil
		},
	}
	addCmd.Flags().StringVar(&title, "title", "", "Memory title")
	addCmd.Flags().StringVar(&content, "content", "", "Memory content (required)")
	addCmd.Flags().StringVarP(&category, "category", "c", "", "Category (childhood, family, career, relationship, achievement, challenge, lesson, tradition, travel, friendship, loss, joy, other)")
	addCmd.Flags().IntVarP(&importance, "importance", "i", 0, "Importance 1-10")
	_ = addCmd.MarkFlagRequired("content")
	memoriesCmd.AddCommand(addCmd)

	deleteCmd := &cobra.Command{
		Use:   "delete MEMORY_ID",
		Short: "Delete a memory by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doJSON(http.MethodDelete, apiFlag+"/api/memories/"+args[0], nil)
			if err != nil {
				return err
			}
			printJSON(os.Stdout, data)
			return nil
		},
	}
	memoriesCmd.AddCommand(deleteCmd)

	var importText string
	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Extract memories from free-form text",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doPostJSON(apiFlag+"/api/memories/import", map[string]interface{}{"text": importText})
			if err != nil {
				return err
			}
			printJSON(os.Stdout, data)
			return nil
		},
	}
	importCmd.Flags().StringVar(&importText, "text", "", "Life story text to extract memories from (required)")
	_ = importCmd.MarkFlagRequired("text")
	memoriesCmd.AddCommand(importCmd)

	promptCmd := &cobra.Command{
		Use:   "prompt",
		Short: "Get a reflection prompt",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doGet(apiFlag + "/api/memories/prompt")
			if err != nil {
				return err
			}
			printJSON(os.Stdout, data)
			return nil
		},
	}
	memoriesCmd.AddCommand(promptCmd)

	rootCmd.AddCommand(memoriesCmd)
}
