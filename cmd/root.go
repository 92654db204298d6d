package cmd

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "askdocs",
	Short: "Retrieval-augmented document Q&A server",
	Long: `askdocs indexes uploaded documents as vector embeddings and answers
natural-language questions over them with cited sources, optionally
supplementing answers with live web search for legal and regulatory
topics.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "askdocs.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
