package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/askdocs/askdocs/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default askdocs configuration file",
	Long:  `Writes a default askdocs.yml to the path given by --config, ready to edit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(cfgFile); err == nil {
			return fmt.Errorf("%s already exists", cfgFile)
		}

		cfg := config.DefaultConfig()
		if err := cfg.Save(cfgFile); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Wrote %s\n", cfgFile)
		fmt.Println("Set auth_secret and export the provider API key before running `askdocs serve`.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
