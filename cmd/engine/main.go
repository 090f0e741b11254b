// Command engine runs cost and subsidy assessments for the jobs listed in a
// TOML run configuration.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	envFile    string
)

var rootCmd = &cobra.Command{
	Use:           "engine",
	Short:         "Mobile infrastructure cost and subsidy engine",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "engine.toml", "Run configuration file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "Optional .env file read after the configuration")

	rootCmd.AddCommand(runCmd, validateCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
