// Package main provides the tacacsd daemon CLI.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "tacacsd",
	Short: "TACACS+ AAA server daemon",
	Long: `tacacsd is a TACACS+ authentication, authorization, and accounting
server. Process-wide settings come from TACACSD_* environment variables;
recv/process/send policy comes from a virtual-server YAML file that is
hot-reloaded on change.`,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)
}
