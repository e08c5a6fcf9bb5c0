package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vitalvas/tacacsd/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Virtual-server configuration utilities",
}

var configCheckCmd = &cobra.Command{
	Use:   "check [path]",
	Short: "Validate a virtual-server policy file without starting the server",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigCheck,
}

func init() {
	configCmd.AddCommand(configCheckCmd)
}

func runConfigCheck(cmd *cobra.Command, args []string) error {
	path := "/etc/tacacsd/vhost.yaml"
	if len(args) == 1 {
		path = args[0]
	} else if env, err := config.LoadProcess(); err == nil {
		path = env.VhostConfig
	}

	if err := config.CheckVhostFile(path); err != nil {
		return fmt.Errorf("tacacsd: %s: %w", path, err)
	}

	fmt.Printf("%s: OK\n", path)
	return nil
}
