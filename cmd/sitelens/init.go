package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sitelens/sitelens/internal/config"
)

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter .sitelens configuration file",
		Long: `Init writes a commented .sitelens configuration template to the
current directory (or the path given with --path). It refuses to
overwrite an existing file.`,
		Args: cobra.NoArgs,
		RunE: runInitCmd,
	}

	cmd.Flags().String("path", config.FileName, "Destination path for the configuration file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	path, err := cmd.Flags().GetString("path")
	if err != nil {
		return err
	}

	if err := config.WriteStarterFile(path); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}
