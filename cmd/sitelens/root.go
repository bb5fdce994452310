package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for sitelens.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sitelens",
		Short: "Site crawl and content classification engine",
		Long: `sitelens crawls a website, extracts the readable content of every
discovered page, classifies each page's business role (money, trust,
authority, support), and scores pages by update priority.

Crawls can be persisted so later runs detect which pages were added,
removed, or changed.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
