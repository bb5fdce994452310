package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sitelens/sitelens/internal/config"
	"github.com/sitelens/sitelens/internal/crawler"
	"github.com/sitelens/sitelens/internal/database"
)

// NewCompareCmd creates the compare command.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [site]",
		Short: "Diff the two most recent saved crawls of a site",
		Long: `Compare diffs the two most recent saved crawls of a site by content
hash and reports which pages were added, removed, or changed.

Crawls must have been saved with 'sitelens crawl --save'. Failed pages
are ignored on both sides, so a transient fetch error never shows up
as a content change.

Examples:
  sitelens compare example.com
  sitelens compare --json example.com`,
		Args: cobra.ExactArgs(1),
		RunE: runCompareCmd,
	}

	cmd.Flags().BoolP("json", "j", false, "Output the diff as JSON")

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	site, err := normalizeSiteArg(args[0])
	if err != nil {
		return err
	}

	jsonOut, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	// Missing history is an error here rather than something to create.
	db, err := database.Open(config.XDGDataDir(), database.Options{EnableWAL: true})
	if err != nil {
		return err
	}
	defer db.Close()

	changes, err := db.ChangedPages(context.Background(), site)
	if err != nil {
		return err
	}

	if jsonOut {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(changes)
	}

	printChangeSet(cmd, changes)
	return nil
}

// normalizeSiteArg reduces a site argument to the www-stripped hostname
// crawl snapshots are stored under, accepting either a bare host or a
// full URL.
func normalizeSiteArg(raw string) (string, error) {
	if strings.Contains(raw, "://") {
		u, err := url.Parse(raw)
		if err != nil || u.Hostname() == "" {
			return "", fmt.Errorf("invalid site %q", raw)
		}
		return crawler.StripWWW(u.Hostname()), nil
	}
	host := strings.TrimSuffix(strings.ToLower(raw), "/")
	if host == "" {
		return "", fmt.Errorf("invalid site %q", raw)
	}
	return crawler.StripWWW(host), nil
}

// printChangeSet renders the diff for terminals.
func printChangeSet(cmd *cobra.Command, changes *database.ChangeSet) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Comparing crawls of %s:\n", changes.Site)
	fmt.Fprintf(out, "  old: %s (%d pages)\n",
		changes.Old.DateCrawled.Format("2006-01-02 15:04:05"), changes.Old.PageCount)
	fmt.Fprintf(out, "  new: %s (%d pages)\n\n",
		changes.New.DateCrawled.Format("2006-01-02 15:04:05"), changes.New.PageCount)

	if changes.Empty() {
		fmt.Fprintln(out, "No changes detected.")
		return
	}

	if len(changes.Added) > 0 {
		fmt.Fprintf(out, "Added (%d):\n", len(changes.Added))
		for _, u := range changes.Added {
			fmt.Fprintf(out, "  + %s\n", u)
		}
		fmt.Fprintln(out)
	}

	if len(changes.Removed) > 0 {
		fmt.Fprintf(out, "Removed (%d):\n", len(changes.Removed))
		for _, u := range changes.Removed {
			fmt.Fprintf(out, "  - %s\n", u)
		}
		fmt.Fprintln(out)
	}

	if len(changes.Changed) > 0 {
		fmt.Fprintf(out, "Changed (%d):\n", len(changes.Changed))
		for _, c := range changes.Changed {
			fmt.Fprintf(out, "  ~ %s (%s, score %d -> %d)\n", c.URL, c.Role, c.OldScore, c.NewScore)
		}
	}
}
