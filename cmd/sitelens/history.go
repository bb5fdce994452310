package main

import (
	"context"
	"fmt"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/sitelens/sitelens/internal/config"
	"github.com/sitelens/sitelens/internal/database"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [site]",
		Short: "List saved crawl snapshots",
		Long: `History lists crawl snapshots saved with 'sitelens crawl --save',
most recent first. With a site argument, only that site's crawls are
listed. With --latest, one line per site showing its most recent crawl
time instead of the full snapshot list.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().Bool("latest", false, "Show only the most recent crawl time per site")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	site := ""
	if len(args) == 1 {
		var err error
		site, err = normalizeSiteArg(args[0])
		if err != nil {
			return err
		}
	}

	latest, err := cmd.Flags().GetBool("latest")
	if err != nil {
		return err
	}

	db, err := database.Open(config.XDGDataDir(), database.Options{EnableWAL: true})
	if err != nil {
		return err
	}
	defer db.Close()

	if latest {
		return printLatestCrawlTimes(cmd, db, site)
	}

	crawls, err := db.ListCrawls(context.Background(), site)
	if err != nil {
		return err
	}

	if len(crawls) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No saved crawls. Run 'sitelens crawl --save <site>' first.")
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSITE\tDATE\tPAGES\tFAILED")
	for _, c := range crawls {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\n",
			c.ID, c.Site, c.DateCrawled.Format("2006-01-02 15:04:05"), c.PageCount, c.FailedCount)
	}
	return tw.Flush()
}

// printLatestCrawlTimes renders one line per site with its most recent
// crawl time, alphabetically by site.
func printLatestCrawlTimes(cmd *cobra.Command, db *database.HistoryDB, site string) error {
	latest, err := db.LatestCrawlTimes(context.Background())
	if err != nil {
		return err
	}
	if site != "" {
		when, ok := latest[site]
		if !ok {
			fmt.Fprintf(cmd.OutOrStdout(), "No saved crawls of %s.\n", site)
			return nil
		}
		latest = map[string]time.Time{site: when}
	}
	if len(latest) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No saved crawls. Run 'sitelens crawl --save <site>' first.")
		return nil
	}

	sites := make([]string, 0, len(latest))
	for s := range latest {
		sites = append(sites, s)
	}
	sort.Strings(sites)

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SITE\tLAST CRAWLED")
	for _, s := range sites {
		fmt.Fprintf(tw, "%s\t%s\n", s, latest[s].Format("2006-01-02 15:04:05"))
	}
	return tw.Flush()
}
