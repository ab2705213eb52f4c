package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"snatcher/internal/core"
	"snatcher/internal/providers"
)

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var req core.SearchRequest

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search every provider for an episode or a whole season",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := req.Validate(); err != nil {
				return err
			}
			manager, err := ctx.ensureManager(cmd.Context())
			if err != nil {
				return err
			}

			results, err := manager.Search(cmd.Context(), req)
			if err != nil {
				return err
			}
			printResults(cmd.OutOrStdout(), results)

			if !req.Snatch {
				return nil
			}
			if len(results) == 0 {
				return fmt.Errorf("nothing to snatch for %s", req.Show)
			}
			best, err := manager.SnatchBest(cmd.Context(), results)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Snatched", best.Name)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&req.Show, "show", "", "Show name as used in release titles")
	flags.IntVar(&req.Season, "season", 1, "Season number")
	flags.IntVar(&req.Episode, "episode", 0, "Episode number; omit to search the whole season")
	flags.IntVar(&req.Absolute, "absolute", 0, "Absolute episode number for anime")
	flags.StringVar(&req.AirDate, "air-date", "", "Air date (YYYY-MM-DD) for air-by-date shows")
	flags.BoolVar(&req.Anime, "anime", false, "The show is an anime")
	flags.BoolVar(&req.AirByDate, "air-by-date", false, "The show is numbered by air date")
	flags.BoolVar(&req.Manual, "manual", false, "Query indexers when the cache has nothing")
	flags.StringVar(&req.Query, "query", "", "Search with this text instead of generated terms")
	flags.BoolVar(&req.Snatch, "snatch", false, "Snatch the best result")
	_ = cmd.MarkFlagRequired("show")

	return cmd
}

func printResults(out io.Writer, results []*providers.SearchResult) {
	if len(results) == 0 {
		fmt.Fprintln(out, "No results")
		return
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tPROVIDER\tKIND\tQUALITY\tSIZE")
	for _, r := range results {
		provider := ""
		if r.Provider != nil {
			provider = r.Provider.Name()
		}
		size := "-"
		if r.Size > 0 {
			size = humanize.Bytes(uint64(r.Size))
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.Name, provider, r.Kind, r.Quality, size)
	}
	tw.Flush()
}
