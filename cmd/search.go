package main

import (
	"encoding/json"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var (
	searchSave     bool
	searchPhrase   []string
	searchLocation string
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search job boards and print the listings found",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline(ctx, searchSave)
		if err != nil {
			return err
		}
		defer env.Close()

		phrases := searchPhrase
		if len(phrases) == 0 {
			phrases = searchPhrases()
		}
		location := searchLocation
		if location == "" {
			location = cfg.Search.Location
		}

		listings := env.Search.Search(ctx, phrases, location)

		if searchSave {
			if _, err := env.Persister.SaveJobs(ctx, listings); err != nil {
				return eris.Wrap(err, "save jobs")
			}
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(listings)
	},
}

func init() {
	searchCmd.Flags().BoolVar(&searchSave, "save", false, "append new listings to the Jobs table")
	searchCmd.Flags().StringSliceVar(&searchPhrase, "phrase", nil, "search phrase (repeatable; default search.phrases)")
	searchCmd.Flags().StringVar(&searchLocation, "location", "", "location filter (default search.location)")
	rootCmd.AddCommand(searchCmd)
}
