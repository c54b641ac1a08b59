package main

import (
	"encoding/json"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var (
	discoverCompany string
	discoverSave    bool
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find decision makers at one company and print them",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline(ctx, discoverSave)
		if err != nil {
			return err
		}
		defer env.Close()

		dms := env.Discovery.Discover(ctx, discoverCompany)

		if discoverSave {
			if _, err := env.Persister.SaveDecisionMakers(ctx, dms); err != nil {
				return eris.Wrap(err, "save decision makers")
			}
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(dms)
	},
}

func init() {
	discoverCmd.Flags().StringVar(&discoverCompany, "company", "", "company name (required)")
	discoverCmd.Flags().BoolVar(&discoverSave, "save", false, "append new decision makers to the Decision Makers table")
	_ = discoverCmd.MarkFlagRequired("company")
	rootCmd.AddCommand(discoverCmd)
}
