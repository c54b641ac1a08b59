package main

import (
	"encoding/json"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/jobscout/internal/pipeline"
)

var rankTop int

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank employers by the job listings stored so far",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initPipeline(ctx, true)
		if err != nil {
			return err
		}
		defer env.Close()

		jobs, err := env.Persister.ReadJobs(ctx)
		if err != nil {
			return eris.Wrap(err, "read jobs")
		}

		ranked := pipeline.RankCompanies(jobs)
		if rankTop > 0 && rankTop < len(ranked) {
			ranked = ranked[:rankTop]
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(ranked)
	},
}

func init() {
	rankCmd.Flags().IntVar(&rankTop, "top", 0, "only print the first N companies")
	rootCmd.AddCommand(rankCmd)
}
