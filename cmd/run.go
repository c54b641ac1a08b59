package main

import (
	"encoding/json"
	"os/signal"
	"sort"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/jobscout/internal/pipeline"
	"github.com/sells-group/jobscout/internal/resilience"
)

var (
	runDryRun bool
	runTop    int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full search, rank, discover and save pipeline",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline(ctx, !runDryRun)
		if err != nil {
			return err
		}
		defer env.Close()

		result, runErr := env.Pipeline.Run(ctx, pipeline.RunOptions{TopN: runTop, DryRun: runDryRun})

		zap.L().Info("run complete",
			zap.String("run_id", result.RunID),
			zap.Int("jobs_added", result.JobsAdded),
			zap.Int("decision_makers_added", result.DecisionMakersAdded),
		)
		if hosts := trippedHosts(env.Fetcher.BreakerStates()); len(hosts) > 0 {
			zap.L().Warn("run: hosts left with a tripped circuit", zap.Strings("hosts", hosts))
		}

		// Print result JSON to stdout
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return eris.Wrap(err, "encode result")
		}
		return eris.Wrap(runErr, "pipeline run")
	},
}

// trippedHosts lists, sorted, the hosts whose circuit is not closed.
func trippedHosts(states map[string]resilience.CircuitState) []string {
	var hosts []string
	for h, st := range states {
		if st != resilience.CircuitClosed {
			hosts = append(hosts, h)
		}
	}
	sort.Strings(hosts)
	return hosts
}

func init() {
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "scrape and enrich without writing to the store")
	runCmd.Flags().IntVar(&runTop, "top", 0, "number of top companies to research (default pipeline.top_companies)")
	rootCmd.AddCommand(runCmd)
}
