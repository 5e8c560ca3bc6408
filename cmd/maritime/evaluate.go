package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/ChrisBAshton/smartresolution-module-maritime-collision/internal/config"
	"github.com/ChrisBAshton/smartresolution-module-maritime-collision/internal/dispute"
	"github.com/ChrisBAshton/smartresolution-module-maritime-collision/internal/store"
	"github.com/ChrisBAshton/smartresolution-module-maritime-collision/internal/tally"
	"github.com/spf13/cobra"
)

func newEvaluateCmd() *cobra.Command {
	var disputeID string
	var agentID int64
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Print an agent's results for a dispute",
		Long: `Compare an agent's answers with the other agent's and print the
results table and outcome summary. Results are provisional until both agents
have answered every question.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if disputeID == "" || agentID <= 0 {
				return fmt.Errorf("--dispute and a positive --agent are required")
			}
			return runEvaluate(cmd.Context(), cmd.OutOrStdout(), disputeID, agentID, jsonOutput)
		},
	}

	cmd.Flags().StringVar(&disputeID, "dispute", "", "dispute id")
	cmd.Flags().Int64Var(&agentID, "agent", 0, "platform agent id")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")

	return cmd
}

func runEvaluate(ctx context.Context, w io.Writer, disputeID string, agentID int64, jsonOutput bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	engine, err := newEngine(cfg)
	if err != nil {
		return err
	}
	db, err := store.New(cfg.Store)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	defer db.Close()

	svc := dispute.NewService(db, engine, nil, cfg.Web.BaseURL)

	snap, err := svc.Snapshot(ctx, disputeID, agentID)
	if err != nil {
		return err
	}
	phase := dispute.Resolve(snap, engine.Catalog)

	results, summary, err := svc.Evaluate(ctx, disputeID, agentID)
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"phase":   phase,
			"results": results,
			"summary": summary,
		})
	}

	printEvaluation(w, phase, results, summary)
	return nil
}

// summaryUnavailable is printed in place of the outcome while the decision
// tree still needs answers.
const summaryUnavailable = "Summary unavailable until questioning finishes."

func printEvaluation(w io.Writer, phase dispute.Phase, results []tally.Result, summary []string) {
	fmt.Fprintf(w, "Phase: %s\n\n", phase)
	if phase != dispute.PhaseResultsReady {
		fmt.Fprintf(w, "Questioning has not finished; results are provisional.\n\n")
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "QUESTION\tYOURS\tTHEIRS\tTALLY")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.QuestionID, r.YourAnswer, r.TheirAnswer, tallyMark(r.Tally))
	}
	tw.Flush()

	fmt.Fprintln(w)
	if len(summary) == 0 && phase != dispute.PhaseResultsReady {
		fmt.Fprintf(w, "%s\n", summaryUnavailable)
		return
	}
	for _, p := range summary {
		fmt.Fprintf(w, "%s\n\n", p)
	}
}

func tallyMark(ok bool) string {
	if ok {
		return "yes"
	}
	return "no"
}
