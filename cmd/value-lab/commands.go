package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/yourusername/value-lab/internal/ledger"
	"github.com/yourusername/value-lab/internal/models"
	"github.com/yourusername/value-lab/internal/portfolio"
	"github.com/yourusername/value-lab/internal/quotes"
)

// withApp wires the app for one command and releases it afterwards
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

func newAddCmd() *cobra.Command {
	var (
		entry   models.BetEntry
		prefill bool
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a new pending bet",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				if prefill && entry.Odds == 0 {
					p, err := a.tracker.PrefillEntry(ctx, entry.Matchup, entry.Selection)
					switch {
					case err == nil:
						entry.Odds = p.Odds
						if entry.Bookmaker == "" {
							entry.Bookmaker = p.Bookmaker
						}
					case errors.Is(err, models.ErrFeedUnavailable):
						return fmt.Errorf("odds feed unavailable, pass --odds to enter the price manually: %w", err)
					default:
						return err
					}
					if entry.Odds == quotes.Unavailable {
						return fmt.Errorf("no reference price for %q, pass --odds", entry.Selection)
					}
				}

				bet, err := a.tracker.RecordBet(ctx, entry)
				if err != nil {
					return err
				}
				fmt.Printf("Recorded %s @ %s (%s): implied %.2f%%, EV %.2f%%\n",
					bet.Selection, ledger.FormatNumber(bet.Odds), bet.Bookmaker, bet.ImpliedProbability, bet.ExpectedValue)
				return nil
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&entry.Event, "event", "", "Event name")
	flags.StringVar(&entry.Matchup, "matchup", "", "Matchup label, e.g. \"A vs B\"")
	flags.StringVar(&entry.Selection, "selection", "", "Side backed")
	flags.StringVar(&entry.Bookmaker, "bookmaker", "", "Bookmaker")
	flags.Float64Var(&entry.Odds, "odds", 0, "Decimal odds")
	flags.Float64Var(&entry.StatedProbability, "prob", 0, "Your win probability in percent")
	flags.Float64Var(&entry.Stake, "stake", 0, "Stake")
	flags.StringVar(&entry.Notes, "notes", "", "Free-text notes")
	flags.BoolVar(&prefill, "prefill", false, "Fill odds and bookmaker from the odds feed")
	_ = cmd.MarkFlagRequired("event")
	_ = cmd.MarkFlagRequired("matchup")
	_ = cmd.MarkFlagRequired("selection")
	_ = cmd.MarkFlagRequired("stake")

	return cmd
}

func newResultCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "result <position> <win|loss|void|pending>",
		Short: "Record the outcome of a bet",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			position, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid position %q", args[0])
			}
			result, ok := ledger.ParseResult(args[1])
			if !ok {
				return fmt.Errorf("invalid result %q", args[1])
			}

			return withApp(cmd, func(ctx context.Context, a *app) error {
				if err := a.tracker.SetResult(ctx, position, result); err != nil {
					return err
				}
				fmt.Printf("Bet %d marked %s\n", position, result)
				return nil
			})
		},
	}
}

func newReconcileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Settle every bet whose result is known",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				report, err := a.tracker.Reconcile(ctx)
				if err != nil {
					return err
				}

				fmt.Printf("Run %s: %d settled, %d skipped, %d conflicts, %d failed\n",
					report.RunID, len(report.Applied), report.Skipped, len(report.Conflicts), len(report.Failures))
				for _, c := range report.Conflicts {
					fmt.Printf("  conflict: %v\n", c)
				}
				for _, f := range report.Failures {
					fmt.Printf("  failed row %d: %s\n", f.Position, f.Error)
				}
				return nil
			})
		},
	}
}

func newSummaryCmd() *cobra.Command {
	var (
		csvPath  string
		jsonPath string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print portfolio performance",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				summary, err := a.tracker.Summary(ctx)
				if err != nil {
					return err
				}

				if asJSON {
					enc := json.NewEncoder(os.Stdout)
					enc.SetIndent("", "  ")
					return enc.Encode(summary)
				}

				if summary.Stale {
					fmt.Printf("WARNING: ledger unreadable, showing snapshot from %s\n\n", summary.SnapshotTakenAt.Format("2006-01-02 15:04:05"))
				}
				fmt.Print(portfolio.GenerateConsoleReport(summary.PortfolioSnapshot))

				if csvPath != "" {
					if err := portfolio.GenerateCSVExport(summary.PortfolioSnapshot, csvPath); err != nil {
						return fmt.Errorf("failed to export series: %w", err)
					}
					fmt.Printf("\nCumulative profit series written to %s\n", csvPath)
				}
				if jsonPath != "" {
					if err := portfolio.GenerateJSONExport(summary.PortfolioSnapshot, jsonPath); err != nil {
						return fmt.Errorf("failed to export series: %w", err)
					}
					fmt.Printf("\nCumulative profit series written to %s\n", jsonPath)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&csvPath, "csv", "", "Write the cumulative profit series to this CSV file")
	cmd.Flags().StringVar(&jsonPath, "series-json", "", "Write the cumulative profit series to this JSON file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the summary as JSON")
	return cmd
}

func newQuotesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "quotes",
		Short: "List upcoming matchups with their reference prices",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				matchups, err := a.tracker.ReferenceQuotes(ctx)
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "MATCHUP\tSIDE A\tSIDE B\tBOOKMAKER")
				for _, mq := range matchups {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
						mq.Matchup.Label(), formatPrice(mq.Quote.SideAPrice), formatPrice(mq.Quote.SideBPrice), mq.Quote.Bookmaker)
				}
				return w.Flush()
			})
		},
	}
}

func newAnalyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <matchup>",
		Short: "Ask the analysis service about a matchup",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				text, err := a.tracker.Analyze(ctx, strings.Join(args, " "))
				if err != nil {
					return err
				}
				fmt.Println(text)
				return nil
			})
		},
	}
}

func formatPrice(p float64) string {
	if p == quotes.Unavailable {
		return "-"
	}
	return ledger.FormatNumber(p)
}
