package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ppiankov/casefile/internal/casemodel"
	"github.com/ppiankov/casefile/internal/llm"
	"github.com/ppiankov/casefile/internal/model"
	"github.com/ppiankov/casefile/internal/persist"
	"github.com/ppiankov/casefile/internal/score"
	"github.com/ppiankov/casefile/internal/session"
	"github.com/ppiankov/casefile/internal/store"
	"github.com/spf13/cobra"
)

var resetConfirmed bool

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the case file and evidence board",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app) error {
			m := a.session.Snapshot()
			return render(caseView{Case: m.Case, Board: m.Board}, func() { printCase(m) })
		})
	},
}

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Show the case readiness index and its signals",
	Long: `Score reports how prepared the case is: allegation coverage, evidence
verification, gap fill and allegation readiness. Every formula input is
shown. The index says nothing about the merits of the case.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app) error {
			result := score.NewScorer().Calculate(a.session.Snapshot())
			return render(result, func() {
				fmt.Printf("Readiness index: %d/100 (confidence: %s)\n\n", result.Index, result.Confidence)
				for _, sig := range result.Signals {
					fmt.Printf("  [%s] %s: %s\n", sig.Severity, sig.Type, sig.Description)
					if verbose {
						for k, v := range sig.Data {
							fmt.Printf("      %s = %v\n", k, v)
						}
					}
				}
			})
		})
	},
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the store, the provider and the case integrity",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app) error {
			ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
			defer cancel()

			failed := false
			check := func(name string, err error) {
				if err != nil {
					failed = true
					fmt.Fprintf(os.Stderr, "✗ %s: %v\n", name, err)
					return
				}
				fmt.Fprintf(os.Stderr, "✓ %s\n", name)
			}

			check(fmt.Sprintf("store (%s)", a.cfg.Store.Backend), probeStore(ctx, a.store, a.cfg.Store.Namespace))

			provider, err := llm.NewProvider(llm.ConfigFromModel(a.cfg.LLM))
			switch {
			case err != nil:
				check("provider", err)
			case provider == nil:
				fmt.Fprintf(os.Stderr, "ℹ provider: none configured\n")
			case !provider.IsAvailable(ctx):
				check("provider "+provider.Name(), fmt.Errorf("not reachable"))
			default:
				check("provider "+provider.Name(), nil)
			}

			errs := a.session.Snapshot().Validate()
			var integrity error
			if len(errs) > 0 {
				msgs := make([]string, len(errs))
				for i, e := range errs {
					msgs[i] = e.Error()
				}
				integrity = fmt.Errorf("%s", strings.Join(msgs, "; "))
			}
			check("case integrity", integrity)

			for _, section := range []string{persist.SectionCase, persist.SectionBoard} {
				if a.session.Held(section) {
					check(section+" section", session.ErrSectionHeld)
				}
			}

			if failed {
				return fmt.Errorf("doctor found problems")
			}
			return nil
		})
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Discard the case file and evidence board",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !resetConfirmed {
			return fmt.Errorf("reset discards the whole case; pass --yes to confirm")
		}
		return withApp(func(ctx context.Context, a *app) error {
			if err := a.session.Reset(ctx); err != nil {
				return err
			}
			done("Case reset")
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(resetCmd)

	resetCmd.Flags().BoolVar(&resetConfirmed, "yes", false, "confirm the reset")
}

type caseView struct {
	Case  model.CaseData   `json:"case"`
	Board model.BoardState `json:"board"`
}

// probeStore round-trips a small value through the store
func probeStore(ctx context.Context, s store.Store, namespace string) error {
	if p, ok := s.(interface{ Ping(context.Context) error }); ok {
		if err := p.Ping(ctx); err != nil {
			return err
		}
	}
	key := store.Key(namespace, "doctor")
	if err := s.Set(ctx, key, []byte("ok")); err != nil {
		return err
	}
	defer func() { _ = s.Delete(ctx, key) }()

	got, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if string(got) != "ok" {
		return fmt.Errorf("read back %q", got)
	}
	return nil
}

func printCase(m casemodel.Model) {
	in := m.Case.Inputs
	fmt.Printf("Narrative: %d characters\n", len(in.Narrative))
	if in.DesiredOutcome != "" {
		fmt.Printf("Desired outcome: %s\n", in.DesiredOutcome)
	}

	a := m.Case.Analysis
	if a == nil {
		fmt.Println("\nNo analysis yet. Run 'casefile analyze --narrative <file>'.")
	} else {
		fmt.Println("\nStated allegations:")
		for _, al := range a.StatedAllegations {
			fmt.Printf("  %s  [%s] %s (%s)\n", al.ID, al.Status, al.Claim, al.Category)
		}
		fmt.Println("\nPotential unstated claims:")
		for _, uc := range a.UnstatedClaims {
			fmt.Printf("  %s  %s (%s)\n", uc.ID, uc.Claim, uc.Category)
		}
		fmt.Println("\nResponse strategies:")
		for i, s := range a.ResponseStrategies {
			fmt.Printf("  #%d %s: %s\n", i, s.Claim, s.Strategy)
			for j, g := range s.EvidenceToGather {
				fmt.Printf("      gap %d: %s (%d linked)\n", j, g.Item, len(g.LinkedEvidenceIDs))
			}
			for _, inst := range s.Instances {
				fmt.Printf("      instance %s: %s\n", inst.ID, inst.Notes)
			}
		}
		fmt.Println("\nCounter-arguments:")
		for _, ca := range a.CounterArguments {
			fmt.Printf("  %s  %s\n", ca.ID, ca.Argument)
		}
		fmt.Println("\nDocument requests:")
		for _, r := range a.GoodFaithConferenceGuide.DocumentRequests {
			fmt.Printf("  %s  [%s] %s\n", r.ID, r.Status, r.Request)
		}
	}

	fmt.Println("\nEvidence board:")
	for _, colID := range m.Board.ColumnOrder {
		col := m.Board.Columns[colID]
		fmt.Printf("  %s (%s)\n", col.Title, col.ID)
		for _, eid := range col.EvidenceIDs {
			e := m.Board.Evidence[eid]
			fmt.Printf("    %s  [%s/%s] %s\n", e.ID, e.Type, e.ValidationStatus, e.Content)
		}
	}
}
