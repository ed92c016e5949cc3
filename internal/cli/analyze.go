package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ppiankov/casefile/internal/extract"
	"github.com/ppiankov/casefile/internal/llm"
	"github.com/ppiankov/casefile/internal/model"
	"github.com/ppiankov/casefile/internal/pipeline"
	"github.com/ppiankov/casefile/internal/repair"
	"github.com/ppiankov/casefile/internal/worker"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	narrativePath string
	opposingPath  string
	outcomePath   string
	followUp      string
	analyzeTime   time.Duration
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze the case narrative with the configured provider",
	Long: `Analyze sends the narrative to a generative-text provider and merges the
reply into the case. Statuses, evidence links, instances and notes you
authored survive every re-analysis.

Example:
  casefile analyze --narrative story.md
  casefile analyze --narrative complaint.html --opposing response.txt
  casefile analyze --message "Focus on the overtime records"
  casefile analyze --provider anthropic --model claude-3-5-sonnet-20241022`,
	Args: cobra.NoArgs,
	RunE: runAnalyze,
}

var ingestCmd = &cobra.Command{
	Use:   "ingest <file|->",
	Short: "Merge a saved provider reply into the case",
	Long: `Ingest repairs, normalizes and merges a provider reply saved earlier,
without calling any provider.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readInput(args[0])
		if err != nil {
			return err
		}
		return withApp(func(ctx context.Context, a *app) error {
			out, err := pipeline.NewAnalyzer(nil, a.session, pipeline.Options{Logger: a.log}).Ingest(ctx, text)
			if out == nil {
				return err
			}
			if rerr := renderOutcome(out); rerr != nil {
				return rerr
			}
			return err
		})
	},
}

var repairCmd = &cobra.Command{
	Use:   "repair <file|->",
	Short: "Repair a provider reply and print the resulting JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readInput(args[0])
		if err != nil {
			return err
		}
		res, err := repair.Parse(text)
		if err != nil {
			return err
		}
		if len(res.Applied) > 0 {
			fmt.Fprintf(os.Stderr, "✓ Repaired with: %v\n", res.Applied)
		} else {
			fmt.Fprintf(os.Stderr, "✓ Already valid JSON\n")
		}
		fmt.Println(res.Text)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(repairCmd)

	analyzeCmd.Flags().StringVar(&narrativePath, "narrative", "", "narrative file (.txt, .md, .html)")
	analyzeCmd.Flags().StringVar(&opposingPath, "opposing", "", "opposing position file (optional)")
	analyzeCmd.Flags().StringVar(&outcomePath, "outcome", "", "desired outcome file (optional)")
	analyzeCmd.Flags().StringVarP(&followUp, "message", "m", "", "follow-up message instead of a full analysis")
	analyzeCmd.Flags().DurationVar(&analyzeTime, "timeout", 3*time.Minute, "overall analysis timeout")

	analyzeCmd.Flags().String("provider", "", "provider (openai, anthropic, ollama)")
	analyzeCmd.Flags().String("model", "", "provider model name")
	_ = viper.BindPFlag("llm.provider", analyzeCmd.Flags().Lookup("provider"))
	_ = viper.BindPFlag("llm.model", analyzeCmd.Flags().Lookup("model"))
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	inputs, err := readInputs()
	if err != nil {
		return err
	}

	return withApp(func(ctx context.Context, a *app) error {
		ctx, cancel := context.WithTimeout(ctx, analyzeTime)
		defer cancel()

		provider, err := llm.NewProvider(llm.ConfigFromModel(a.cfg.LLM))
		if err != nil {
			return fmt.Errorf("provider: %w", err)
		}
		if provider == nil {
			return pipeline.ErrNoProvider
		}

		if verbose {
			fmt.Fprintf(os.Stderr, "Provider: %s\n", provider.Name())
			fmt.Fprintf(os.Stderr, "Timeout: %v\n\n", analyzeTime)
		}

		limiter := worker.NewLimiter(a.cfg.RateLimiting.RequestsPerSecond, a.cfg.RateLimiting.BurstSize)
		analyzer := pipeline.NewAnalyzer(provider, a.session, pipeline.Options{
			Limiter:   limiter,
			Logger:    a.log,
			Model:     a.cfg.LLM.Model,
			MaxTokens: a.cfg.LLM.MaxTokens,
		})

		out, err := analyzer.Analyze(ctx, pipeline.Request{Inputs: inputs, Message: followUp})
		if out == nil {
			return fmt.Errorf("analysis failed: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ %s used %d tokens\n", out.Model, out.TokensUsed)
		}
		if rerr := renderOutcome(out); rerr != nil {
			return rerr
		}
		return err
	})
}

// readInputs loads whichever narrative files were given
func readInputs() (model.CaseInputs, error) {
	var inputs model.CaseInputs
	for _, f := range []struct {
		path string
		dst  *string
	}{
		{narrativePath, &inputs.Narrative},
		{opposingPath, &inputs.OpposingPosition},
		{outcomePath, &inputs.DesiredOutcome},
	} {
		if f.path == "" {
			continue
		}
		text, err := extract.ReadNarrative(f.path)
		if err != nil {
			return inputs, err
		}
		*f.dst = text
	}
	if inputs.Narrative == "" && (inputs.OpposingPosition != "" || inputs.DesiredOutcome != "") {
		return inputs, fmt.Errorf("--opposing and --outcome require --narrative")
	}
	return inputs, nil
}

func readInput(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

func renderOutcome(out *pipeline.Outcome) error {
	return render(out, func() {
		if len(out.Applied) > 0 {
			fmt.Fprintf(os.Stderr, "✓ Repaired reply with: %v\n", out.Applied)
		}
		for _, w := range out.Warnings {
			fmt.Fprintf(os.Stderr, "ℹ %s\n", w)
		}
		r := out.Result
		fmt.Fprintf(os.Stderr, "✓ Merged %d allegations, %d unstated claims, %d strategies, %d counter-arguments\n",
			len(r.StatedAllegations), len(r.UnstatedClaims), len(r.ResponseStrategies), len(r.CounterArguments))
	})
}
