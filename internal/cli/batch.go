package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"time"

	"github.com/ppiankov/casefile/internal/logger"
	"github.com/ppiankov/casefile/internal/model"
	"github.com/ppiankov/casefile/internal/pipeline"
	"github.com/ppiankov/casefile/internal/worker"
	"github.com/spf13/cobra"
)

var (
	concurrency  int
	listFile     string
	batchTimeout time.Duration
)

var batchCmd = &cobra.Command{
	Use:   "batch [reply files...]",
	Short: "Check many saved provider replies in parallel",
	Long: `Batch repairs and normalizes saved provider replies concurrently and
reports, per file, which repair passes fired and what normalization dropped.
Nothing is merged into the case.

Example:
  casefile batch replies/*.txt
  casefile batch --file replies.txt --concurrency 8`,
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().StringVar(&listFile, "file", "", "file listing reply paths (one per line)")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 5*time.Minute, "total timeout for batch processing")
}

func runBatch(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && listFile == "" {
		return fmt.Errorf("give reply files as arguments or --file")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, batchTimeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.Logging.Mode, cfg.Output.Verbose)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	paths := args
	if listFile != "" {
		listed, err := worker.ReadPathsFromFile(listFile)
		if err != nil {
			return err
		}
		paths = append(paths, listed...)
	}

	if !jsonOutput {
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
		fmt.Fprintf(os.Stderr, "  Casefile Batch Check\n")
		fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "  Files:        %d\n", len(paths))
		fmt.Fprintf(os.Stderr, "  Workers:      %d\n", concurrency)
		fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
		fmt.Fprintf(os.Stderr, "\n")
	}

	processor := worker.NewBatchProcessor(pipeline.NewChecker(log), concurrency)
	results := processor.ProcessPaths(ctx, paths)

	reports := make([]*model.CheckReport, 0, len(results))
	parsed, repaired, failed := 0, 0, 0
	for _, r := range results {
		report := r.Report
		if r.Error != nil {
			report = &model.CheckReport{Source: r.Path, Error: r.Error.Error()}
		}
		reports = append(reports, report)

		switch {
		case !report.Parsed:
			failed++
		case len(report.Applied) > 0:
			repaired++
			parsed++
		default:
			parsed++
		}
	}

	return render(reports, func() {
		for _, report := range reports {
			if !report.Parsed {
				fmt.Fprintf(os.Stderr, "✗ %s: %s\n", report.Source, report.Error)
				continue
			}
			fmt.Fprintf(os.Stderr, "✓ %s (%d allegations, %d claims, %d strategies)\n",
				report.Source, report.Allegations, report.Claims, report.Strategies)
			if len(report.Applied) > 0 {
				fmt.Fprintf(os.Stderr, "    repaired: %v\n", report.Applied)
			}
			for _, w := range report.Warnings {
				fmt.Fprintf(os.Stderr, "    dropped:  %s\n", w)
			}
		}

		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
		fmt.Fprintf(os.Stderr, "  Batch Complete\n")
		fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "  Total:     %d files\n", len(reports))
		fmt.Fprintf(os.Stderr, "  Parsed:    %d (%d needed repair)\n", parsed, repaired)
		fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failed)
		fmt.Fprintf(os.Stderr, "\n")
	})
}
