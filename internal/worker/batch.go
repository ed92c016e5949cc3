package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ppiankov/casefile/internal/model"
)

// Checker repairs and normalizes one saved provider response
type Checker interface {
	CheckFile(ctx context.Context, path string) (*model.CheckReport, error)
}

// CheckJob checks a single saved response
type CheckJob struct {
	Path    string
	Checker Checker
}

// Execute runs the check
func (j *CheckJob) Execute(ctx context.Context) Result {
	if err := ctx.Err(); err != nil {
		return &CheckResult{Path: j.Path, Error: err}
	}
	report, err := j.Checker.CheckFile(ctx, j.Path)
	return &CheckResult{Path: j.Path, Report: report, Error: err}
}

// CheckResult is the outcome of one CheckJob
type CheckResult struct {
	Path   string
	Report *model.CheckReport
	Error  error
}

// GetError returns the error from the check
func (r *CheckResult) GetError() error {
	return r.Error
}

// BatchProcessor checks many saved responses concurrently
type BatchProcessor struct {
	checker     Checker
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(checker Checker, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		checker:     checker,
		concurrency: concurrency,
	}
}

// ProcessPaths checks every path and returns results sorted by path.
// Paths left unchecked because ctx ended carry ctx's error.
func (b *BatchProcessor) ProcessPaths(ctx context.Context, paths []string) []*CheckResult {
	if len(paths) == 0 {
		return []*CheckResult{}
	}

	jobs := make([]Job, len(paths))
	for i, path := range paths {
		jobs[i] = &CheckJob{Path: path, Checker: b.checker}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	done := make(map[string]bool, len(paths))
	results := make([]*CheckResult, 0, len(paths))
	for _, r := range pool.Run(jobs) {
		cr := r.(*CheckResult)
		done[cr.Path] = true
		results = append(results, cr)
	}
	for _, path := range paths {
		if !done[path] {
			err := ctx.Err()
			if err == nil {
				err = context.Canceled
			}
			results = append(results, &CheckResult{Path: path, Error: err})
			done[path] = true
		}
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Path < results[j].Path })
	return results
}

// ProcessFile reads paths from a list file and checks them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, listPath string) ([]*CheckResult, error) {
	paths, err := ReadPathsFromFile(listPath)
	if err != nil {
		return nil, fmt.Errorf("read paths: %w", err)
	}

	return b.ProcessPaths(ctx, paths), nil
}

// ReadPathsFromFile reads file paths (one per line), skipping blanks, comments and repeats
func ReadPathsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var paths []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			paths = append(paths, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return paths, nil
}
