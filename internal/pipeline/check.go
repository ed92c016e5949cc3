package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/ppiankov/casefile/internal/logger"
	"github.com/ppiankov/casefile/internal/model"
)

// maxReplyBytes bounds a saved provider reply read from disk
const maxReplyBytes = 4 << 20

// Checker reports how saved replies repair and normalize without touching a case
type Checker struct {
	log *logger.Logger
}

// NewChecker creates a checker
func NewChecker(log *logger.Logger) *Checker {
	if log == nil {
		log = logger.Nop()
	}
	return &Checker{log: log}
}

// CheckFile reads one saved reply. Unreadable files are errors; replies that
// fail to repair or normalize are reported, not returned as errors.
func (c *Checker) CheckFile(ctx context.Context, path string) (*model.CheckReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open reply: %w", err)
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(io.LimitReader(f, maxReplyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read reply: %w", err)
	}
	if len(data) > maxReplyBytes {
		return nil, fmt.Errorf("reply too large: %s", path)
	}

	return c.Check(path, string(data)), nil
}

// Check repairs and normalizes text, labelling the report with source
func (c *Checker) Check(source, text string) *model.CheckReport {
	report := &model.CheckReport{Source: source}

	result, parsed, warnings, err := interpret(text)
	if parsed != nil {
		report.Applied = parsed.Applied
	}
	if err != nil {
		c.log.Debug("reply rejected", "source", source, "kind", model.KindOf(err))
		report.Error = err.Error()
		return report
	}

	report.Parsed = true
	report.Allegations = len(result.StatedAllegations)
	report.Claims = len(result.UnstatedClaims)
	report.Strategies = len(result.ResponseStrategies)
	for _, w := range warnings {
		report.Warnings = append(report.Warnings, w.String())
	}
	return report
}
