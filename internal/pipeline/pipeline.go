// Package pipeline turns provider replies into merged case analysis:
// rate-limited provider call, repair, normalization, then a ticketed merge.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ppiankov/casefile/internal/casemodel"
	"github.com/ppiankov/casefile/internal/llm"
	"github.com/ppiankov/casefile/internal/logger"
	"github.com/ppiankov/casefile/internal/model"
	"github.com/ppiankov/casefile/internal/normalize"
	"github.com/ppiankov/casefile/internal/repair"
	"github.com/ppiankov/casefile/internal/session"
	"github.com/ppiankov/casefile/internal/worker"
)

var (
	ErrNoProvider  = errors.New("no provider configured")
	ErrNoNarrative = errors.New("a narrative is required before analysis")
)

// Options tunes an Analyzer; zero values are usable
type Options struct {
	Limiter   *worker.Limiter
	Logger    *logger.Logger
	Model     string
	MaxTokens int
}

// Analyzer sends the case to a provider and merges what comes back
type Analyzer struct {
	provider  llm.Provider
	session   *session.Session
	limiter   *worker.Limiter
	log       *logger.Logger
	model     string
	maxTokens int
}

// NewAnalyzer creates an analyzer; provider may be nil for offline ingest
func NewAnalyzer(provider llm.Provider, s *session.Session, opts Options) *Analyzer {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &Analyzer{
		provider:  provider,
		session:   s,
		limiter:   opts.Limiter,
		log:       log,
		model:     opts.Model,
		maxTokens: opts.MaxTokens,
	}
}

// Request is one analysis turn
type Request struct {
	// Inputs replace the stored inputs when Narrative is set
	Inputs model.CaseInputs

	// Message is a follow-up turn; empty means the full analysis prompt
	Message string
}

// Outcome reports what one analysis turn did
type Outcome struct {
	Result     *model.AnalysisResult // Normalized analysis before merging
	Applied    []string              // Repair passes that changed the reply
	Warnings   []normalize.Warning
	Events     []model.Event // Warnings and cascade notices, in that order
	Model      string
	TokensUsed int
}

// Analyze runs one provider turn and merges the reply into the session.
// A persistence failure returns the outcome together with the error; the
// merge has taken effect in memory.
func (a *Analyzer) Analyze(ctx context.Context, req Request) (*Outcome, error) {
	if a.provider == nil {
		return nil, ErrNoProvider
	}

	inputs := req.Inputs
	if strings.TrimSpace(inputs.Narrative) != "" {
		if err := a.session.Update(ctx, func(m casemodel.Model) (casemodel.Model, []model.Event, error) {
			next, err := m.SetInputs(inputs)
			return next, nil, err
		}); err != nil {
			a.log.Warn("inputs not saved", "error", err)
		}
	} else {
		inputs = a.session.Snapshot().Case.Inputs
	}
	if strings.TrimSpace(inputs.Narrative) == "" && strings.TrimSpace(req.Message) == "" {
		return nil, ErrNoNarrative
	}

	ticket := a.session.Ticket()
	history := a.session.Snapshot().Case.Conversation

	prompt := strings.TrimSpace(req.Message)
	if prompt == "" {
		prompt = llm.BuildPrompt(inputs)
	}

	if a.limiter != nil {
		if err := a.limiter.Wait(ctx, a.provider.Name()); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	a.log.Debug("calling provider", "provider", a.provider.Name(), "history", len(history))
	resp, err := a.provider.Analyze(ctx, llm.AnalyzeRequest{
		Inputs:    inputs,
		History:   history,
		Prompt:    prompt,
		Model:     a.model,
		MaxTokens: a.maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", a.provider.Name(), err)
	}

	out, err := a.apply(ctx, ticket, resp.Text)
	if out == nil {
		return nil, err
	}
	out.Model = resp.Model
	out.TokensUsed = resp.TokensUsed

	now := a.session.Now().UTC()
	if cerr := a.session.Update(ctx, func(m casemodel.Model) (casemodel.Model, []model.Event, error) {
		return m.AppendConversation(
			model.ChatMessage{Role: "user", Content: prompt, At: now},
			model.ChatMessage{Role: "assistant", Content: resp.Text, At: now},
		), nil, nil
	}); cerr != nil && err == nil {
		err = cerr
	}
	return out, err
}

// Ingest merges an already-saved provider reply without calling a provider
func (a *Analyzer) Ingest(ctx context.Context, text string) (*Outcome, error) {
	return a.apply(ctx, a.session.Ticket(), text)
}

func (a *Analyzer) apply(ctx context.Context, ticket session.Ticket, text string) (*Outcome, error) {
	result, parsed, warnings, err := interpret(text)
	if err != nil {
		a.log.Warn("provider reply rejected", "kind", model.KindOf(err), "error", err)
		return nil, err
	}
	if parsed.Suspect() {
		a.log.Info("provider reply repaired", "passes", parsed.Applied)
	}

	out := &Outcome{
		Result:   result,
		Applied:  parsed.Applied,
		Warnings: warnings,
	}
	for _, w := range warnings {
		a.log.Warn("normalization dropped data", "path", w.Path, "reason", w.Reason)
		out.Events = append(out.Events, w.Event())
	}

	events, err := a.session.MergeAnalysis(ctx, ticket, result)
	if errors.Is(err, session.ErrStaleTicket) {
		return nil, err
	}
	out.Events = append(out.Events, events...)
	return out, err
}

// interpret repairs and normalizes a reply, classifying failures
func interpret(text string) (*model.AnalysisResult, *repair.Result, []normalize.Warning, error) {
	parsed, err := repair.Parse(text)
	if err != nil {
		return nil, nil, nil, &model.Failure{
			Kind:    model.FailureRepair,
			Message: "provider reply could not be parsed as JSON",
			Err:     err,
		}
	}

	result, warnings, err := normalize.Normalize(parsed.Value)
	if err != nil {
		return nil, parsed, nil, &model.Failure{
			Kind:    model.FailureEmptyShape,
			Message: "provider reply holds no analysis",
			Err:     err,
		}
	}
	return result, parsed, warnings, nil
}
