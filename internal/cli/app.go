package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"github.com/ppiankov/casefile/internal/logger"
	"github.com/ppiankov/casefile/internal/model"
	"github.com/ppiankov/casefile/internal/persist"
	"github.com/ppiankov/casefile/internal/session"
	"github.com/ppiankov/casefile/internal/store"
)

// app bundles what every case command needs
type app struct {
	cfg     *model.Config
	log     *logger.Logger
	store   store.Store
	session *session.Session
}

// openApp loads configuration, opens the store and the case session
func openApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Logging.Mode, cfg.Output.Verbose)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	st, err := store.New(ctx, cfg.Store)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("open store: %w", err)
	}
	log.Debug("store opened", "backend", cfg.Store.Backend, "capacity", cfg.Store.CapacityBytes)

	adapter := persist.New(st, cfg.Store.Namespace, log)
	s, _ := session.Open(ctx, adapter, session.Options{
		Logger:   log,
		Notifier: session.NotifierFunc(printEvent),
	})

	return &app{cfg: cfg, log: log, store: st, session: s}, nil
}

func (a *app) close() {
	if c, ok := a.store.(interface{ Close() error }); ok {
		if err := c.Close(); err != nil {
			a.log.Warn("close store", "error", err)
		}
	}
	a.log.Sync()
}

// withApp runs fn against an opened app, cancelling on interrupt
func withApp(fn func(ctx context.Context, a *app) error) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	return fn(ctx, a)
}

// mutate applies one model operation and saves it
func mutate(fn session.Mutation) error {
	return withApp(func(ctx context.Context, a *app) error {
		return a.session.Update(ctx, fn)
	})
}

// printEvent reports failures and notices on stderr
func printEvent(ev model.Event) {
	marker := "ℹ"
	if ev.Kind.Fatal() {
		marker = "✗"
	}
	fmt.Fprintf(os.Stderr, "%s %s\n", marker, ev.Message)
}

// render prints v as JSON when --json is set, otherwise calls human
func render(v interface{}, human func()) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	human()
	return nil
}

func done(format string, a ...interface{}) {
	if jsonOutput {
		return
	}
	fmt.Fprintf(os.Stderr, "✓ "+format+"\n", a...)
}
