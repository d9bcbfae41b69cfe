package cli

import (
	"context"
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/amenk/import-product/internal/config"
	"github.com/amenk/import-product/internal/engine"
	"github.com/amenk/import-product/internal/store"
)

// session is an open database with the settings and logger of one command.
type session struct {
	cfg    *config.Config
	store  *store.Store
	logger *slog.Logger
}

// openSession resolves settings, sets up logging and opens the database,
// creating it if it does not exist.
func openSession(opts *RootOptions, cmd *cobra.Command) (*session, error) {
	cfg, err := opts.Settings()
	if err != nil {
		return nil, err
	}
	logger := opts.Logger(cmd.ErrOrStderr())

	logger.Debug("opening database", "path", cfg.Database)
	st, err := store.Open(cfg.Database)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return &session{cfg: cfg, store: st, logger: logger}, nil
}

func (s *session) Close() {
	if err := s.store.Close(); err != nil {
		s.logger.Error("error closing database", "error", err)
	}
}

// newEngine builds an engine over the session store. The journal clock
// resumes after the last recorded seq.
func (s *session) newEngine(ctx context.Context, kindsDir string, extra ...engine.EngineOption) (*engine.Engine, error) {
	kinds, err := loadEngineKinds(kindsDir)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load kinds", err)
	}
	last, err := s.store.LastJournalSeq(ctx)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to read journal", err)
	}

	opts := []engine.EngineOption{
		engine.WithJournal(s.store),
		engine.WithLogger(s.logger),
		engine.WithClock(engine.NewClockAt(last)),
		engine.WithWorkers(s.cfg.Workers),
		engine.WithMaxFailures(s.cfg.MaxFailures),
	}
	return engine.New(s.store, s.store, kinds, append(opts, extra...)...), nil
}

// newFormatter builds the output formatter of a command.
func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}
}

// commandContext returns the command context, or Background when the
// command runs outside Execute (tests).
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// failWith reports an error through the formatter and returns the matching
// exit error.
func failWith(f *OutputFormatter, exitCode int, code, message string, err error) error {
	msg := message
	if err != nil {
		msg = message + ": " + err.Error()
	}
	_ = f.Error(code, msg, nil)
	return WrapExitError(exitCode, code+": "+message, err)
}

// errorCode classifies an engine or store error.
func errorCode(err error) string {
	switch {
	case errors.Is(err, store.ErrNotFound), engine.IsNotFound(err):
		return ErrCodeNotFound
	case engine.IsRedirectLoop(err):
		return ErrCodeRedirectLoop
	case engine.IsInvalidInput(err):
		return ErrCodeInvalidInput
	case engine.IsStoreError(err):
		return ErrCodeStore
	default:
		return ErrCodeGeneric
	}
}
