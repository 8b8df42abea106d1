package cli

import (
	"context"
	"errors"
	"log/slog"

	"github.com/roach88/solidarity/internal/engine"
	"github.com/roach88/solidarity/internal/ledger"
	"github.com/roach88/solidarity/internal/params"
	"github.com/roach88/solidarity/internal/store"
)

// session is an open ledger: the store plus an engine bound to it.
type session struct {
	store  *store.Store
	engine *engine.Engine
}

// openStore opens the ledger database named by --db.
func openStore(opts *RootOptions) (*store.Store, error) {
	st, err := store.Open(opts.Database)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	slog.Debug("store opened", "path", opts.Database)
	return st, nil
}

// resolveParams picks the parameters a ledger runs under: an explicit
// --params file, else the set recorded at initialization, else defaults.
func resolveParams(ctx context.Context, opts *RootOptions, st *store.Store) (ledger.Params, error) {
	if opts.Params != "" {
		p, err := params.Load(opts.Params)
		if err != nil {
			return ledger.Params{}, WrapExitError(ExitCommandError, "failed to load params", err)
		}
		return p, nil
	}
	p, ok, err := engine.StoredParams(ctx, st)
	if err != nil {
		return ledger.Params{}, WrapExitError(ExitCommandError, "failed to read stored params", err)
	}
	if ok {
		return p, nil
	}
	return params.Defaults()
}

func openSession(ctx context.Context, opts *RootOptions) (*session, error) {
	st, err := openStore(opts)
	if err != nil {
		return nil, err
	}
	p, err := resolveParams(ctx, opts, st)
	if err != nil {
		st.Close()
		return nil, err
	}
	eng, err := engine.New(ctx, st, p)
	if err != nil {
		st.Close()
		return nil, WrapExitError(ExitCommandError, "failed to start engine", err)
	}
	return &session{store: st, engine: eng}, nil
}

func (s *session) Close() error {
	slog.Debug("store closing")
	return s.store.Close()
}

// submit runs req through the engine's Run loop and returns its receipt.
// The loop is stopped once the receipt arrives.
func (s *session) submit(ctx context.Context, req engine.Request) (engine.Receipt, error) {
	done := make(chan error, 1)
	go func() { done <- s.engine.Run(ctx) }()

	receipt, err := s.engine.Submit(ctx, req)
	s.engine.Stop()
	if runErr := <-done; runErr != nil && !errors.Is(runErr, context.Canceled) {
		slog.Warn("engine loop ended with error", "error", runErr)
	}
	if err != nil {
		var lerr *ledger.Error
		if errors.As(err, &lerr) {
			return engine.Receipt{}, WrapExitError(ExitCommandError, "request not admitted", err)
		}
		return engine.Receipt{}, WrapExitError(ExitCommandError, "transition not applied", err)
	}
	return receipt, nil
}
