package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/roach88/solidarity/internal/ir"
	"github.com/roach88/solidarity/internal/ledger"
	"github.com/roach88/solidarity/internal/store"
)

const tracerName = "github.com/roach88/solidarity/internal/engine"

// Engine is the single writer of a ledger store.
//
// Thread-safety model:
//   - Submit(): safe from any goroutine; the Run loop executes the request
//   - Apply(): safe from any goroutine; serialized with Run by the writer lock
//   - Run(): must be called from exactly one goroutine
//
// INVARIANTS:
//   - seq strictly increases across journaled transitions
//   - now never decreases across journaled transitions
//   - a transition either commits all its record writes and its journal
//     entry, or writes only a failed journal entry
type Engine struct {
	store      *store.Store
	params     ledger.Params
	paramsJSON string
	clock      *Clock
	time       TimeSource
	ids        RequestIDGenerator
	queue      *requestQueue
	tracer     trace.Tracer

	mu      sync.Mutex // Writer lock
	lastNow int64
}

// Option configures an Engine.
type Option func(*Engine)

// WithTimeSource sets the trusted time source. Default: SystemTime.
func WithTimeSource(ts TimeSource) Option {
	return func(e *Engine) {
		e.time = ts
	}
}

// WithRequestIDs sets the generator for requests submitted without an id.
// Default: UUIDv7Generator.
func WithRequestIDs(gen RequestIDGenerator) Option {
	return func(e *Engine) {
		e.ids = gen
	}
}

// WithTracerProvider sets the provider transition spans are recorded on.
// Default: the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(e *Engine) {
		e.tracer = tp.Tracer(tracerName)
	}
}

// New creates an Engine over s. The clock and the monotonic time floor
// resume from the journal, so a restarted engine continues the sequence.
//
// If the ledger in s was initialized with different parameters, New fails
// with PARAMS_MISMATCH: replaying the journal under other rules would not
// reproduce it.
func New(ctx context.Context, s *store.Store, p ledger.Params, opts ...Option) (*Engine, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("engine params: %w", err)
	}
	paramsJSON, err := encodeParams(p)
	if err != nil {
		return nil, err
	}
	stored, ok, err := s.GetMeta(ctx, metaParams)
	if err != nil {
		return nil, fmt.Errorf("read stored params: %w", err)
	}
	if ok && stored != paramsJSON {
		return nil, &RuntimeError{
			Code:    ErrCodeParamsMismatch,
			Message: "ledger was initialized with different parameters",
		}
	}

	lastSeq, err := s.LastSeq(ctx)
	if err != nil {
		return nil, err
	}
	lastNow, err := s.LastNow(ctx)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		store:      s,
		params:     p,
		paramsJSON: paramsJSON,
		clock:      NewClockAt(lastSeq),
		time:       SystemTime{},
		ids:        UUIDv7Generator{},
		queue:      newRequestQueue(),
		tracer:     otel.GetTracerProvider().Tracer(tracerName),
		lastNow:    lastNow,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Params returns the economic parameters the engine enforces.
func (e *Engine) Params() ledger.Params {
	return e.params
}

// Store returns the underlying store for reads.
func (e *Engine) Store() *store.Store {
	return e.store
}

// Seq returns the last seq handed out.
func (e *Engine) Seq() int64 {
	return e.clock.Current()
}

// QueueLen returns the number of submissions waiting for the Run loop.
func (e *Engine) QueueLen() int {
	return e.queue.Len()
}

// Apply runs req synchronously under the writer lock and returns its
// receipt. A ledger rule failure is not an error here: it is journaled and
// reported through the receipt. The error return is reserved for requests
// that could not be admitted and for storage failures.
func (e *Engine) Apply(ctx context.Context, req Request) (Receipt, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	args, err := canonicalArgs(req.Args)
	if err != nil {
		return Receipt{}, err
	}
	if req.ID == "" {
		req.ID = e.ids.Generate()
	}

	seq := e.clock.Next()
	now := e.time.Now()
	if now < e.lastNow {
		now = e.lastNow
	}

	rec, err := e.execute(ctx, req, args, seq, now)
	if err != nil {
		return Receipt{}, err
	}
	e.lastNow = now
	return rec, nil
}

// Submit hands req to the Run loop and waits for its receipt.
// Returns ENGINE_STOPPED if the engine has been stopped.
func (e *Engine) Submit(ctx context.Context, req Request) (Receipt, error) {
	reply := make(chan submitResult, 1)
	if !e.queue.Enqueue(submission{req: req, reply: reply}) {
		return Receipt{}, newStoppedError()
	}
	select {
	case <-ctx.Done():
		return Receipt{}, ctx.Err()
	case res := <-reply:
		return res.receipt, res.err
	}
}

// Run drains submitted requests until ctx is cancelled or Stop is called.
//
// CRITICAL: Must be called from exactly ONE goroutine.
//
// A storage failure on one request is delivered to its submitter and
// logged; the loop continues with the next request.
func (e *Engine) Run(ctx context.Context) error {
	slog.Info("engine starting", "seq", e.clock.Current())

	for {
		sub, ok := e.queue.TryDequeue()
		if ok {
			rec, err := e.Apply(ctx, sub.req)
			if err != nil {
				slog.Error("transition not applied",
					"kind", sub.req.Kind,
					"caller", sub.req.Caller,
					"request_id", sub.req.ID,
					"error", err,
				)
			}
			sub.reply <- submitResult{receipt: rec, err: err}
			continue
		}

		select {
		case <-ctx.Done():
			slog.Info("engine stopping: context cancelled")
			e.queue.Close()
			e.drain(newStoppedError())
			return ctx.Err()

		case <-e.queue.Wait():
			// A stale signal can arrive after its submission was already
			// dequeued; only a closed, empty queue ends the loop.
			if e.queue.Closed() && e.queue.Len() == 0 {
				slog.Info("engine stopping: queue closed")
				return nil
			}
		}
	}
}

// Stop closes the queue. Run executes what is already queued, then returns.
func (e *Engine) Stop() {
	e.queue.Close()
}

// drain fails every queued submission with err.
func (e *Engine) drain(err error) {
	for {
		sub, ok := e.queue.TryDequeue()
		if !ok {
			return
		}
		sub.reply <- submitResult{err: err}
	}
}

// execute runs one transition at a fixed seq and now. It is shared by
// Apply and replay so both take the identical path.
func (e *Engine) execute(ctx context.Context, req Request, args ir.IRObject, seq, now int64) (Receipt, error) {
	ctx, span := e.tracer.Start(ctx, "ledger."+req.Kind, trace.WithAttributes(
		attribute.Int64("ledger.seq", seq),
		attribute.String("ledger.kind", req.Kind),
		attribute.String("ledger.caller", string(req.Caller)),
		attribute.String("ledger.request_id", req.ID),
	))
	defer span.End()

	id, err := ir.TransitionID(req.Kind, string(req.Caller), args, seq, now)
	if err != nil {
		return Receipt{}, err
	}
	tr := ir.Transition{
		Seq:           seq,
		ID:            id,
		RequestID:     req.ID,
		Kind:          req.Kind,
		Caller:        string(req.Caller),
		Now:           now,
		Args:          args,
		Outcome:       ir.OutcomeOK,
		Result:        ir.IRObject{},
		Keys:          []string{},
		EngineVersion: ir.EngineVersion,
		IRVersion:     ir.IRVersion,
	}

	slog.Debug("transition admitted", "seq", seq, "kind", req.Kind, "caller", req.Caller, "now", now)

	// Dispatch decodes the canonical form so live runs and replays see
	// identical bytes.
	argBytes, err := ir.MarshalCanonical(args)
	if err != nil {
		return Receipt{}, err
	}
	c := call{seq: seq, now: now, caller: req.Caller, args: argBytes}
	runErr := e.store.Update(ctx, seq, func(tx *store.Tx) error {
		eff, err := e.dispatch(ctx, tx, req.Kind, c)
		if err != nil {
			return err
		}
		tr.Result = eff.result
		tr.Keys = eff.keys
		return tx.WriteTransition(ctx, tr)
	})

	var lerr *ledger.Error
	if runErr != nil && !errors.As(runErr, &lerr) {
		span.RecordError(runErr)
		span.SetStatus(codes.Error, runErr.Error())
		return Receipt{}, fmt.Errorf("%s at seq %d: %w", req.Kind, seq, runErr)
	}

	if lerr != nil {
		tr.Outcome = ir.OutcomeFailed
		tr.Code = string(lerr.Code)
		tr.Message = lerr.Message
		tr.Result = detailsObject(lerr.Details)
		tr.Keys = []string{}
		if err := e.store.WriteTransition(ctx, tr); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return Receipt{}, fmt.Errorf("journal failed %s at seq %d: %w", req.Kind, seq, err)
		}
		span.SetAttributes(attribute.String("ledger.code", tr.Code))
		span.SetStatus(codes.Error, tr.Code)
		slog.Info("transition failed", "seq", seq, "kind", req.Kind, "caller", req.Caller, "code", tr.Code)
	} else {
		slog.Info("transition committed", "seq", seq, "kind", req.Kind, "caller", req.Caller, "keys", len(tr.Keys))
	}
	span.SetAttributes(attribute.String("ledger.outcome", tr.Outcome))

	rec := ReceiptFromTransition(tr)
	rec.err = lerr
	return rec, nil
}

// canonicalArgs parses raw request args into the object journaled with the
// transition. Args that are not a JSON object of integers, strings, bools,
// arrays and nulls are rejected before admission, since they could not be
// replayed byte-for-byte.
func canonicalArgs(raw []byte) (ir.IRObject, error) {
	if len(raw) == 0 {
		return ir.IRObject{}, nil
	}
	v, err := ir.FromJSON(raw)
	if err != nil {
		return nil, ledger.NewError(ledger.CodeInvalidArgument, "args", err.Error())
	}
	obj, ok := v.(ir.IRObject)
	if !ok {
		return nil, ledger.NewError(ledger.CodeInvalidArgument, "args", "must be a JSON object")
	}
	return obj, nil
}
