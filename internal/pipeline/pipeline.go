// Package pipeline drives one roast request through
// Idle → Resolving → Fetching → Prompting → Calling → Success | Failed.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"StockRoaster/internal/logger"
	"StockRoaster/internal/model"
	"StockRoaster/internal/roast"
)

// State is a pipeline stage.
type State string

const (
	StateIdle      State = "Idle"
	StateResolving State = "Resolving"
	StateFetching  State = "Fetching"
	StatePrompting State = "Prompting"
	StateCalling   State = "Calling"
	StateSuccess   State = "Success"
	StateFailed    State = "Failed"
)

// Terminal reports whether s ends a run.
func (s State) Terminal() bool { return s == StateSuccess || s == StateFailed }

// SymbolResolver maps free text to a symbol.
type SymbolResolver interface {
	Resolve(ctx context.Context, query string) (string, error)
}

// SnapshotSource fetches a series and derives its snapshot.
type SnapshotSource interface {
	Build(ctx context.Context, symbol string, period model.Period) (*model.MarketSnapshot, *model.PriceSeries, error)
}

// Result is the outcome of one run. On failure only Err is set besides the
// bookkeeping fields; the chart and stats are never returned alongside an error.
type Result struct {
	RequestID string
	Request   Request
	Symbol    string
	Snapshot  *model.MarketSnapshot
	Series    *model.PriceSeries
	Roast     string
	Err       *model.Error
	Trace     []State
	Elapsed   time.Duration
}

// OK reports whether the run reached Success.
func (r *Result) OK() bool { return r.Err == nil }

// State returns the terminal state of the run.
func (r *Result) State() State { return r.Trace[len(r.Trace)-1] }

// Service runs roast requests. It holds no per-request state and is safe for
// concurrent use when its collaborators are.
type Service struct {
	resolver  SymbolResolver
	snapshots SnapshotSource
	llm       roast.Generator
	defaults  Defaults
}

// New creates a Service.
func New(resolver SymbolResolver, snapshots SnapshotSource, llm roast.Generator, defaults Defaults) *Service {
	return &Service{resolver: resolver, snapshots: snapshots, llm: llm, defaults: defaults}
}

// Defaults returns the defaults applied by ParseRequest callers.
func (s *Service) Defaults() Defaults { return s.defaults }

// Run executes req to a terminal state. It never returns a partial result.
func (s *Service) Run(ctx context.Context, req Request) *Result {
	start := time.Now()
	res := &Result{RequestID: uuid.NewString(), Request: req, Trace: []State{StateIdle}}
	log := slog.With("request_id", res.RequestID)

	ctx, span := logger.StartSpan(ctx, "roast.request")
	defer span.End()

	fail := func(err error) *Result {
		res.Err = asModelError(err)
		res.Snapshot, res.Series, res.Roast = nil, nil, ""
		res.Trace = append(res.Trace, StateFailed)
		res.Elapsed = time.Since(start)
		log.WarnContext(ctx, "roast failed",
			"query", req.Query, "symbol", res.Symbol, "kind", res.Err.Kind,
			"stage", res.Trace[len(res.Trace)-2], "elapsed", res.Elapsed, "error", res.Err)
		return res
	}
	enter := func(st State) {
		res.Trace = append(res.Trace, st)
		log.DebugContext(ctx, "stage", "stage", st, "symbol", res.Symbol)
	}

	if err := req.Validate(); err != nil {
		return fail(err)
	}

	enter(StateResolving)
	stageCtx, stage := logger.StartStage(ctx, "roast.resolve", "query", req.Query)
	symbol, err := s.resolver.Resolve(stageCtx, req.Query)
	stage.End(err)
	if err != nil {
		return fail(err)
	}
	res.Symbol = symbol

	enter(StateFetching)
	stageCtx, stage = logger.StartStage(ctx, "roast.fetch", "symbol", symbol, "period", string(req.Period))
	snap, series, err := s.snapshots.Build(stageCtx, symbol, req.Period)
	stage.End(err)
	if err != nil {
		return fail(err)
	}

	enter(StatePrompting)
	_, stage = logger.StartStage(ctx, "roast.prompt", "tone", string(req.Tone))
	prompt := roast.BuildPrompt(model.RoastRequest{
		Snapshot:  snap,
		Tone:      req.Tone,
		Lines:     req.Lines,
		Intensity: req.Intensity,
	})
	stage.End(nil)

	enter(StateCalling)
	stageCtx, stage = logger.StartStage(ctx, "roast.call")
	text, err := s.llm.Generate(stageCtx, prompt)
	stage.End(err)
	if err != nil {
		return fail(err)
	}

	res.Snapshot, res.Series, res.Roast = snap, series, text
	res.Trace = append(res.Trace, StateSuccess)
	res.Elapsed = time.Since(start)
	log.InfoContext(ctx, "roast done",
		"symbol", symbol, "period", req.Period, "tone", req.Tone,
		"change_pct", snap.PeriodChangePct, "elapsed", res.Elapsed)
	return res
}

// asModelError guarantees one taxonomy value per failed run.
func asModelError(err error) *model.Error {
	var e *model.Error
	if errors.As(err, &e) {
		return e
	}
	return model.NewError(model.KindTransport, "unexpected failure", err)
}
