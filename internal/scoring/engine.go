package scoring

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/typemetry/typemetry/internal/payload"
)

// Source hands the engine its decoded payload. Implementations live at the
// delivery boundary (file, inline blob, bank store); the engine performs no
// decoding itself and does not care how the bytes arrived.
type Source interface {
	Payload(ctx context.Context) (*payload.Envelope, error)
}

// ItemLister exposes a mode's item ids in authored order. Positional answer
// sheets are re-associated against a seeded permutation of this list; without
// it only explicit {id, value} sheets can be scored.
type ItemLister interface {
	ItemIDs(ctx context.Context, mode string) ([]string, error)
}

// Configuration-class errors. Data-quality conditions (missing weight rows,
// neutral or absent answers) are diagnostics, never errors.
var (
	ErrUnknownMode  = errors.New("unknown mode")
	ErrSeedRequired = errors.New("positional answers require a seed")
	ErrNoItemOrder  = errors.New("positional answers require an item list")
)

// engine is one mode's immutable scoring context: weights normalized once,
// mapping tables coerced once. Built by Init, shared by every Score call.
type engine struct {
	mode     string
	weights  Weights
	funcs    []FuncMeta
	keyIndex map[string]int
	axes     []AxisDef
	typeMap  TypeMap
}

// Service builds and caches per-mode engines and runs scoring against them.
// There is no module-level state: construct one Service per payload source.
type Service struct {
	src   Source
	items ItemLister
	log   *zap.Logger

	mu      sync.RWMutex
	engines map[string]*engine
	flight  singleflight.Group
}

// Option configures a Service.
type Option func(*Service)

// WithItems enables positional answer sheets by supplying the item order
// authority, normally the bank store.
func WithItems(items ItemLister) Option {
	return func(s *Service) { s.items = items }
}

// WithLogger routes the engine's data-quality and lifecycle logs.
func WithLogger(log *zap.Logger) Option {
	return func(s *Service) { s.log = log }
}

// NewService wires a scoring service to a payload source.
func NewService(src Source, opts ...Option) *Service {
	s := &Service{
		src:     src,
		log:     zap.NewNop(),
		engines: make(map[string]*engine),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Init builds the engine for a mode. Idempotent: the first call does the
// work, every later call is a map read. Concurrent calls for the same mode
// share one build. Init must succeed before Score can run for that mode;
// Score calls it lazily for convenience.
func (s *Service) Init(ctx context.Context, mode string) error {
	_, err := s.engine(ctx, mode)
	return err
}

func (s *Service) engine(ctx context.Context, mode string) (*engine, error) {
	s.mu.RLock()
	eng, ok := s.engines[mode]
	s.mu.RUnlock()
	if ok {
		return eng, nil
	}

	v, err, _ := s.flight.Do(mode, func() (any, error) {
		s.mu.RLock()
		eng, ok := s.engines[mode]
		s.mu.RUnlock()
		if ok {
			return eng, nil
		}
		built, err := s.build(ctx, mode)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.engines[mode] = built
		s.mu.Unlock()
		return built, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*engine), nil
}

func (s *Service) build(ctx context.Context, mode string) (*engine, error) {
	env, err := s.src.Payload(ctx)
	if err != nil {
		return nil, fmt.Errorf("payload: %w", err)
	}
	raw, ok := env.Weights[mode]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
	funcs := NormalizeFuncMeta(env.Mapping.Funcs)
	keyIndex := KeyIndex(funcs)
	eng := &engine{
		mode:     mode,
		weights:  NormalizeWeights(raw, keyIndex),
		funcs:    funcs,
		keyIndex: keyIndex,
		axes:     AxisDefs(),
		typeMap:  NormalizeTypeMap(env.Mapping.Types),
	}
	s.log.Debug("engine ready",
		zap.String("mode", mode),
		zap.Int("weighted_items", len(eng.weights)),
		zap.Int("pair_entries", len(eng.typeMap.Pairs)),
	)
	return eng, nil
}

// Modes lists the payload's mode keys, sorted.
func (s *Service) Modes(ctx context.Context) ([]string, error) {
	env, err := s.src.Payload(ctx)
	if err != nil {
		return nil, fmt.Errorf("payload: %w", err)
	}
	return env.Modes(), nil
}

// FuncMeta returns the mode's effective function metadata table.
func (s *Service) FuncMeta(ctx context.Context, mode string) ([]FuncMeta, error) {
	eng, err := s.engine(ctx, mode)
	if err != nil {
		return nil, err
	}
	out := make([]FuncMeta, len(eng.funcs))
	copy(out, eng.funcs)
	return out, nil
}

// TypeMap returns the mode's normalized type-mapping tables. Callers treat
// the result as read-only.
func (s *Service) TypeMap(ctx context.Context, mode string) (TypeMap, error) {
	eng, err := s.engine(ctx, mode)
	if err != nil {
		return TypeMap{}, err
	}
	return eng.typeMap, nil
}

// ScoreRequest is one scoring run's input. Scale defaults to centered.
// Seed is only consulted for positional sheets.
type ScoreRequest struct {
	Mode    string      `json:"mode"`
	Seed    string      `json:"seed,omitempty"`
	Scale   string      `json:"scale,omitempty"`
	Answers AnswerSheet `json:"answers"`
}

// Top names the four ranked functions.
type Top struct {
	Dominant  string `json:"dominant"`
	Auxiliary string `json:"auxiliary"`
	Tertiary  string `json:"tertiary"`
	Inferior  string `json:"inferior"`
}

// Debug carries the per-item diagnostics and the contributing-item count.
type Debug struct {
	PerItem   []ItemDiag `json:"perItem"`
	UsedItems int        `json:"usedItems"`
}

// Result is one finished scoring run.
type Result struct {
	Mode       string                 `json:"mode"`
	ByFunction [NumDims]FunctionScore `json:"byFunction"`
	Top        Top                    `json:"top"`
	Type       TypeRecord             `json:"type"`
	Axes       map[string]AxisScore   `json:"axes"`
	Debug      Debug                  `json:"debug"`
}

// Score runs one sheet through the mode's engine. The engine is built lazily
// if Init has not run yet. Scoring is pure once the engine exists: the same
// request always marshals to byte-identical output.
func (s *Service) Score(ctx context.Context, req ScoreRequest) (*Result, error) {
	eng, err := s.engine(ctx, req.Mode)
	if err != nil {
		return nil, err
	}
	scale, err := ParseScale(req.Scale)
	if err != nil {
		return nil, err
	}

	records := req.Answers.Records
	if req.Answers.Positional {
		if s.items == nil {
			return nil, ErrNoItemOrder
		}
		if req.Seed == "" {
			return nil, ErrSeedRequired
		}
		ids, err := s.items.ItemIDs(ctx, req.Mode)
		if err != nil {
			return nil, fmt.Errorf("item order: %w", err)
		}
		records, err = req.Answers.ResolvePositional(Permute(ids, req.Seed))
		if err != nil {
			return nil, err
		}
	}

	byFunc, perItem, used := Accumulate(records, eng.weights, scale, eng.funcs)
	axes := AggregateAxes(byFunc, eng.axes, eng.keyIndex)
	order := RankDims(byFunc)
	rec := ResolveType(byFunc, axes, eng.typeMap)

	s.log.Debug("scored sheet",
		zap.String("mode", req.Mode),
		zap.Int("used", used),
		zap.String("type", rec.Code),
		zap.String("how", rec.How),
	)

	return &Result{
		Mode:       req.Mode,
		ByFunction: byFunc,
		Top: Top{
			Dominant:  byFunc[order[0]].Key,
			Auxiliary: byFunc[order[1]].Key,
			Tertiary:  byFunc[order[2]].Key,
			Inferior:  byFunc[order[3]].Key,
		},
		Type:  rec,
		Axes:  axes,
		Debug: Debug{PerItem: perItem, UsedItems: used},
	}, nil
}
