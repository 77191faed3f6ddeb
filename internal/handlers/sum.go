package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/example/calcapi/internal/cache"
	"github.com/example/calcapi/internal/metrics"
	"github.com/example/calcapi/internal/types"
	"github.com/example/calcapi/pkg/calculator"
	"github.com/example/calcapi/pkg/jsonutil"
)

const defaultMaxPairs = 100

var (
	ErrNoPairs      = errors.New("pairs required")
	ErrTooManyPairs = errors.New("too many pairs")
)

// SumDeps bundles dependencies needed by the handler.
type SumDeps struct {
	Cache          *cache.Cache
	Metrics        *metrics.Metrics
	Timeout        time.Duration
	MaxConcurrency int
	MaxPairs       int
}

type SumHandler struct{ Deps SumDeps }

func NewSumHandler(deps SumDeps) *SumHandler {
	if deps.MaxConcurrency <= 0 {
		deps.MaxConcurrency = 1
	}
	if deps.MaxPairs <= 0 {
		deps.MaxPairs = defaultMaxPairs
	}
	return &SumHandler{Deps: deps}
}

// sum answers one pair through the cache.
func (h *SumHandler) sum(ctx context.Context, p types.SumRequest) (types.SumResult, error) {
	if h.Deps.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.Deps.Timeout)
		defer cancel()
	}
	key := types.PairKey(p.A, p.B)
	val, source, err := h.Deps.Cache.GetOrCompute(ctx, key, func(ctx context.Context) (cache.Value, error) {
		if err := ctx.Err(); err != nil {
			return cache.Value{}, err
		}
		return cache.Value{Sum: calculator.Sum(p.A, p.B), ComputedAt: time.Now().UTC()}, nil
	})
	if err != nil {
		return types.SumResult{}, err
	}
	h.Deps.Metrics.ObserveSum(source)
	zerolog.Ctx(ctx).Debug().Str("event", "sum").Str("pair", key).Str("source", source).Msg("")
	return types.NewSumResult(p.A, p.B, val.Sum, source, val.ComputedAt), nil
}

func (h *SumHandler) respond(w http.ResponseWriter, r *http.Request, p types.SumRequest) {
	res, err := h.sum(r.Context(), p)
	if err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Str("event", "sum_failed").Msg("")
		jsonutil.Error(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	jsonutil.JSON(w, http.StatusOK, res)
}

// Pair handles GET /api/sum/{a}/{b}.
func (h *SumHandler) Pair(w http.ResponseWriter, r *http.Request) {
	a, errA := strconv.ParseInt(chi.URLParam(r, "a"), 10, 64)
	b, errB := strconv.ParseInt(chi.URLParam(r, "b"), 10, 64)
	if errA != nil || errB != nil {
		jsonutil.Error(w, http.StatusBadRequest, "operands must be 64-bit integers")
		return
	}
	h.respond(w, r, types.SumRequest{A: a, B: b})
}

// Single handles POST /api/sum.
func (h *SumHandler) Single(w http.ResponseWriter, r *http.Request) {
	var req types.SumRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonutil.Error(w, http.StatusBadRequest, "bad request")
		return
	}
	h.respond(w, r, req)
}

func dedupe(in []types.SumRequest) []types.SumRequest {
	seen := make(map[types.SumRequest]struct{}, len(in))
	out := make([]types.SumRequest, 0, len(in))
	for _, p := range in {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

func (h *SumHandler) validateBatch(req types.BatchSumRequest) error {
	switch {
	case len(req.Pairs) == 0:
		return ErrNoPairs
	case len(req.Pairs) > h.Deps.MaxPairs:
		return fmt.Errorf("%w: %d > %d", ErrTooManyPairs, len(req.Pairs), h.Deps.MaxPairs)
	}
	return nil
}

// Batch handles POST /api/sum/batch.
func (h *SumHandler) Batch(w http.ResponseWriter, r *http.Request) {
	var req types.BatchSumRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonutil.Error(w, http.StatusBadRequest, "bad request")
		return
	}
	if err := h.validateBatch(req); err != nil {
		jsonutil.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	pairs := dedupe(req.Pairs)
	resp := types.BatchSumResponse{
		Results: make([]types.SumResult, 0, len(pairs)),
		Errors:  []types.ErrorEntry{},
	}
	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(h.Deps.MaxConcurrency)
	for _, p := range pairs {
		g.Go(func() error {
			res, err := h.sum(r.Context(), p)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				resp.Errors = append(resp.Errors, types.ErrorEntry{Pair: p, Error: err.Error()})
				return nil
			}
			resp.Results = append(resp.Results, res)
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(resp.Results, func(i, j int) bool {
		if resp.Results[i].A != resp.Results[j].A {
			return resp.Results[i].A < resp.Results[j].A
		}
		return resp.Results[i].B < resp.Results[j].B
	})
	sort.Slice(resp.Errors, func(i, j int) bool {
		if resp.Errors[i].Pair.A != resp.Errors[j].Pair.A {
			return resp.Errors[i].Pair.A < resp.Errors[j].Pair.A
		}
		return resp.Errors[i].Pair.B < resp.Errors[j].Pair.B
	})
	zerolog.Ctx(r.Context()).Info().
		Str("event", "batch_sum").
		Int("pairs", len(pairs)).
		Int("errors", len(resp.Errors)).
		Msg("")
	jsonutil.JSON(w, http.StatusOK, resp)
}
