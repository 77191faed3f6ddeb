package types

import (
	"strconv"
	"time"

	"github.com/example/calcapi/pkg/calculator"
)

// Result sources.
const (
	SourceCache    = "cache"
	SourceComputed = "computed"
)

// SumRequest is a single pair of operands.
type SumRequest struct {
	A int64 `json:"a"`
	B int64 `json:"b"`
}

// SumResult is the JSON answer for one pair.
type SumResult struct {
	A          int64  `json:"a"`
	B          int64  `json:"b"`
	Sum        int64  `json:"sum"`
	Source     string `json:"source"`      // "cache" or "computed"
	ComputedAt string `json:"computed_at"` // RFC3339
}

// BatchSumRequest represents the incoming payload for batch sums.
type BatchSumRequest struct {
	Pairs []SumRequest `json:"pairs"`
}

// ErrorEntry captures a per-pair failure.
type ErrorEntry struct {
	Pair  SumRequest `json:"pair"`
	Error string     `json:"error"`
}

// BatchSumResponse is the JSON response for the batch endpoint.
type BatchSumResponse struct {
	Results []SumResult  `json:"results"`
	Errors  []ErrorEntry `json:"errors"`
}

func NowRFC3339() string { return time.Now().UTC().Format(time.RFC3339) }

// PairKey is the cache key for a pair. Operands are kept in request order.
func PairKey(a, b int64) string {
	return strconv.FormatInt(a, 10) + "+" + strconv.FormatInt(b, 10)
}

// NewSumResult builds a SumResult stamped with ts.
func NewSumResult(a, b, sum int64, source string, ts time.Time) SumResult {
	return SumResult{
		A:          a,
		B:          b,
		Sum:        sum,
		Source:     source,
		ComputedAt: ts.UTC().Format(time.RFC3339),
	}
}

// TotalOf adds up the Sum field of every result.
func TotalOf(results []SumResult) int64 {
	var total int64
	for i := range results {
		total = calculator.Sum(total, results[i].Sum)
	}
	return total
}
