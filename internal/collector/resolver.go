package collector

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"StockRoaster/internal/model"
)

// DefaultLookupTimeout bounds the name search.
const DefaultLookupTimeout = 10 * time.Second

const maxSymbolLen = 15

// Resolver maps free-text input to a market symbol.
type Resolver struct {
	Searcher SymbolSearcher
	Timeout  time.Duration
}

// NewResolver creates a Resolver with the default lookup timeout.
func NewResolver(searcher SymbolSearcher) *Resolver {
	return &Resolver{Searcher: searcher, Timeout: DefaultLookupTimeout}
}

// LooksLikeSymbol is a best-effort fast path: input containing a digit, or a
// single uppercase token such as "AAPL", "TCS.NS" or "^GSPC", is taken to be
// a ticker already. Company names like "Apple" fall through to search.
func LooksLikeSymbol(query string) bool {
	q := strings.TrimSpace(query)
	if q == "" {
		return false
	}
	if strings.ContainsFunc(q, unicode.IsDigit) {
		return true
	}
	if len(q) > maxSymbolLen {
		return false
	}
	for _, r := range q {
		switch {
		case r >= 'A' && r <= 'Z':
		case r == '.', r == '-', r == '^', r == '=':
		default:
			return false
		}
	}
	return true
}

// Resolve returns the symbol for query or a SymbolNotFound error. Lookup
// failures are reported as SymbolNotFound, never retried.
func (r *Resolver) Resolve(ctx context.Context, query string) (string, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return "", &model.Error{Kind: model.KindSymbolNotFound, Message: "could not find a ticker for an empty query"}
	}
	if LooksLikeSymbol(q) {
		return strings.ToUpper(q), nil
	}

	timeout := r.Timeout
	if timeout <= 0 || timeout > DefaultLookupTimeout {
		timeout = DefaultLookupTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	matches, err := r.Searcher.SearchSymbol(ctx, q)
	if err != nil {
		slog.WarnContext(ctx, "symbol search failed", "query", q, "error", err)
		return "", &model.Error{
			Kind:    model.KindSymbolNotFound,
			Message: fmt.Sprintf("could not find a ticker for %q", q),
			Err:     err,
		}
	}
	if len(matches) == 0 || matches[0].Symbol == "" {
		return "", &model.Error{Kind: model.KindSymbolNotFound, Message: fmt.Sprintf("could not find a ticker for %q", q)}
	}

	symbol := strings.ToUpper(strings.TrimSpace(matches[0].Symbol))
	slog.DebugContext(ctx, "symbol resolved", "query", q, "symbol", symbol, "name", matches[0].Name)
	return symbol, nil
}
