// Package retriever runs the filtered similarity search that grounds a chat
// answer. Store failures degrade to an empty result instead of failing the
// request.
package retriever

import (
	"context"
	"errors"
	"fmt"
	"time"

	"food-rag-be/internal/pkg/logger"
	"food-rag-be/pkg/rag/filter"
	"food-rag-be/pkg/store"
	"food-rag-be/pkg/vectorstore"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const module = "Retriever"

var (
	// ErrRetrievalUnavailable marks a degraded search: the store was
	// unreachable or failed, and no items are returned.
	ErrRetrievalUnavailable = errors.New("retrieval unavailable")
	// ErrRetrievalTimeout is reported when the store did not answer in time.
	ErrRetrievalTimeout = errors.New("retrieval timed out")
)

type Config struct {
	DefaultLimit    int
	OverFetchFactor int // clamped to >= 2
	Timeout         time.Duration
}

func DefaultConfig() Config {
	return Config{
		DefaultLimit:    5,
		OverFetchFactor: 3,
		Timeout:         10 * time.Second,
	}
}

// Result carries the surviving items. Err is nil, or wraps one of
// ErrRetrievalUnavailable / ErrRetrievalTimeout; Items is empty in both cases.
type Result struct {
	Items []store.FoodItem
	Err   error
}

func (r Result) Degraded() bool {
	return r.Err != nil
}

type Retriever struct {
	store  vectorstore.Store
	cfg    Config
	logger logger.ILogger
}

func New(s vectorstore.Store, cfg Config, log logger.ILogger) *Retriever {
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = DefaultConfig().DefaultLimit
	}
	if cfg.OverFetchFactor < 2 {
		cfg.OverFetchFactor = 2
	}
	return &Retriever{store: s, cfg: cfg, logger: log}
}

// Search returns at most limit items ordered by relevance. Items whose
// allergens intersect the exclusion set never survive, whatever the store did
// with the pushed predicate.
func (r *Retriever) Search(ctx context.Context, query string, criteria filter.Criteria, limit int) Result {
	if limit <= 0 {
		limit = r.cfg.DefaultLimit
	}

	ctx, span := otel.Tracer(module).Start(ctx, "retriever.Search")
	defer span.End()

	predicate := filter.Build(criteria)
	pushed, residual := vectorstore.Split(r.store, predicate)
	local := filter.All(residual, filter.Build(filter.Criteria{Allergies: criteria.Allergies}))
	fetch := limit * r.cfg.OverFetchFactor

	span.SetAttributes(
		attribute.Int("rag.limit", limit),
		attribute.Int("rag.fetch", fetch),
		attribute.String("rag.where", filter.String(pushed)),
	)

	matches, err := r.query(ctx, vectorstore.Query{Text: query, Where: pushed, Limit: fetch})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		r.logger.Warn(module, "Vector search failed, continuing without context", map[string]interface{}{
			"error": err,
			"where": filter.String(pushed),
		})
		return Result{Items: []store.FoodItem{}, Err: err}
	}

	// Cosine distance lies in [0, 2], so scores lie in [-1, 1].
	items := make([]store.FoodItem, 0, limit)
	dropped := 0
	for _, m := range matches {
		if len(items) == limit {
			break
		}
		metadata := m.Metadata
		if metadata == nil {
			metadata = map[string]interface{}{}
		}
		if !filter.Match(local, metadata) {
			dropped++
			continue
		}
		items = append(items, store.FoodItem{
			ID:       m.ID,
			Content:  m.Document,
			Metadata: metadata,
			Score:    1 - m.Distance,
		})
	}

	span.SetAttributes(attribute.Int("rag.candidates", len(matches)), attribute.Int("rag.returned", len(items)))
	r.logger.Debug(module, "Search completed", map[string]interface{}{
		"candidates": len(matches),
		"dropped":    dropped,
		"returned":   len(items),
		"residual":   filter.String(residual),
	})

	return Result{Items: items}
}

func (r *Retriever) query(ctx context.Context, q vectorstore.Query) ([]vectorstore.Match, error) {
	qctx := ctx
	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		qctx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}

	matches, err := r.store.Query(qctx, q)
	if err == nil {
		return matches, nil
	}
	if ctx.Err() == nil && errors.Is(qctx.Err(), context.DeadlineExceeded) {
		return nil, fmt.Errorf("%w: %v", ErrRetrievalTimeout, err)
	}
	return nil, fmt.Errorf("%w: %v", ErrRetrievalUnavailable, err)
}
