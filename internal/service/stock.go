// Package service wires domain rules to storage, scoring and event
// publishing.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/couchcryptid/disaster-relief/internal/domain"
	"github.com/couchcryptid/disaster-relief/internal/observability"
)

// CatalogStore loads and persists the whole stock catalog.
type CatalogStore interface {
	Load(ctx context.Context) (*domain.Catalog, error)
	Save(ctx context.Context, c *domain.Catalog) error
}

// Publisher emits allocation events after they are committed.
type Publisher interface {
	Publish(ctx context.Context, event domain.AllocationEvent) error
}

// NopPublisher discards events. It is used when no broker is configured.
type NopPublisher struct{}

// Publish does nothing.
func (NopPublisher) Publish(context.Context, domain.AllocationEvent) error { return nil }

// AllocationInput is one allocation request against the stock nearest to
// Query.
type AllocationInput struct {
	SessionID string
	Query     domain.Coordinate
	Request   domain.AllocationRequest
}

// AllocationResult describes a committed allocation.
type AllocationResult struct {
	Record     domain.StockRecord `json:"record"`
	DistanceKM float64            `json:"distance_km"`
	Allocated  map[string]int     `json:"allocated"`
	EventID    string             `json:"event_id"`
}

// StockService serves catalog reads and allocation transactions. The file is
// re-read on every call so edits made outside the process are picked up.
// Allocations are serialized so no two load-modify-save cycles interleave.
type StockService struct {
	store     CatalogStore
	publisher Publisher
	logger    *slog.Logger
	metrics   *observability.Metrics
	mu        sync.Mutex
	ready     atomic.Bool
}

// NewStockService creates a StockService.
func NewStockService(store CatalogStore, publisher Publisher, logger *slog.Logger, metrics *observability.Metrics) *StockService {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	return &StockService{
		store:     store,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
	}
}

// CheckReadiness returns nil once the catalog has been loaded without errors,
// and an error while the last load failed.
func (s *StockService) CheckReadiness(_ context.Context) error {
	if !s.ready.Load() {
		return errors.New("stock catalog has not been loaded cleanly")
	}
	return nil
}

// Catalog loads the current catalog.
func (s *StockService) Catalog(ctx context.Context) (*domain.Catalog, error) {
	c, err := s.store.Load(ctx)
	if err != nil {
		s.metrics.CatalogLoads.WithLabelValues("error").Inc()
		s.ready.Store(false)
		return nil, err
	}
	s.metrics.CatalogLoads.WithLabelValues("success").Inc()
	s.metrics.CatalogRecords.Set(float64(c.Len()))
	s.ready.Store(true)
	return c, nil
}

// Nearest resolves the stock location closest to query.
func (s *StockService) Nearest(ctx context.Context, query domain.Coordinate) (domain.Match, error) {
	if err := query.Validate(); err != nil {
		s.metrics.NearestLookups.WithLabelValues(outcome(err)).Inc()
		return domain.Match{}, err
	}
	c, err := s.Catalog(ctx)
	if err != nil {
		s.metrics.NearestLookups.WithLabelValues(outcome(err)).Inc()
		return domain.Match{}, err
	}
	m, err := domain.Nearest(c, query)
	s.metrics.NearestLookups.WithLabelValues(outcome(err)).Inc()
	if err != nil {
		return domain.Match{}, err
	}
	s.metrics.NearestDistance.Observe(m.DistanceKM)
	return m, nil
}

// Allocate takes the requested amounts from the stock nearest to in.Query and
// persists the result. Either every amount is taken or nothing changes.
func (s *StockService) Allocate(ctx context.Context, in AllocationInput) (AllocationResult, error) {
	res, err := s.allocate(ctx, in)
	s.metrics.Allocations.WithLabelValues(outcome(err)).Inc()
	return res, err
}

func (s *StockService) allocate(ctx context.Context, in AllocationInput) (AllocationResult, error) {
	if err := in.Query.Validate(); err != nil {
		return AllocationResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.Catalog(ctx)
	if err != nil {
		return AllocationResult{}, err
	}

	match, err := domain.Nearest(c, in.Query)
	if err != nil {
		return AllocationResult{}, err
	}

	updated, err := domain.Apply(match.Record, in.Request)
	if err != nil {
		s.logger.Info("allocation rejected", "record", match.Record.ID, "error", err)
		return AllocationResult{}, err
	}

	if err := c.Replace(match.Index, updated); err != nil {
		return AllocationResult{}, err
	}
	if err := s.store.Save(ctx, c); err != nil {
		s.metrics.CatalogSaves.WithLabelValues("error").Inc()
		return AllocationResult{}, fmt.Errorf("save allocation: %w", err)
	}
	s.metrics.CatalogSaves.WithLabelValues("success").Inc()

	event := domain.NewAllocationEvent(in.SessionID, in.Query, match, updated)
	for k, v := range event.Allocated {
		s.metrics.AllocatedUnits.WithLabelValues(k).Add(float64(v))
	}
	s.logger.Info("allocation committed",
		"record", updated.ID,
		"distance_km", match.DistanceKM,
		"allocated", event.Allocated,
		"event_id", event.ID,
	)

	if err := s.publisher.Publish(ctx, event); err != nil {
		s.metrics.EventsPublished.WithLabelValues("error").Inc()
		s.logger.Error("publish allocation event failed", "error", err, "event_id", event.ID)
	} else {
		s.metrics.EventsPublished.WithLabelValues("success").Inc()
	}

	return AllocationResult{
		Record:     updated,
		DistanceKM: match.DistanceKM,
		Allocated:  event.Allocated,
		EventID:    event.ID,
	}, nil
}

// outcome maps an error to a metric label.
func outcome(err error) string {
	var (
		malformed    *domain.MalformedDataError
		invalidQuery *domain.InvalidQueryError
		unknown      *domain.UnknownResourceError
		invalidAmt   *domain.InvalidAmountError
		insufficient *domain.InsufficientStockError
		prediction   *domain.PredictionServiceError
		auth         *domain.AuthenticationError
	)
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrEmptyCatalog):
		return "empty_catalog"
	case errors.As(err, &malformed):
		return "malformed_data"
	case errors.As(err, &invalidQuery):
		return "invalid_query"
	case errors.As(err, &unknown):
		return "unknown_resource"
	case errors.As(err, &invalidAmt):
		return "invalid_amount"
	case errors.As(err, &insufficient):
		return "insufficient_stock"
	case errors.As(err, &auth):
		return "authentication"
	case errors.As(err, &prediction):
		return "prediction_service"
	}
	return "error"
}
