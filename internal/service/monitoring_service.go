package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/andresuchdata/mpstock/internal/cache"
	"github.com/andresuchdata/mpstock/internal/domain"
	"github.com/andresuchdata/mpstock/internal/metrics"
	"github.com/andresuchdata/mpstock/internal/monitoring"
	"github.com/andresuchdata/mpstock/internal/snapshot"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"
)

// ErrRefreshInProgress is returned when a refresh is requested while another
// one is still running.
var ErrRefreshInProgress = errors.New("snapshot refresh already in progress")

type loadedSnapshot struct {
	doc      *snapshot.Document
	records  int
	loadedAt time.Time
}

// Status describes the snapshot currently served.
type Status struct {
	Source     string    `json:"source"`
	Ready      bool      `json:"ready"`
	Version    string    `json:"version,omitempty"`
	Content    string    `json:"content_hash,omitempty"`
	Records    int       `json:"records"`
	LoadedAt   time.Time `json:"loaded_at,omitempty"`
	Refreshing bool      `json:"refreshing"`
}

// MonitoringService holds the last complete snapshot and serves views
// computed from it. Refreshes replace the snapshot wholesale.
type MonitoringService struct {
	loader  snapshot.Loader
	engine  *monitoring.Engine
	cache   cache.ViewCache
	metrics metrics.Collector

	current    atomic.Pointer[loadedSnapshot]
	refreshing *semaphore.Weighted
	now        func() time.Time
}

func NewMonitoringService(loader snapshot.Loader, engine *monitoring.Engine, cacheImpl cache.ViewCache, collector metrics.Collector) *MonitoringService {
	if engine == nil {
		engine = monitoring.NewEngine(monitoring.Config{})
	}
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopViewCache()
	}
	if collector == nil {
		collector = metrics.NewNoop()
	}
	return &MonitoringService{
		loader:     loader,
		engine:     engine,
		cache:      cacheImpl,
		metrics:    collector,
		refreshing: semaphore.NewWeighted(1),
		now:        time.Now,
	}
}

// Refresh loads a new snapshot and swaps it in. Views computed from the
// previous snapshot stay valid for whoever holds them.
func (s *MonitoringService) Refresh(ctx context.Context) error {
	if !s.refreshing.TryAcquire(1) {
		return ErrRefreshInProgress
	}
	defer s.refreshing.Release(1)

	start := s.now()
	doc, err := s.loader.Load(ctx)
	s.metrics.ObserveRefresh(s.loader.Name(), s.now().Sub(start), err)
	if err != nil {
		return fmt.Errorf("refresh from %s: %w", s.loader.Name(), err)
	}

	loaded := &loadedSnapshot{
		doc:      doc,
		records:  len(s.engine.Build(doc)),
		loadedAt: s.now(),
	}
	previous := s.current.Swap(loaded)
	s.metrics.SetSnapshot(loaded.records, loaded.loadedAt)

	// last_update alone may repeat across different documents
	if previous == nil || previous.doc.Fingerprint() != doc.Fingerprint() {
		if err := s.cache.InvalidateAll(ctx); err != nil {
			log.Warn().Err(err).Msg("monitoring: cache invalidate failed")
		}
	}

	log.Info().
		Str("source", s.loader.Name()).
		Str("version", doc.Version()).
		Int("records", loaded.records).
		Dur("took", s.now().Sub(start)).
		Msg("snapshot refreshed")

	return nil
}

// View computes the view for the selection over the current snapshot.
func (s *MonitoringService) View(ctx context.Context, sel domain.Selection) (*domain.View, error) {
	current := s.current.Load()
	if current == nil {
		return nil, snapshot.ErrNoSnapshot
	}

	sel = sel.Normalize()
	version := current.doc.Fingerprint()
	start := s.now()

	if view, ok, err := s.cache.GetView(ctx, version, sel); err == nil && ok {
		s.metrics.ObserveView(sel.Marketplace, s.now().Sub(start), true)
		s.metrics.SetAlerts(sel.Marketplace, len(view.Alerts))
		return view, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("monitoring: cache get view failed")
	}

	view := s.engine.Compute(current.doc, sel)

	if err := s.cache.SetView(ctx, version, sel, &view); err != nil {
		log.Warn().Err(err).Msg("monitoring: cache set view failed")
	}

	s.metrics.ObserveView(sel.Marketplace, s.now().Sub(start), false)
	s.metrics.SetAlerts(sel.Marketplace, len(view.Alerts))
	return &view, nil
}

// ResolveCluster maps a warehouse name to its logistics cluster.
func (s *MonitoringService) ResolveCluster(warehouse string, mp domain.Marketplace) string {
	return s.engine.Resolver().Resolve(warehouse, mp)
}

func (s *MonitoringService) Status() Status {
	st := Status{Source: s.loader.Name()}
	if s.refreshing.TryAcquire(1) {
		s.refreshing.Release(1)
	} else {
		st.Refreshing = true
	}

	if current := s.current.Load(); current != nil {
		st.Ready = true
		st.Version = current.doc.Version()
		st.Content = current.doc.Fingerprint()
		st.Records = current.records
		st.LoadedAt = current.loadedAt
	}
	return st
}

// Run refreshes once, then on every tick until ctx is done. A zero interval
// only does the initial refresh.
func (s *MonitoringService) Run(ctx context.Context, interval time.Duration) {
	s.refreshAndLog(ctx)
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.refreshAndLog(ctx)
		}
	}
}

func (s *MonitoringService) refreshAndLog(ctx context.Context) {
	err := s.Refresh(ctx)
	switch {
	case err == nil:
	case errors.Is(err, ErrRefreshInProgress):
		log.Debug().Msg("monitoring: refresh skipped, previous still running")
	case errors.Is(err, context.Canceled):
	default:
		log.Error().Err(err).Msg("monitoring: refresh failed")
	}
}
