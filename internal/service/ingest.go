package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/pageza/dininghall/backend/internal/ingest"
	"github.com/pageza/dininghall/backend/internal/logging"
	"github.com/pageza/dininghall/backend/internal/model"
	"github.com/pageza/dininghall/backend/internal/scraper"
	"github.com/pageza/dininghall/backend/internal/snapshot"
)

// MenuAggregator produces a snapshot for a set of locations.
type MenuAggregator interface {
	Run(ctx context.Context, locations []model.Location) (*scraper.Result, error)
}

// SnapshotLoader writes a snapshot into the store.
type SnapshotLoader interface {
	Load(ctx context.Context, snap *model.MenuSnapshot) (ingest.LoadReport, error)
}

// ScrapeResult names the persisted artifact of a scrape.
type ScrapeResult struct {
	Key      string                  `json:"key"`
	Snapshot *model.MenuSnapshot     `json:"-"`
	Failures []*scraper.FetchFailure `json:"-"`
	Pairs    int                     `json:"pairs"`
	Days     int                     `json:"days"`
	Items    int                     `json:"items"`
	Failed   int                     `json:"failed"`
}

// LoadResult is the report of loading one artifact.
type LoadResult struct {
	Key      string              `json:"key"`
	Snapshot *model.MenuSnapshot `json:"-"`
	Report   ingest.LoadReport   `json:"report"`
}

// IngestService connects the aggregator, the artifact store and the loader.
// Aggregation and loading are separate steps joined only by the artifact.
type IngestService struct {
	aggregator MenuAggregator
	store      snapshot.Store
	loader     SnapshotLoader
	log        *slog.Logger
}

var _ IIngestService = (*IngestService)(nil)

// NewIngestService wires the pipeline. aggregator may be nil for processes
// that only load.
func NewIngestService(aggregator MenuAggregator, store snapshot.Store, loader SnapshotLoader, log *slog.Logger) *IngestService {
	return &IngestService{
		aggregator: aggregator,
		store:      store,
		loader:     loader,
		log:        logging.Component(log, "ingest"),
	}
}

// Scrape aggregates the locations and saves the snapshot artifact.
func (s *IngestService) Scrape(ctx context.Context, locations []model.Location) (*ScrapeResult, error) {
	if s.aggregator == nil {
		return nil, errors.New("scrape: no aggregator configured")
	}
	res, err := s.aggregator.Run(ctx, locations)
	if err != nil {
		return nil, fmt.Errorf("scrape: %w", err)
	}

	key, err := s.store.Save(ctx, res.Snapshot)
	if err != nil {
		return nil, fmt.Errorf("save snapshot: %w", err)
	}
	out := &ScrapeResult{
		Key:      key,
		Snapshot: res.Snapshot,
		Failures: res.Failures,
		Pairs:    res.Pairs,
		Days:     len(res.Snapshot.Days()),
		Items:    len(res.Snapshot.Records()),
		Failed:   len(res.Failures),
	}
	s.log.Info("snapshot saved", "key", key, "days", out.Days, "items", out.Items, "failed_pairs", out.Failed)
	return out, nil
}

// Load loads the artifact under key, or the latest one when key is empty.
func (s *IngestService) Load(ctx context.Context, key string) (*LoadResult, error) {
	if key == "" {
		latest, err := s.store.Latest(ctx)
		if err != nil {
			return nil, translateSnapshot(err, "latest snapshot")
		}
		key = latest
	}
	snap, err := s.store.Load(ctx, key)
	if err != nil {
		return nil, translateSnapshot(err, "load snapshot "+key)
	}
	report, err := s.loader.Load(ctx, snap)
	res := &LoadResult{Key: key, Snapshot: snap, Report: report}
	if err != nil {
		return res, fmt.Errorf("load %s: %w", key, err)
	}
	return res, nil
}

// LoadLegacy loads a document in the old scraper's JSON layout.
func (s *IngestService) LoadLegacy(ctx context.Context, r io.Reader) (*LoadResult, error) {
	snap, err := ingest.DecodeLegacy(r, func(err error) {
		s.log.Warn("malformed nutrition value", "error", err)
	})
	if err != nil {
		return nil, invalid("%v", err)
	}
	report, err := s.loader.Load(ctx, snap)
	res := &LoadResult{Snapshot: snap, Report: report}
	if err != nil {
		return res, fmt.Errorf("load legacy document: %w", err)
	}
	return res, nil
}

func translateSnapshot(err error, what string) error {
	if errors.Is(err, snapshot.ErrNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", what, err)
}
