// Package ingest writes MenuSnapshots into the food item store.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/dininghall/backend/internal/database"
	"github.com/pageza/dininghall/backend/internal/logging"
	"github.com/pageza/dininghall/backend/internal/model"
)

var (
	// ErrStoreUnavailable aborts a load; nothing is retried against a dead store.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrDuplicateKey marks a record whose natural key is already persisted.
	ErrDuplicateKey = errors.New("duplicate natural key")
	// ErrInvalidRecord marks a record rejected by ValidateRecord.
	ErrInvalidRecord = errors.New("invalid food record")
)

// DefaultBatchSize bounds rows per insert statement.
const DefaultBatchSize = 100

// LoadReport counts the outcome of every record in a snapshot.
type LoadReport struct {
	Inserted         int `json:"inserted"`
	SkippedDuplicate int `json:"skipped_duplicate"`
	Failed           int `json:"failed"`
}

func (r LoadReport) Total() int { return r.Inserted + r.SkippedDuplicate + r.Failed }

func (r *LoadReport) add(o LoadReport) {
	r.Inserted += o.Inserted
	r.SkippedDuplicate += o.SkippedDuplicate
	r.Failed += o.Failed
}

// Loader inserts food records keyed by their natural key. Existing rows are
// never updated.
type Loader struct {
	db        *gorm.DB
	log       *slog.Logger
	batchSize int
}

type Option func(*Loader)

func WithBatchSize(n int) Option {
	return func(l *Loader) {
		if n > 0 {
			l.batchSize = n
		}
	}
}

func NewLoader(db *gorm.DB, log *slog.Logger, opts ...Option) *Loader {
	l := &Loader{
		db:        db,
		log:       logging.Component(log, "loader"),
		batchSize: DefaultBatchSize,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load persists every record in snap. Partial failures are reported in the
// LoadReport; only an unreachable store returns an error.
func (l *Loader) Load(ctx context.Context, snap *model.MenuSnapshot) (LoadReport, error) {
	var report LoadReport
	if err := l.ping(ctx); err != nil {
		return report, err
	}

	start := time.Now()
	var rows []model.FoodItem
	for _, rec := range snap.Records() {
		if err := ValidateRecord(rec); err != nil {
			l.log.Warn("skipping invalid record", "name", rec.Name, "location", rec.Location, "date", rec.Date, "error", err)
			report.Failed++
			continue
		}
		rows = append(rows, model.NewFoodItem(rec))
	}

	for i := 0; i < len(rows); i += l.batchSize {
		end := min(i+l.batchSize, len(rows))
		batch, err := l.loadBatch(ctx, rows[i:end])
		report.add(batch)
		if err != nil {
			return report, err
		}
	}

	l.log.Info("load finished",
		"snapshot", snap.ID,
		"inserted", report.Inserted,
		"skipped_duplicate", report.SkippedDuplicate,
		"failed", report.Failed,
		"duration", time.Since(start),
	)
	return report, nil
}

func (l *Loader) loadBatch(ctx context.Context, rows []model.FoodItem) (LoadReport, error) {
	var report LoadReport
	res := l.insert(ctx).Create(&rows)
	if res.Error == nil {
		report.Inserted = int(res.RowsAffected)
		report.SkippedDuplicate = len(rows) - report.Inserted
		return report, nil
	}

	if err := l.ping(ctx); err != nil {
		return report, err
	}
	l.log.Warn("batch insert failed, retrying records individually", "size", len(rows), "error", res.Error)

	for i := range rows {
		switch err := l.insertOne(ctx, &rows[i]); {
		case err == nil:
			report.Inserted++
		case errors.Is(err, ErrDuplicateKey):
			report.SkippedDuplicate++
		default:
			if pingErr := l.ping(ctx); pingErr != nil {
				return report, pingErr
			}
			report.Failed++
			l.log.Warn("record insert failed", "name", rows[i].Name, "location", rows[i].Location, "date", rows[i].MenuDate, "error", err)
		}
	}
	return report, nil
}

func (l *Loader) insertOne(ctx context.Context, row *model.FoodItem) error {
	res := l.insert(ctx).Create(row)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrDuplicateKey
	}
	return nil
}

func (l *Loader) insert(ctx context.Context) *gorm.DB {
	cols := make([]clause.Column, len(model.NaturalKeyColumns))
	for i, name := range model.NaturalKeyColumns {
		cols[i] = clause.Column{Name: name}
	}
	return l.db.WithContext(ctx).Clauses(clause.OnConflict{Columns: cols, DoNothing: true})
}

func (l *Loader) ping(ctx context.Context) error {
	if err := database.HealthCheck(ctx, l.db); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// ValidateRecord checks the fields the store constrains.
func ValidateRecord(r model.FoodRecord) error {
	switch {
	case r.Name == "":
		return fmt.Errorf("%w: empty name", ErrInvalidRecord)
	case !r.Location.Valid():
		return fmt.Errorf("%w: %w", ErrInvalidRecord, model.ErrUnknownLocation)
	case r.MealType == "":
		return fmt.Errorf("%w: empty meal type", ErrInvalidRecord)
	}
	if _, err := time.Parse(model.DateLayout, r.Date); err != nil {
		return fmt.Errorf("%w: date %q", ErrInvalidRecord, r.Date)
	}
	n := r.Nutrition
	if n.Calories != nil && *n.Calories < 0 {
		return fmt.Errorf("%w: negative calories", ErrInvalidRecord)
	}
	for _, v := range []*float64{n.TotalFat, n.Sodium, n.TotalCarb, n.DietaryFiber, n.Sugars, n.Protein} {
		if v != nil && *v < 0 {
			return fmt.Errorf("%w: negative nutrient", ErrInvalidRecord)
		}
	}
	return nil
}
