// Package snapshot persists MenuSnapshots between aggregation and loading so
// the two steps can run independently.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/pageza/dininghall/backend/internal/model"
)

var ErrNotFound = errors.New("snapshot not found")

// Store saves and retrieves serialized snapshots by key.
type Store interface {
	Save(ctx context.Context, snap *model.MenuSnapshot) (string, error)
	Load(ctx context.Context, key string) (*model.MenuSnapshot, error)
	// Latest returns the key of the most recently created snapshot.
	Latest(ctx context.Context) (string, error)
}

const (
	keyPrefix = "snapshot-"
	keySuffix = ".json"
)

// KeyFor names a snapshot so that keys sort by creation time.
func KeyFor(snap *model.MenuSnapshot) string {
	return fmt.Sprintf("%s%s-%s%s", keyPrefix, snap.CreatedAt.UTC().Format("20060102T150405Z"), snap.ID, keySuffix)
}

// IsKey reports whether name looks like a snapshot key.
func IsKey(name string) bool {
	base := path.Base(name)
	return strings.HasPrefix(base, keyPrefix) && strings.HasSuffix(base, keySuffix)
}

func encode(w io.Writer, snap *model.MenuSnapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

func decode(r io.Reader) (*model.MenuSnapshot, error) {
	var snap model.MenuSnapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if err := validate(&snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// validate rejects documents that violate the snapshot invariants.
func validate(snap *model.MenuSnapshot) error {
	if snap.Locations == nil {
		snap.Locations = make(map[model.Location][]model.DayMenu)
	}
	for loc, days := range snap.Locations {
		if !loc.Valid() {
			return fmt.Errorf("decode snapshot: %w: %q", model.ErrUnknownLocation, loc)
		}
		seen := make(map[string]bool, len(days))
		for i, day := range days {
			if day.Location != loc {
				return fmt.Errorf("decode snapshot: day %d of %s is labelled %s", i, loc, day.Location)
			}
			if _, err := time.Parse(model.DateLayout, day.Date); err != nil {
				return fmt.Errorf("decode snapshot: bad date %q for %s", day.Date, loc)
			}
			if seen[day.Date] {
				return fmt.Errorf("decode snapshot: %w: %s %s", model.ErrDuplicateDay, loc, day.Date)
			}
			seen[day.Date] = true
		}
	}
	return nil
}
