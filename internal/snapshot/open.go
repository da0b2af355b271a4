package snapshot

import (
	"context"
	"fmt"

	"github.com/pageza/dininghall/backend/config"
)

// Open returns the store selected by SNAPSHOT_BACKEND.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.SnapshotBackend {
	case config.BackendS3:
		s3cfg, err := config.NewS3Config(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return NewS3StoreFromConfig(s3cfg), nil
	case config.BackendFile, "":
		return NewFileStore(cfg.SnapshotDir)
	default:
		return nil, fmt.Errorf("unknown snapshot backend %q", cfg.SnapshotBackend)
	}
}
