// Package blob wires the blob drivers and stores the dashboard selection in
// whichever one is configured.
package blob

import (
	"context"
	"fmt"

	"epidash/adapters/blob/core"
	"epidash/adapters/blob/fs"
	"epidash/adapters/blob/memory"
	"epidash/adapters/blob/s3"
	"epidash/internal/config"
)

// Open selects a Store implementation from configuration
func Open(ctx context.Context, cfg config.BlobConfig) (core.Store, error) {
	switch core.Driver(cfg.Driver) {
	case core.DriverFilesystem, "":
		return fs.New(cfg.FSRoot)
	case core.DriverMemory:
		return memory.New(), nil
	case core.DriverS3:
		return s3.New(ctx, s3.Config{
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			Endpoint:  cfg.S3Endpoint,
			PathStyle: cfg.S3PathStyle,
		})
	default:
		return nil, fmt.Errorf("unknown blob driver %s", cfg.Driver)
	}
}
