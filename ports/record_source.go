package ports

import (
	"context"

	"epidash/domain/cases"
)

// RecordSource loads the case dataset. Implementations preserve input row
// order and return every row they could read; a failure to reach or parse
// the resource is returned as an error.
type RecordSource interface {
	Load(ctx context.Context) ([]cases.Record, error)
	// Describe names the resource for logs (path or URL)
	Describe() string
}
