package ports

import (
	"context"
	"io"

	"epidash/domain/charts"
)

// Renderer turns computed views into a displayable artifact. Renderers only
// read the views; pixel or markup output is their own concern.
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, views charts.Views, w io.Writer) error
}
