package media

import "context"

// Uploader stores a logo image with the external image host and returns the
// delivery URL plus the storage reference. The concrete host integration
// lives behind this interface; a nil Uploader means submissions proceed
// without logos.
type Uploader interface {
	Upload(ctx context.Context, data []byte, filename string) (url, publicID string, err error)
}
