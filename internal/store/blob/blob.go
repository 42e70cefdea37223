// Package blob persists generated artifacts and hands back a publicly
// reachable URL for the media row.
package blob

import "context"

type Store interface {
	Upload(ctx context.Context, key, contentType string, data []byte) (string, error)
}
