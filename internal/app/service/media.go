package service

import "context"

// MediaStore persists uploaded profile pictures and maps stored paths to public URLs.
type MediaStore interface {
	SaveProfilePicture(ctx context.Context, username, filename string, data []byte) (string, error)
	Delete(ctx context.Context, rel string) error
	URL(rel string) string
}

// mediaURL tolerates a nil store so projections still render without media configured.
func mediaURL(store MediaStore) func(string) string {
	if store == nil {
		return nil
	}
	return store.URL
}
