package service

import (
	"context"

	"design-pro/internal/models"
	"design-pro/internal/storage"

	"github.com/rs/zerolog"
)

// discardAttachments removes stored objects after their owning row is gone
// or was never written. Failures only leave orphans, so they are logged.
func discardAttachments(ctx context.Context, store storage.Store, log zerolog.Logger, keys ...string) {
	for _, k := range keys {
		if k == "" {
			continue
		}
		if err := store.Delete(ctx, k); err != nil {
			log.Warn().Err(err).Str("key", k).Msg("attachment cleanup failed")
		}
	}
}

func resolveURLs(store storage.Store, r *models.Request) {
	r.PhotoURL = store.URL(r.Photo)
	r.DesignImageURL = store.URL(r.DesignImage)
}
