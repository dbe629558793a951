package handlers

import (
	"strings"

	types "github.com/yungbote/spacekeeper-backend/internal/domain"
	"github.com/yungbote/spacekeeper-backend/internal/platform/gcp"
)

// Stored URLs go stale when the public base changes (CDN, emulator, local
// media). Keys are authoritative, so URLs are re-derived on the way out.
func resolveBucketBackedURL(
	bucket gcp.BucketService,
	category gcp.BucketCategory,
	storageKey string,
	currentURL string,
) string {
	key := strings.TrimSpace(storageKey)
	if bucket == nil || key == "" {
		return strings.TrimSpace(currentURL)
	}
	resolved := strings.TrimSpace(bucket.GetPublicURL(category, key))
	if resolved == "" {
		return strings.TrimSpace(currentURL)
	}
	return resolved
}

func normalizeSpaceURLs(bucket gcp.BucketService, spaces ...*types.Space) {
	for _, s := range spaces {
		if s == nil {
			continue
		}
		s.ImageURL = resolveBucketBackedURL(bucket, gcp.BucketCategorySpace, s.ImageKey, s.ImageURL)
		s.ThumbnailURL = resolveBucketBackedURL(bucket, gcp.BucketCategorySpace, s.ThumbnailKey, s.ThumbnailURL)
	}
}

func normalizeItemURLs(bucket gcp.BucketService, items ...*types.Item) {
	for _, it := range items {
		if it == nil {
			continue
		}
		it.ImageURL = resolveBucketBackedURL(bucket, gcp.BucketCategoryItem, it.ImageKey, it.ImageURL)
		it.ThumbnailURL = resolveBucketBackedURL(bucket, gcp.BucketCategoryItem, it.ThumbnailKey, it.ThumbnailURL)
	}
}
