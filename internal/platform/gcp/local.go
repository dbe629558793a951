package gcp

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/yungbote/spacekeeper-backend/internal/pkg/dbctx"
	"github.com/yungbote/spacekeeper-backend/internal/platform/logger"
)

// LocalMediaPrefix is the URL path under which the HTTP server exposes a
// local bucket directory.
const LocalMediaPrefix = "/media"

// localBucketService keeps objects on disk under <dir>/<category>/<key> for
// single-node runs without GCS.
type localBucketService struct {
	log           *logger.Logger
	dir           string
	publicBaseURL string
}

func newLocalBucketService(log *logger.Logger, dir, publicBaseURL string) (BucketService, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve LOCAL_STORAGE_DIR: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create LOCAL_STORAGE_DIR: %w", err)
	}
	serviceLog := log.With("service", "LocalBucketService")
	serviceLog.Info("Object storage initialized", "mode", ObjectStorageModeLocal, "dir", abs, "public_base_url", publicBaseURL)
	return &localBucketService{log: serviceLog, dir: abs, publicBaseURL: publicBaseURL}, nil
}

func (ls *localBucketService) path(category BucketCategory, key string) (string, error) {
	switch category {
	case BucketCategoryAvatar, BucketCategorySpace, BucketCategoryItem:
	default:
		return "", fmt.Errorf("unknown bucket category: %s", category)
	}
	clean := filepath.Clean("/" + strings.TrimSpace(key))
	if clean == "/" {
		return "", fmt.Errorf("empty object key")
	}
	return filepath.Join(ls.dir, string(category), clean), nil
}

func (ls *localBucketService) UploadFile(_ dbctx.Context, category BucketCategory, key string, file io.Reader) error {
	p, err := ls.path(category, key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("create object dir: %w", err)
	}
	f, err := os.Create(p)
	if err != nil {
		return fmt.Errorf("create object %q: %w", key, err)
	}
	if _, err := io.Copy(f, file); err != nil {
		_ = f.Close()
		return fmt.Errorf("write object %q: %w", key, err)
	}
	return f.Close()
}

func (ls *localBucketService) DeleteFile(_ dbctx.Context, category BucketCategory, key string) error {
	p, err := ls.path(category, key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete object %q: %w", key, err)
	}
	return nil
}

func (ls *localBucketService) GetPublicURL(category BucketCategory, key string) string {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	return fmt.Sprintf("%s%s/%s/%s", ls.publicBaseURL, LocalMediaPrefix, category, key)
}
