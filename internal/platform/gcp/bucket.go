package gcp

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/yungbote/spacekeeper-backend/internal/pkg/dbctx"
	"github.com/yungbote/spacekeeper-backend/internal/platform/logger"
)

type BucketCategory string

const (
	BucketCategoryAvatar BucketCategory = "avatar"
	BucketCategorySpace  BucketCategory = "space"
	BucketCategoryItem   BucketCategory = "item"
)

type bucketConfig struct {
	name      string
	cdnDomain string
}

type BucketService interface {
	UploadFile(dbc dbctx.Context, category BucketCategory, key string, file io.Reader) error
	DeleteFile(dbc dbctx.Context, category BucketCategory, key string) error
	GetPublicURL(category BucketCategory, key string) string
}

// BucketConfig names the buckets backing each category. PublicBaseURL
// overrides the host used in public object URLs.
type BucketConfig struct {
	Storage       ObjectStorageConfig
	Credentials   string
	AvatarBucket  string
	SpaceBucket   string
	ItemBucket    string
	AvatarCDN     string
	SpaceCDN      string
	ItemCDN       string
	PublicBaseURL string
}

type bucketService struct {
	log           *logger.Logger
	storageClient *storage.Client
	storageMode   ObjectStorageMode
	emulatorHost  string
	buckets       map[BucketCategory]bucketConfig
	publicBaseURL string
}

func NewBucketService(log *logger.Logger, cfg BucketConfig) (BucketService, error) {
	if err := ValidateObjectStorageConfig(cfg.Storage); err != nil {
		return nil, fmt.Errorf("validate object storage config: %w", err)
	}
	publicBaseURL, publicBaseSource, err := resolveObjectStoragePublicBaseURL(cfg.PublicBaseURL, cfg.Storage)
	if err != nil {
		return nil, err
	}
	if cfg.Storage.IsLocalMode() {
		return newLocalBucketService(log, cfg.Storage.LocalDir, publicBaseURL)
	}

	serviceLog := log.With("service", "BucketService")
	buckets := map[BucketCategory]bucketConfig{
		BucketCategoryAvatar: {name: strings.TrimSpace(cfg.AvatarBucket), cdnDomain: cfg.AvatarCDN},
		BucketCategorySpace:  {name: strings.TrimSpace(cfg.SpaceBucket), cdnDomain: cfg.SpaceCDN},
		BucketCategoryItem:   {name: strings.TrimSpace(cfg.ItemBucket), cdnDomain: cfg.ItemCDN},
	}
	for _, cat := range []BucketCategory{BucketCategoryAvatar, BucketCategorySpace, BucketCategoryItem} {
		if buckets[cat].name == "" {
			return nil, fmt.Errorf("missing env var %s_GCS_BUCKET_NAME", strings.ToUpper(string(cat)))
		}
	}

	stClient, err := newStorageClientForMode(context.Background(), cfg.Storage, cfg.Credentials)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	serviceLog.Info(
		"Object storage initialized",
		"mode", cfg.Storage.Mode,
		"mode_source", cfg.Storage.ModeSource(),
		"emulator_host", cfg.Storage.EmulatorHost,
		"public_base_source", publicBaseSource,
		"public_base_url", publicBaseURL,
		"avatar_bucket", cfg.AvatarBucket,
		"space_bucket", cfg.SpaceBucket,
		"item_bucket", cfg.ItemBucket,
	)

	return &bucketService{
		log:           serviceLog,
		storageClient: stClient,
		storageMode:   cfg.Storage.Mode,
		emulatorHost:  strings.TrimRight(strings.TrimSpace(cfg.Storage.EmulatorHost), "/"),
		buckets:       buckets,
		publicBaseURL: publicBaseURL,
	}, nil
}

func newStorageClientForMode(ctx context.Context, storageCfg ObjectStorageConfig, creds string) (*storage.Client, error) {
	switch storageCfg.Mode {
	case ObjectStorageModeGCS:
		opts := ClientOptionsFromCredentials(creds)
		opts = append(opts, option.WithScopes(storage.ScopeReadWrite))
		return storage.NewClient(ctx, opts...)
	case ObjectStorageModeGCSEmulator:
		endpoint := strings.TrimRight(strings.TrimSpace(storageCfg.EmulatorHost), "/")
		// The storage client only honours the emulator through the env var.
		_ = os.Setenv("STORAGE_EMULATOR_HOST", endpoint)
		return storage.NewClient(ctx, option.WithoutAuthentication())
	default:
		return nil, &ObjectStorageConfigError{
			Code: ObjectStorageConfigErrorInvalidMode,
			Mode: string(storageCfg.Mode),
		}
	}
}

func resolveObjectStoragePublicBaseURL(raw string, storageCfg ObjectStorageConfig) (baseURL string, source string, err error) {
	raw = strings.TrimSpace(raw)
	if raw != "" {
		parsed, parseErr := url.Parse(raw)
		if parseErr != nil || strings.TrimSpace(parsed.Scheme) == "" || strings.TrimSpace(parsed.Host) == "" {
			return "", "", fmt.Errorf(
				"invalid OBJECT_STORAGE_PUBLIC_BASE_URL=%q; expected absolute URL like http://localhost:4443",
				raw,
			)
		}
		return strings.TrimRight(raw, "/"), "object_storage_public_base_url", nil
	}
	if storageCfg.IsEmulatorMode() {
		return strings.TrimRight(strings.TrimSpace(storageCfg.EmulatorHost), "/"), "storage_emulator_host", nil
	}
	return "", "gcs_default", nil
}

func (bs *bucketService) getBucketConfig(category BucketCategory) (bucketConfig, error) {
	cfg, ok := bs.buckets[category]
	if !ok {
		return bucketConfig{}, fmt.Errorf("unknown bucket category: %s", category)
	}
	return cfg, nil
}

func (bs *bucketService) UploadFile(dbc dbctx.Context, category BucketCategory, key string, file io.Reader) error {
	cfg, err := bs.getBucketConfig(category)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctxOrBackground(dbc.Ctx), 2*time.Minute)
	defer cancel()

	w := bs.storageClient.Bucket(cfg.name).Object(key).NewWriter(ctx)
	if ct := contentTypeForKey(key); ct != "" {
		w.ContentType = ct
	}
	if _, err := io.Copy(w, file); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write data to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close GCS writer: %w", err)
	}
	return nil
}

func (bs *bucketService) DeleteFile(dbc dbctx.Context, category BucketCategory, key string) error {
	cfg, err := bs.getBucketConfig(category)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctxOrBackground(dbc.Ctx), 30*time.Second)
	defer cancel()
	if err := bs.storageClient.Bucket(cfg.name).Object(key).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete GCS object %q in bucket %q: %w", key, cfg.name, err)
	}
	return nil
}

func (bs *bucketService) GetPublicURL(category BucketCategory, key string) string {
	cfg, err := bs.getBucketConfig(category)
	if err != nil {
		return key
	}
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if cfg.cdnDomain != "" {
		return fmt.Sprintf("https://%s/%s", cfg.cdnDomain, key)
	}
	if bs.storageMode == ObjectStorageModeGCSEmulator {
		if u := bs.emulatorObjectMediaURL(cfg.name, key); u != "" {
			return u
		}
	}
	if bs.publicBaseURL != "" {
		return fmt.Sprintf("%s/%s/%s", bs.publicBaseURL, cfg.name, key)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", cfg.name, key)
}

func (bs *bucketService) emulatorObjectMediaURL(bucket, key string) string {
	base := strings.TrimRight(strings.TrimSpace(bs.publicBaseURL), "/")
	if base == "" {
		base = strings.TrimRight(strings.TrimSpace(bs.emulatorHost), "/")
	}
	if base == "" {
		return ""
	}
	return fmt.Sprintf(
		"%s/storage/v1/b/%s/o/%s?alt=media",
		base,
		url.PathEscape(bucket),
		url.PathEscape(key),
	)
}

func contentTypeForKey(key string) string {
	s := strings.ToLower(strings.TrimSpace(key))
	if i := strings.Index(s, "?"); i >= 0 {
		s = s[:i]
	}
	switch path.Ext(s) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	}
	return ""
}

func ctxOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
