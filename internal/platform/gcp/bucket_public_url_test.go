package gcp

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yungbote/spacekeeper-backend/internal/pkg/dbctx"
	"github.com/yungbote/spacekeeper-backend/internal/platform/logger"
)

func TestResolveObjectStoragePublicBaseURL(t *testing.T) {
	cases := []struct {
		name       string
		raw        string
		cfg        ObjectStorageConfig
		wantURL    string
		wantSource string
	}{
		{"gcs default", "", ObjectStorageConfig{Mode: ObjectStorageModeGCS}, "", "gcs_default"},
		{"emulator fallback", "", ObjectStorageConfig{Mode: ObjectStorageModeGCSEmulator, EmulatorHost: "http://fake-gcs:4443"}, "http://fake-gcs:4443", "storage_emulator_host"},
		{"explicit override", "http://localhost:4443/", ObjectStorageConfig{Mode: ObjectStorageModeGCSEmulator, EmulatorHost: "http://fake-gcs:4443"}, "http://localhost:4443", "object_storage_public_base_url"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			baseURL, source, err := resolveObjectStoragePublicBaseURL(tc.raw, tc.cfg)
			if err != nil {
				t.Fatalf("resolveObjectStoragePublicBaseURL: %v", err)
			}
			if baseURL != tc.wantURL || source != tc.wantSource {
				t.Fatalf("want=(%q,%q) got=(%q,%q)", tc.wantURL, tc.wantSource, baseURL, source)
			}
		})
	}

	if _, _, err := resolveObjectStoragePublicBaseURL("localhost:4443", ObjectStorageConfig{Mode: ObjectStorageModeGCS}); err == nil {
		t.Fatalf("expected error for relative public base url")
	}
}

func TestGetPublicURL(t *testing.T) {
	cases := []struct {
		name     string
		bs       *bucketService
		category BucketCategory
		key      string
		want     string
	}{
		{
			name:     "gcs default",
			bs:       &bucketService{buckets: map[BucketCategory]bucketConfig{BucketCategorySpace: {name: "space-bucket"}}},
			category: BucketCategorySpace,
			key:      "spaces/s1/original.png",
			want:     "https://storage.googleapis.com/space-bucket/spaces/s1/original.png",
		},
		{
			name:     "cdn domain",
			bs:       &bucketService{buckets: map[BucketCategory]bucketConfig{BucketCategoryItem: {name: "item-bucket", cdnDomain: "cdn.example.com"}}},
			category: BucketCategoryItem,
			key:      "items/i1/thumb.png",
			want:     "https://cdn.example.com/items/i1/thumb.png",
		},
		{
			name:     "public base url",
			bs:       &bucketService{publicBaseURL: "http://localhost:4443", buckets: map[BucketCategory]bucketConfig{BucketCategoryItem: {name: "item-bucket"}}},
			category: BucketCategoryItem,
			key:      "/items/i1/thumb.png",
			want:     "http://localhost:4443/item-bucket/items/i1/thumb.png",
		},
		{
			name:     "emulator media endpoint",
			bs:       &bucketService{storageMode: ObjectStorageModeGCSEmulator, emulatorHost: "http://fake-gcs:4443", buckets: map[BucketCategory]bucketConfig{BucketCategorySpace: {name: "space-bucket"}}},
			category: BucketCategorySpace,
			key:      "spaces/s1/thumb.png",
			want:     "http://fake-gcs:4443/storage/v1/b/space-bucket/o/spaces%2Fs1%2Fthumb.png?alt=media",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.bs.GetPublicURL(tc.category, tc.key); got != tc.want {
				t.Fatalf("GetPublicURL: want=%q got=%q", tc.want, got)
			}
		})
	}
}

func TestContentTypeForKey(t *testing.T) {
	if got := contentTypeForKey("a/b.PNG"); got != "image/png" {
		t.Fatalf("png: got=%q", got)
	}
	if got := contentTypeForKey("a/b.jpeg?x=1"); got != "image/jpeg" {
		t.Fatalf("jpeg: got=%q", got)
	}
	if got := contentTypeForKey("a/b.bin"); got != "" {
		t.Fatalf("bin: got=%q", got)
	}
}

func TestLocalBucketLifecycle(t *testing.T) {
	dir := t.TempDir()
	bs, err := NewBucketService(logger.Nop(), BucketConfig{
		Storage: ObjectStorageConfig{Mode: ObjectStorageModeLocal, LocalDir: dir},
	})
	if err != nil {
		t.Fatalf("NewBucketService: %v", err)
	}
	dbc := dbctx.New(context.Background())

	if err := bs.UploadFile(dbc, BucketCategoryItem, "items/i1/original.png", strings.NewReader("png-bytes")); err != nil {
		t.Fatalf("UploadFile: %v", err)
	}
	f, err := os.Open(filepath.Join(dir, "item", "items", "i1", "original.png"))
	if err != nil {
		t.Fatalf("open stored object: %v", err)
	}
	body, _ := io.ReadAll(f)
	_ = f.Close()
	if string(body) != "png-bytes" {
		t.Fatalf("stored body: got=%q", body)
	}

	if got := bs.GetPublicURL(BucketCategoryItem, "items/i1/original.png"); got != "/media/item/items/i1/original.png" {
		t.Fatalf("GetPublicURL: got=%q", got)
	}

	if err := bs.UploadFile(dbc, BucketCategoryItem, "../../escape.png", strings.NewReader("x")); err != nil {
		t.Fatalf("UploadFile(traversal): %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "item", "escape.png")); err != nil {
		t.Fatalf("traversal key should stay inside category dir: %v", err)
	}

	if err := bs.DeleteFile(dbc, BucketCategoryItem, "items/i1/original.png"); err != nil {
		t.Fatalf("DeleteFile: %v", err)
	}
	if err := bs.DeleteFile(dbc, BucketCategoryItem, "items/i1/original.png"); err != nil {
		t.Fatalf("DeleteFile(missing): %v", err)
	}
	if err := bs.UploadFile(dbc, BucketCategory("video"), "a.png", strings.NewReader("x")); err == nil {
		t.Fatalf("expected error for unknown category")
	}
}
