package services

import (
	"bytes"
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	_ "image/jpeg"
	_ "image/png"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/google/uuid"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/spacekeeper-backend/internal/pkg/dbctx"
	"github.com/yungbote/spacekeeper-backend/internal/platform/apierr"
	"github.com/yungbote/spacekeeper-backend/internal/platform/gcp"
	"github.com/yungbote/spacekeeper-backend/internal/platform/logger"
)

const (
	MaxImageBytes = 10 << 20
	ThumbnailSize = 256

	maxImageSide = 12000
)

var placeholderPalette = []color.NRGBA{
	{R: 0x3B, G: 0x82, B: 0xF6, A: 0xFF},
	{R: 0x10, G: 0xB9, B: 0x81, A: 0xFF},
	{R: 0xF5, G: 0x9E, B: 0x0B, A: 0xFF},
	{R: 0xEF, G: 0x44, B: 0x44, A: 0xFF},
	{R: 0x8B, G: 0x5C, B: 0xF6, A: 0xFF},
	{R: 0xEC, G: 0x48, B: 0x99, A: 0xFF},
	{R: 0x14, G: 0xB8, B: 0xA6, A: 0xFF},
	{R: 0x64, G: 0x74, B: 0x8B, A: 0xFF},
}

// ImageTarget says where an entity's images live.
type ImageTarget struct {
	Category gcp.BucketCategory
	Prefix   string
}

func AvatarImageTarget(userID uuid.UUID) ImageTarget {
	return ImageTarget{Category: gcp.BucketCategoryAvatar, Prefix: "avatars/" + userID.String()}
}

func SpaceImageTarget(spaceID uuid.UUID) ImageTarget {
	return ImageTarget{Category: gcp.BucketCategorySpace, Prefix: "spaces/" + spaceID.String()}
}

func ItemImageTarget(itemID uuid.UUID) ImageTarget {
	return ImageTarget{Category: gcp.BucketCategoryItem, Prefix: "items/" + itemID.String()}
}

// StoredImage holds object keys and public URLs. Placeholders only have a
// thumbnail.
type StoredImage struct {
	Key          string
	URL          string
	ThumbnailKey string
	ThumbnailURL string
}

type ImageService interface {
	StoreUpload(dbc dbctx.Context, target ImageTarget, raw []byte) (*StoredImage, error)
	StorePlaceholder(dbc dbctx.Context, target ImageTarget, label string) (*StoredImage, error)
	Delete(dbc dbctx.Context, category gcp.BucketCategory, keys ...string)
}

type imageService struct {
	log    *logger.Logger
	bucket gcp.BucketService

	// truetype faces cache glyphs without locking.
	fontMu   sync.Mutex
	fontFace font.Face
}

func NewImageService(log *logger.Logger, bucket gcp.BucketService) (ImageService, error) {
	parsed, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse placeholder font: %w", err)
	}
	face := truetype.NewFace(parsed, &truetype.Options{
		Size:    96,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	return &imageService{
		log:      log.With("service", "ImageService"),
		bucket:   bucket,
		fontFace: face,
	}, nil
}

func (is *imageService) StoreUpload(dbc dbctx.Context, target ImageTarget, raw []byte) (*StoredImage, error) {
	if len(raw) == 0 {
		return nil, apierr.BadRequest("missing_image", "image file is empty")
	}
	if len(raw) > MaxImageBytes {
		return nil, apierr.TooLarge("image_too_large", "image exceeds %d bytes", MaxImageBytes)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, apierr.BadRequest("invalid_image", "decode image: %v", err)
	}
	if cfg.Width > maxImageSide || cfg.Height > maxImageSide {
		return nil, apierr.TooLarge("image_too_large", "image dimensions exceed %dpx", maxImageSide)
	}
	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, apierr.BadRequest("invalid_image", "decode image: %v", err)
	}
	ext := ""
	switch format {
	case "jpeg":
		ext = "jpg"
	case "png":
		ext = "png"
	default:
		return nil, apierr.BadRequest("unsupported_image", "unsupported image format %q", format)
	}

	thumb, err := thumbnailPNG(img, ThumbnailSize)
	if err != nil {
		return nil, err
	}

	version := time.Now().UnixNano()
	out := &StoredImage{
		Key:          fmt.Sprintf("%s/%d/original.%s", target.Prefix, version, ext),
		ThumbnailKey: fmt.Sprintf("%s/%d/thumb.png", target.Prefix, version),
	}

	var g errgroup.Group
	g.Go(func() error {
		if err := is.bucket.UploadFile(dbc, target.Category, out.Key, bytes.NewReader(raw)); err != nil {
			return fmt.Errorf("upload original: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := is.bucket.UploadFile(dbc, target.Category, out.ThumbnailKey, bytes.NewReader(thumb)); err != nil {
			return fmt.Errorf("upload thumbnail: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		is.Delete(dbc, target.Category, out.Key, out.ThumbnailKey)
		return nil, err
	}

	out.URL = is.bucket.GetPublicURL(target.Category, out.Key)
	out.ThumbnailURL = is.bucket.GetPublicURL(target.Category, out.ThumbnailKey)
	return out, nil
}

func (is *imageService) StorePlaceholder(dbc dbctx.Context, target ImageTarget, label string) (*StoredImage, error) {
	tile, err := is.renderPlaceholder(label)
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("%s/placeholder-%d.png", target.Prefix, time.Now().UnixNano())
	if err := is.bucket.UploadFile(dbc, target.Category, key, bytes.NewReader(tile)); err != nil {
		return nil, fmt.Errorf("upload placeholder: %w", err)
	}
	return &StoredImage{
		ThumbnailKey: key,
		ThumbnailURL: is.bucket.GetPublicURL(target.Category, key),
	}, nil
}

// Delete removes objects best-effort; failures are only logged.
func (is *imageService) Delete(dbc dbctx.Context, category gcp.BucketCategory, keys ...string) {
	for _, k := range keys {
		if strings.TrimSpace(k) == "" {
			continue
		}
		if err := is.bucket.DeleteFile(dbc, category, k); err != nil {
			is.log.Warn("Failed to delete image object (ignored)", "category", category, "key", k, "error", err)
		}
	}
}

func (is *imageService) renderPlaceholder(label string) ([]byte, error) {
	const size = ThumbnailSize
	initials := Initials(label)

	dc := gg.NewContext(size, size)
	dc.SetColor(placeholderColor(label))
	dc.DrawRectangle(0, 0, size, size)
	dc.Fill()

	is.fontMu.Lock()
	dc.SetFontFace(is.fontFace)
	dc.SetColor(color.White)
	dc.DrawStringAnchored(initials, size/2, size/2, 0.5, 0.35)
	is.fontMu.Unlock()

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode placeholder: %w", err)
	}
	return buf.Bytes(), nil
}

// thumbnailPNG centre-crops img to a square and scales it to size x size.
func thumbnailPNG(img image.Image, size int) ([]byte, error) {
	b := img.Bounds()
	side := b.Dx()
	if b.Dy() < side {
		side = b.Dy()
	}
	if side <= 0 {
		return nil, apierr.BadRequest("invalid_image", "image has no pixels")
	}
	x0 := b.Min.X + (b.Dx()-side)/2
	y0 := b.Min.Y + (b.Dy()-side)/2
	crop := image.Rect(x0, y0, x0+side, y0+side)

	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, crop, draw.Over, nil)

	var buf bytes.Buffer
	if err := gg.NewContextForRGBA(dst).EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

// Initials takes the first letter of the first two words, or "?" when the
// label has no letters or digits.
func Initials(label string) string {
	var out []rune
	for _, w := range strings.Fields(label) {
		r, _ := utf8.DecodeRuneInString(w)
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		out = append(out, unicode.ToUpper(r))
		if len(out) == 2 {
			break
		}
	}
	if len(out) == 0 {
		return "?"
	}
	return string(out)
}

func placeholderColor(label string) color.NRGBA {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToLower(strings.TrimSpace(label))))
	return placeholderPalette[h.Sum32()%uint32(len(placeholderPalette))]
}
