package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/spacekeeper-backend/internal/observability"
	"github.com/yungbote/spacekeeper-backend/internal/platform/apierr"
	"github.com/yungbote/spacekeeper-backend/internal/platform/gcp"
	"github.com/yungbote/spacekeeper-backend/internal/services"
)

// ImageField is the multipart field carrying uploads.
const ImageField = "image"

func pathUUID(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param(name)))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, apierr.BadRequest("invalid_"+name, "invalid %s", name)
	}
	return id, nil
}

// queryUUID returns nil when the parameter is absent.
func queryUUID(c *gin.Context, name string) (*uuid.UUID, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return nil, apierr.BadRequest("invalid_"+name, "invalid %s", name)
	}
	return &id, nil
}

func parseUUIDPtr(field string, raw *string) (*uuid.UUID, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	id, err := uuid.Parse(strings.TrimSpace(*raw))
	if err != nil || id == uuid.Nil {
		return nil, apierr.BadRequest("invalid_"+field, "invalid %s", field)
	}
	return &id, nil
}

func bindJSON(c *gin.Context, out any) error {
	if err := c.ShouldBindJSON(out); err != nil {
		return apierr.BadRequest("invalid_request", "%v", err)
	}
	return nil
}

// readImage pulls the upload out of the multipart form, rejecting anything
// over services.MaxImageBytes.
func readImage(c *gin.Context, category gcp.BucketCategory) ([]byte, error) {
	raw, err := readImageField(c)
	status := "ok"
	switch {
	case err == nil:
	case errors.Is(err, errTooLarge):
		status = "too_large"
		err = apierr.TooLarge("image_too_large", "image exceeds %d bytes", services.MaxImageBytes)
	default:
		status = "invalid"
	}
	observability.Current().ObserveImageUpload(string(category), status, int64(len(raw)))
	return raw, err
}

var errTooLarge = errors.New("upload too large")

func readImageField(c *gin.Context) ([]byte, error) {
	fh, err := c.FormFile(ImageField)
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return nil, errTooLarge
		}
		return nil, apierr.BadRequest("missing_image", "multipart field %q is required", ImageField)
	}
	if fh.Size > services.MaxImageBytes {
		return nil, errTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return nil, apierr.BadRequest("invalid_image", "open upload: %v", err)
	}
	defer f.Close()
	raw, err := io.ReadAll(io.LimitReader(f, services.MaxImageBytes+1))
	if err != nil {
		return nil, apierr.BadRequest("invalid_image", "read upload: %v", err)
	}
	if len(raw) > services.MaxImageBytes {
		return nil, errTooLarge
	}
	return raw, nil
}
