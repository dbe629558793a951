package services

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/yungbote/spacekeeper-backend/internal/normalization"
	"github.com/yungbote/spacekeeper-backend/internal/platform/apierr"
	"github.com/yungbote/spacekeeper-backend/internal/platform/ctxutil"
)

const (
	maxNameLength        = 120
	maxDescriptionLength = 4000
)

var hexColorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

func requireUser(ctx context.Context) (uuid.UUID, error) {
	userID := ctxutil.UserID(ctx)
	if userID == uuid.Nil {
		return uuid.Nil, apierr.Unauthorized("unauthorized", "no authenticated user in request")
	}
	return userID, nil
}

// cleanName collapses whitespace and enforces presence and length.
func cleanName(field, raw string) (string, error) {
	name := normalization.CollapseWhitespace(raw)
	if name == "" {
		return "", apierr.BadRequest("invalid_"+field, "%s is required", field)
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return "", apierr.BadRequest("invalid_"+field, "%s must be at most %d characters", field, maxNameLength)
	}
	return name, nil
}

func cleanDescription(raw string) (string, error) {
	desc := strings.TrimSpace(raw)
	if utf8.RuneCountInString(desc) > maxDescriptionLength {
		return "", apierr.BadRequest("invalid_description", "description must be at most %d characters", maxDescriptionLength)
	}
	return desc, nil
}
