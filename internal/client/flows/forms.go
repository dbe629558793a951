package flows

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/spacekeeper-backend/internal/client/api"
)

// Form values are kept as the strings the user typed; these helpers turn a
// slice's form into request fields. Absent keys stay nil.

func SpaceFieldsFromForm(form map[string]string) (api.SpaceFields, error) {
	var f api.SpaceFields
	var err error
	f.Name = optString(form, "name")
	f.Description = optString(form, "description")
	if f.Rows, err = optInt(form, "rows"); err != nil {
		return f, err
	}
	if f.Cols, err = optInt(form, "cols"); err != nil {
		return f, err
	}
	return f, nil
}

func GridFieldsFromForm(form map[string]string) (api.GridFields, error) {
	var f api.GridFields
	var err error
	f.Name = optString(form, "name")
	f.Color = optString(form, "color")
	for key, dst := range map[string]**int{"row": &f.Row, "col": &f.Col, "row_span": &f.RowSpan, "col_span": &f.ColSpan} {
		if *dst, err = optInt(form, key); err != nil {
			return f, err
		}
	}
	return f, nil
}

func ItemFieldsFromForm(form map[string]string) (api.ItemFields, error) {
	var f api.ItemFields
	var err error
	if f.SpaceID, err = optUUID(form, "space_id"); err != nil {
		return f, err
	}
	if f.GridID, err = optUUID(form, "grid_id"); err != nil {
		return f, err
	}
	f.Name = optString(form, "name")
	f.Description = optString(form, "description")
	f.Category = optString(form, "category")
	f.ReminderNote = optString(form, "reminder_note")
	if raw, ok := form["tags"]; ok {
		tags := []string{}
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
		f.Tags = &tags
	}
	if f.Quantity, err = optInt(form, "quantity"); err != nil {
		return f, err
	}
	if raw, ok := form["reminder_at"]; ok {
		at, err := time.Parse(time.RFC3339, strings.TrimSpace(raw))
		if err != nil {
			return f, fmt.Errorf("reminder_at: want RFC3339 time: %w", err)
		}
		f.ReminderAt = &at
	}
	f.ClearGrid = form["clear_grid"] == "true"
	f.ClearReminder = form["clear_reminder"] == "true"
	return f, nil
}

func optString(form map[string]string, key string) *string {
	v, ok := form[key]
	if !ok {
		return nil
	}
	return &v
}

func optInt(form map[string]string, key string) (*int, error) {
	raw, ok := form[key]
	if !ok {
		return nil, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("%s: want integer, got %q", key, raw)
	}
	return &n, nil
}

func optUUID(form map[string]string, key string) (*uuid.UUID, error) {
	raw, ok := form[key]
	if !ok {
		return nil, nil
	}
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("%s: want uuid, got %q", key, raw)
	}
	return &id, nil
}
