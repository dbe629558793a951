package view

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/spacekeeper-backend/internal/client/flows"
	types "github.com/yungbote/spacekeeper-backend/internal/domain"
)

func TestSpaceListRendersRows(t *testing.T) {
	st := DefaultStyles()
	out := SpaceList(st, []*types.Space{
		{ID: uuid.New(), Name: "Garage", Rows: 4, Cols: 6, GridCount: 2, ItemCount: 11},
		{ID: uuid.New(), Name: "Pantry", Rows: 2, Cols: 2},
	})
	assert.Contains(t, out, "Spaces")
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "Garage")
	assert.Contains(t, out, "4x6")
	assert.Contains(t, out, "11")
	assert.Contains(t, out, "Pantry")

	assert.Contains(t, SpaceList(st, nil), "No spaces yet.")
}

func TestItemListShowsTagsAndReminder(t *testing.T) {
	at := time.Date(2026, 5, 1, 9, 30, 0, 0, time.Local)
	it := &types.Item{ID: uuid.New(), Name: "Drill", Quantity: 2, Category: "tools", ReminderAt: &at}
	it.SetTags([]string{"power", "garage"})

	out := ItemList(DefaultStyles(), "Items", []*types.Item{it})
	assert.Contains(t, out, "Drill")
	assert.Contains(t, out, "power,garage")
	assert.Contains(t, out, "2026-05-01 09:30")
	assert.Contains(t, ItemList(DefaultStyles(), "Items", nil), "No items found.")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
	assert.Equal(t, "a", truncate("abc", 1))
}

func TestGridLayoutMarksCells(t *testing.T) {
	space := &types.Space{ID: uuid.New(), Name: "Shed", Rows: 2, Cols: 3}
	grids := []*types.Grid{
		{ID: uuid.New(), Name: "Shelf", Row: 0, Col: 0, RowSpan: 1, ColSpan: 2, ItemCount: 3},
	}
	out := GridLayout(DefaultStyles(), space, grids)
	require.NotEmpty(t, out)
	assert.Contains(t, out, "3 items")
	assert.Equal(t, 2, strings.Count(out, "Shelf"))
	// One uncovered cell in the first row and three in the second.
	assert.Equal(t, 4, strings.Count(out, "·"))

	assert.Empty(t, GridLayout(DefaultStyles(), nil, grids))
	assert.Empty(t, GridLayout(DefaultStyles(), &types.Space{}, grids))
}

func TestCards(t *testing.T) {
	st := DefaultStyles()
	space := &types.Space{ID: uuid.New(), Name: "Attic", Description: "boxes", Rows: 1, Cols: 1}
	out := SpaceCard(st, space, nil)
	assert.Contains(t, out, "Attic")
	assert.Contains(t, out, "boxes")
	assert.Contains(t, out, "1 rows x 1 cols")
	assert.Contains(t, SpaceCard(st, nil, nil), "No space selected.")

	item := &types.Item{ID: uuid.New(), Name: "Lamp", Quantity: 1}
	card := ItemCard(st, item)
	assert.Contains(t, card, "Lamp")
	assert.Contains(t, card, "unplaced")
	assert.NotContains(t, card, "Reminder")
	assert.Contains(t, ItemCard(st, nil), "No item selected.")

	assert.Contains(t, User(st, &types.User{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"}), "Ada Lovelace")
	assert.Contains(t, User(st, nil), "Not logged in.")
}

func TestFormSummarySortsKeys(t *testing.T) {
	out := FormSummary(DefaultStyles(), "New item", map[string]string{"quantity": "3", "name": "Rope"})
	require.Contains(t, out, "New item")
	assert.Less(t, strings.Index(out, "name"), strings.Index(out, "quantity"))
	assert.Contains(t, FormSummary(DefaultStyles(), "Empty", nil), "(empty)")
}

func TestStatus(t *testing.T) {
	st := DefaultStyles()
	assert.Contains(t, Status(st, true, "", flows.EditStatus{}), "Loading")
	assert.Contains(t, Status(st, false, "", flows.EditStatus{Done: true, IsSuccess: true, Kind: flows.EditCreate}), "create succeeded")
	assert.Contains(t, Status(st, false, "", flows.EditStatus{Done: true, Kind: flows.EditDelete, Message: "Not found"}), "delete failed: Not found")
	assert.Contains(t, Status(st, false, "network down", flows.EditStatus{}), "network down")
	assert.Empty(t, Status(st, false, "", flows.EditStatus{}))
}
