package services

import (
	"net/http"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/spacekeeper-backend/internal/data/repos/testutil"
	"github.com/yungbote/spacekeeper-backend/internal/platform/gcp"
	"github.com/yungbote/spacekeeper-backend/internal/realtime"
)

func TestCreateItemNormalizes(t *testing.T) {
	env := newTestEnv(t)
	space := testutil.SeedSpace(t, env.db, env.user.ID, "Garage", 4, 4)
	grid := testutil.SeedGrid(t, env.db, space, "Bench", 0, 0, 1, 1)

	item, err := env.items.CreateItem(env.ctx(), ItemInput{
		SpaceID:  space.ID,
		GridID:   &grid.ID,
		Name:     "  Cordless   Drill ",
		Category: " Tools ",
		Tags:     []string{" Power ", "power", "", "DeWalt"},
	})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	if item.Name != "Cordless Drill" || item.Category != "Tools" {
		t.Fatalf("unexpected name/category: %q %q", item.Name, item.Category)
	}
	if item.Quantity != 1 {
		t.Fatalf("quantity: want=1 got=%d", item.Quantity)
	}
	if got := item.TagList(); !reflect.DeepEqual(got, []string{"power", "dewalt"}) {
		t.Fatalf("tags: want=[power dewalt] got=%v", got)
	}
	if !env.bucket.has(gcp.BucketCategoryItem, item.ThumbnailKey) {
		t.Fatalf("placeholder missing")
	}
	if env.emitter.last().Event != realtime.SSEEventItemChanged {
		t.Fatalf("expected item notification")
	}
}

func TestCreateItemValidation(t *testing.T) {
	env := newTestEnv(t)
	space := testutil.SeedSpace(t, env.db, env.user.ID, "Garage", 4, 4)
	otherSpace := testutil.SeedSpace(t, env.db, env.user.ID, "Attic", 4, 4)
	foreignGrid := testutil.SeedGrid(t, env.db, otherSpace, "Beam", 0, 0, 1, 1)

	_, err := env.items.CreateItem(env.ctx(), ItemInput{SpaceID: space.ID, Name: ""})
	wantStatus(t, err, http.StatusBadRequest)

	_, err = env.items.CreateItem(env.ctx(), ItemInput{SpaceID: space.ID, Name: "Nails", Quantity: ptr(-1)})
	wantStatus(t, err, http.StatusBadRequest)

	_, err = env.items.CreateItem(env.ctx(), ItemInput{Name: "Nails"})
	wantStatus(t, err, http.StatusBadRequest)

	_, err = env.items.CreateItem(env.ctx(), ItemInput{SpaceID: uuid.New(), Name: "Nails"})
	wantStatus(t, err, http.StatusNotFound)

	_, err = env.items.CreateItem(env.ctx(), ItemInput{SpaceID: space.ID, GridID: &foreignGrid.ID, Name: "Nails"})
	wantStatus(t, err, http.StatusBadRequest)

	zero, err := env.items.CreateItem(env.ctx(), ItemInput{SpaceID: space.ID, Name: "Empty box", Quantity: ptr(0)})
	if err != nil {
		t.Fatalf("zero quantity: %v", err)
	}
	if zero.Quantity != 0 {
		t.Fatalf("quantity: want=0 got=%d", zero.Quantity)
	}
}

func TestUpdateItemPlacement(t *testing.T) {
	env := newTestEnv(t)
	garage := testutil.SeedSpace(t, env.db, env.user.ID, "Garage", 4, 4)
	attic := testutil.SeedSpace(t, env.db, env.user.ID, "Attic", 4, 4)
	bench := testutil.SeedGrid(t, env.db, garage, "Bench", 0, 0, 1, 1)
	beam := testutil.SeedGrid(t, env.db, attic, "Beam", 0, 0, 1, 1)
	item := testutil.SeedItem(t, env.db, garage, &bench.ID, "Ladder")

	// Grid from another space is rejected while the item stays in the garage.
	_, err := env.items.UpdateItem(env.ctx(), item.ID, ItemPatch{GridID: &beam.ID})
	wantStatus(t, err, http.StatusBadRequest)

	moved, err := env.items.UpdateItem(env.ctx(), item.ID, ItemPatch{SpaceID: &attic.ID})
	if err != nil {
		t.Fatalf("move space: %v", err)
	}
	if moved.SpaceID != attic.ID || moved.GridID != nil {
		t.Fatalf("move should drop grid: space=%s grid=%v", moved.SpaceID, moved.GridID)
	}

	placed, err := env.items.UpdateItem(env.ctx(), item.ID, ItemPatch{GridID: &beam.ID})
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	if placed.GridID == nil || *placed.GridID != beam.ID {
		t.Fatalf("grid: want=%s got=%v", beam.ID, placed.GridID)
	}

	cleared, err := env.items.UpdateItem(env.ctx(), item.ID, ItemPatch{ClearGrid: true, Tags: &[]string{"Tall", "tall"}})
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if cleared.GridID != nil {
		t.Fatalf("grid should be cleared")
	}
	if got := cleared.TagList(); !reflect.DeepEqual(got, []string{"tall"}) {
		t.Fatalf("tags: want=[tall] got=%v", got)
	}
}

func TestUpdateItemReminderResetsSentAt(t *testing.T) {
	env := newTestEnv(t)
	space := testutil.SeedSpace(t, env.db, env.user.ID, "Fridge", 4, 4)
	at := time.Now().UTC().Add(-time.Hour).Truncate(time.Second)

	item, err := env.items.CreateItem(env.ctx(), ItemInput{SpaceID: space.ID, Name: "Milk", ReminderAt: &at, ReminderNote: "check date"})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	if n, err := env.reminders.ProcessDue(env.ctx(), time.Now()); err != nil || n != 1 {
		t.Fatalf("ProcessDue: n=%d err=%v", n, err)
	}
	sent, _ := env.items.GetItem(env.ctx(), item.ID)
	if sent.ReminderSentAt == nil {
		t.Fatalf("reminder should be marked sent")
	}

	// Same time keeps the sent marker.
	same, err := env.items.UpdateItem(env.ctx(), item.ID, ItemPatch{ReminderAt: &at})
	if err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	if same.ReminderSentAt == nil {
		t.Fatalf("unchanged reminder_at should keep reminder_sent_at")
	}

	later := at.Add(48 * time.Hour)
	rescheduled, err := env.items.UpdateItem(env.ctx(), item.ID, ItemPatch{ReminderAt: &later})
	if err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	if rescheduled.ReminderSentAt != nil {
		t.Fatalf("changed reminder_at should clear reminder_sent_at")
	}
	if rescheduled.ReminderNote != "check date" {
		t.Fatalf("note: want=%q got=%q", "check date", rescheduled.ReminderNote)
	}

	cleared, err := env.items.UpdateItem(env.ctx(), item.ID, ItemPatch{ClearReminder: true})
	if err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	if cleared.ReminderAt != nil || cleared.ReminderNote != "" {
		t.Fatalf("reminder should be cleared: %+v", cleared)
	}
}

func TestListItemsFilters(t *testing.T) {
	env := newTestEnv(t)
	space := testutil.SeedSpace(t, env.db, env.user.ID, "Garage", 4, 4)
	grid := testutil.SeedGrid(t, env.db, space, "Bench", 0, 0, 1, 1)
	testutil.SeedItem(t, env.db, space, &grid.ID, "Wrench")
	testutil.SeedItem(t, env.db, space, nil, "Bucket")

	inGrid, err := env.items.ListItems(env.ctx(), ItemQuery{SpaceID: &space.ID, GridID: &grid.ID})
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(inGrid) != 1 || inGrid[0].Name != "Wrench" {
		t.Fatalf("grid filter: unexpected %d items", len(inGrid))
	}
	unplaced, err := env.items.ListItems(env.ctx(), ItemQuery{SpaceID: &space.ID, Unplaced: true})
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(unplaced) != 1 || unplaced[0].Name != "Bucket" {
		t.Fatalf("unplaced filter: unexpected %d items", len(unplaced))
	}

	missing := uuid.New()
	_, err = env.items.ListItems(env.ctx(), ItemQuery{SpaceID: &missing})
	wantStatus(t, err, http.StatusNotFound)
}

func TestDeleteAndUploadItem(t *testing.T) {
	env := newTestEnv(t)
	space := testutil.SeedSpace(t, env.db, env.user.ID, "Garage", 4, 4)
	item, err := env.items.CreateItem(env.ctx(), ItemInput{SpaceID: space.ID, Name: "Helmet"})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}

	withImage, err := env.items.UploadItemImage(env.ctx(), item.ID, pngBytes(t, 64, 64))
	if err != nil {
		t.Fatalf("UploadItemImage: %v", err)
	}
	if !env.bucket.has(gcp.BucketCategoryItem, withImage.ImageKey) {
		t.Fatalf("original not stored")
	}

	if err := env.items.DeleteItem(env.ctx(), item.ID); err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}
	if env.bucket.has(gcp.BucketCategoryItem, withImage.ImageKey) || env.bucket.has(gcp.BucketCategoryItem, withImage.ThumbnailKey) {
		t.Fatalf("images should be removed with the item")
	}
	_, err = env.items.GetItem(env.ctx(), item.ID)
	wantStatus(t, err, http.StatusNotFound)
}
