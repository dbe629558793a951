package inventory

import (
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/spacekeeper-backend/internal/data/repos/testutil"
)

func TestSpaceRepoOwnershipAndCounts(t *testing.T) {
	db := testutil.DB(t)
	dbc := testutil.Ctx()
	repo := NewSpaceRepo(db, testutil.Logger(t))

	owner := testutil.SeedUser(t, db, "owner@example.com")
	other := testutil.SeedUser(t, db, "other@example.com")

	garage := testutil.SeedSpace(t, db, owner.ID, "Garage", 4, 4)
	testutil.SeedSpace(t, db, owner.ID, "Attic", 2, 2)
	testutil.SeedSpace(t, db, other.ID, "Basement", 3, 3)

	shelf := testutil.SeedGrid(t, db, garage, "Shelf", 0, 0, 1, 2)
	testutil.SeedItem(t, db, garage, &shelf.ID, "Drill")
	testutil.SeedItem(t, db, garage, nil, "Ladder")

	got, err := repo.GetByID(dbc, owner.ID, garage.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got == nil || got.GridCount != 1 || got.ItemCount != 2 {
		t.Fatalf("GetByID: unexpected %+v", got)
	}

	if got, err := repo.GetByID(dbc, other.ID, garage.ID); err != nil || got != nil {
		t.Fatalf("GetByID(other owner): got=%v err=%v", got, err)
	}
	if got, err := repo.GetByID(dbc, owner.ID, uuid.New()); err != nil || got != nil {
		t.Fatalf("GetByID(missing): got=%v err=%v", got, err)
	}

	list, err := repo.ListByUser(dbc, owner.ID)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(list) != 2 || list[0].Name != "Attic" || list[1].Name != "Garage" {
		t.Fatalf("ListByUser: unexpected order %+v", list)
	}

	garage.Description = "cars and tools"
	if err := repo.Save(dbc, garage); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := repo.SoftDelete(dbc, owner.ID, garage.ID); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}
	if got, err := repo.GetByID(dbc, owner.ID, garage.ID); err != nil || got != nil {
		t.Fatalf("GetByID after delete: got=%v err=%v", got, err)
	}
}
