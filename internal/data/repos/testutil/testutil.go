package testutil

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	dbpkg "github.com/yungbote/spacekeeper-backend/internal/data/db"
	types "github.com/yungbote/spacekeeper-backend/internal/domain"
	"github.com/yungbote/spacekeeper-backend/internal/pkg/dbctx"
	"github.com/yungbote/spacekeeper-backend/internal/platform/logger"
)

var (
	logOnce sync.Once
	logg    *logger.Logger
	logErr  error
)

func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	logOnce.Do(func() {
		logg, logErr = logger.New("test")
	})
	if logErr != nil {
		tb.Fatalf("failed to init logger: %v", logErr)
	}
	return logg
}

// DB opens a private in-memory sqlite database with every model migrated.
// It is closed when the test ends.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		tb.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })

	if err := dbpkg.AutoMigrateAll(db); err != nil {
		tb.Fatalf("migrate: %v", err)
	}
	if err := dbpkg.EnsureIndexes(db); err != nil {
		tb.Fatalf("indexes: %v", err)
	}
	return db
}

func Ctx() dbctx.Context {
	return dbctx.New(context.Background())
}

func SeedUser(tb testing.TB, db *gorm.DB, email string) *types.User {
	tb.Helper()
	u := &types.User{
		Email:     email,
		Password:  "pw",
		FirstName: "A",
		LastName:  "B",
	}
	if err := db.Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedSpace(tb testing.TB, db *gorm.DB, userID uuid.UUID, name string, rows, cols int) *types.Space {
	tb.Helper()
	s := &types.Space{
		UserID: userID,
		Name:   name,
		Rows:   rows,
		Cols:   cols,
	}
	if err := db.Create(s).Error; err != nil {
		tb.Fatalf("seed space: %v", err)
	}
	return s
}

func SeedGrid(tb testing.TB, db *gorm.DB, space *types.Space, name string, row, col, rowSpan, colSpan int) *types.Grid {
	tb.Helper()
	g := &types.Grid{
		UserID:  space.UserID,
		SpaceID: space.ID,
		Name:    name,
		Row:     row,
		Col:     col,
		RowSpan: rowSpan,
		ColSpan: colSpan,
	}
	if err := db.Create(g).Error; err != nil {
		tb.Fatalf("seed grid: %v", err)
	}
	return g
}

func SeedItem(tb testing.TB, db *gorm.DB, space *types.Space, gridID *uuid.UUID, name string, tags ...string) *types.Item {
	tb.Helper()
	it := &types.Item{
		UserID:   space.UserID,
		SpaceID:  space.ID,
		GridID:   gridID,
		Name:     name,
		Quantity: 1,
	}
	it.SetTags(tags)
	if err := db.Create(it).Error; err != nil {
		tb.Fatalf("seed item: %v", err)
	}
	return it
}

func PtrUUID(v uuid.UUID) *uuid.UUID { return &v }

func PtrTime(v time.Time) *time.Time { return &v }
