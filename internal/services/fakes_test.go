package services

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/spacekeeper-backend/internal/data/repos"
	"github.com/yungbote/spacekeeper-backend/internal/data/repos/testutil"
	types "github.com/yungbote/spacekeeper-backend/internal/domain"
	"github.com/yungbote/spacekeeper-backend/internal/pkg/dbctx"
	"github.com/yungbote/spacekeeper-backend/internal/platform/apierr"
	"github.com/yungbote/spacekeeper-backend/internal/platform/ctxutil"
	"github.com/yungbote/spacekeeper-backend/internal/platform/gcp"
	"github.com/yungbote/spacekeeper-backend/internal/realtime"
)

type memBucket struct {
	mu         sync.Mutex
	objects    map[string][]byte
	deleted    []string
	failUpload bool
}

func newMemBucket() *memBucket {
	return &memBucket{objects: map[string][]byte{}}
}

func (b *memBucket) UploadFile(dbc dbctx.Context, category gcp.BucketCategory, key string, file io.Reader) error {
	if b.failUpload {
		return errors.New("upload refused")
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[string(category)+"/"+key] = data
	return nil
}

func (b *memBucket) DeleteFile(dbc dbctx.Context, category gcp.BucketCategory, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.objects, string(category)+"/"+key)
	b.deleted = append(b.deleted, string(category)+"/"+key)
	return nil
}

func (b *memBucket) GetPublicURL(category gcp.BucketCategory, key string) string {
	return "https://cdn.test/" + string(category) + "/" + key
}

func (b *memBucket) has(category gcp.BucketCategory, key string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.objects[string(category)+"/"+key]
	return ok
}

func (b *memBucket) get(category gcp.BucketCategory, key string) []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.objects[string(category)+"/"+key]
}

type recordingEmitter struct {
	mu   sync.Mutex
	msgs []realtime.SSEMessage
}

func (e *recordingEmitter) Emit(ctx context.Context, msg realtime.SSEMessage) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.msgs = append(e.msgs, msg)
}

func (e *recordingEmitter) events() []realtime.SSEEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]realtime.SSEEvent, 0, len(e.msgs))
	for _, m := range e.msgs {
		out = append(out, m.Event)
	}
	return out
}

func (e *recordingEmitter) last() realtime.SSEMessage {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.msgs) == 0 {
		return realtime.SSEMessage{}
	}
	return e.msgs[len(e.msgs)-1]
}

type testEnv struct {
	db        *gorm.DB
	repos     repos.Repos
	bucket    *memBucket
	emitter   *recordingEmitter
	images    ImageService
	spaces    SpaceService
	grids     GridService
	items     ItemService
	search    SearchService
	reminders ReminderService
	users     UserService
	user      *types.User
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	r := repos.New(db, log)
	bucket := newMemBucket()
	images, err := NewImageService(log, bucket)
	if err != nil {
		t.Fatalf("NewImageService: %v", err)
	}
	emitter := &recordingEmitter{}
	notify := NewInventoryNotifier(emitter)
	return &testEnv{
		db:        db,
		repos:     r,
		bucket:    bucket,
		emitter:   emitter,
		images:    images,
		spaces:    NewSpaceService(db, log, r.Space, r.Grid, r.Item, images, notify),
		grids:     NewGridService(db, log, r.Space, r.Grid, r.Item, notify),
		items:     NewItemService(db, log, r.Space, r.Grid, r.Item, images, notify),
		search:    NewSearchService(log, r.Space, r.Item),
		reminders: NewReminderService(db, log, r.Item, notify),
		users:     NewUserService(db, log, r.User, images),
		user:      testutil.SeedUser(t, db, "owner@example.com"),
	}
}

func (e *testEnv) ctx() context.Context {
	return asUser(e.user.ID)
}

func asUser(userID uuid.UUID) context.Context {
	return ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{UserID: userID})
}

func wantStatus(t *testing.T, err error, status int) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with status %d, got nil", status)
	}
	got, code := apierr.Resolve(err, "internal")
	if got != status {
		t.Fatalf("status: want=%d got=%d (code=%s err=%v)", status, got, code, err)
	}
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 0x80, A: 0xFF})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func ptr[T any](v T) *T { return &v }
