package http

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/spacekeeper-backend/internal/data/repos"
	"github.com/yungbote/spacekeeper-backend/internal/data/repos/testutil"
	httpH "github.com/yungbote/spacekeeper-backend/internal/http/handlers"
	httpMW "github.com/yungbote/spacekeeper-backend/internal/http/middleware"
	"github.com/yungbote/spacekeeper-backend/internal/platform/gcp"
	"github.com/yungbote/spacekeeper-backend/internal/realtime"
	"github.com/yungbote/spacekeeper-backend/internal/services"
)

type apiHarness struct {
	t        *testing.T
	router   *gin.Engine
	mediaDir string
}

func newHarness(t *testing.T) *apiHarness {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := testutil.Logger(t)
	db := testutil.DB(t)
	r := repos.New(db, log)

	mediaDir := t.TempDir()
	bucket, err := gcp.NewBucketService(log, gcp.BucketConfig{
		Storage: gcp.ObjectStorageConfig{Mode: gcp.ObjectStorageModeLocal, LocalDir: mediaDir},
	})
	if err != nil {
		t.Fatalf("bucket: %v", err)
	}
	images, err := services.NewImageService(log, bucket)
	if err != nil {
		t.Fatalf("images: %v", err)
	}
	hub := realtime.NewSSEHub(log)
	notify := services.NewInventoryNotifier(&services.HubEmitter{Hub: hub})

	auth := services.NewAuthService(db, log, r.User, r.UserToken, images, "router-secret", 15*time.Minute, 24*time.Hour)
	spaces := services.NewSpaceService(db, log, r.Space, r.Grid, r.Item, images, notify)
	grids := services.NewGridService(db, log, r.Space, r.Grid, r.Item, notify)
	items := services.NewItemService(db, log, r.Space, r.Grid, r.Item, images, notify)
	search := services.NewSearchService(log, r.Space, r.Item)
	reminders := services.NewReminderService(db, log, r.Item, notify)
	users := services.NewUserService(db, log, r.User, images)

	router := NewRouter(RouterConfig{
		Log:             log,
		MediaRoot:       mediaDir,
		AuthMiddleware:  httpMW.NewAuthMiddleware(log, auth),
		AuthHandler:     httpH.NewAuthHandler(auth),
		UserHandler:     httpH.NewUserHandler(users),
		SpaceHandler:    httpH.NewSpaceHandler(spaces, bucket),
		GridHandler:     httpH.NewGridHandler(grids),
		ItemHandler:     httpH.NewItemHandler(items, bucket),
		SearchHandler:   httpH.NewSearchHandler(search, bucket),
		ReminderHandler: httpH.NewReminderHandler(reminders, bucket),
		RealtimeHandler: httpH.NewRealtimeHandler(log, hub),
		HealthHandler:   httpH.NewHealthHandler(db),
	})
	return &apiHarness{t: t, router: router, mediaDir: mediaDir}
}

func (h *apiHarness) do(method, path, token string, body any) (int, map[string]any) {
	h.t.Helper()
	var rdr *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			h.t.Fatalf("marshal: %v", err)
		}
		rdr = bytes.NewReader(raw)
	} else {
		rdr = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return h.send(req, token)
}

func (h *apiHarness) send(req *http.Request, token string) (int, map[string]any) {
	h.t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	out := map[string]any{}
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			h.t.Fatalf("decode %s %s: %v", req.Method, req.URL.Path, err)
		}
	}
	return rec.Code, out
}

func (h *apiHarness) login(email string) string {
	h.t.Helper()
	status, _ := h.do(http.MethodPost, "/api/register", "", map[string]any{
		"email": email, "password": "correct horse", "first_name": "Ada", "last_name": "Lovelace",
	})
	if status != http.StatusCreated {
		h.t.Fatalf("register: want=201 got=%d", status)
	}
	status, body := h.do(http.MethodPost, "/api/login", "", map[string]any{"email": email, "password": "correct horse"})
	if status != http.StatusOK {
		h.t.Fatalf("login: want=200 got=%d", status)
	}
	return body["access_token"].(string)
}

func obj(t *testing.T, body map[string]any, key string) map[string]any {
	t.Helper()
	v, ok := body[key].(map[string]any)
	if !ok {
		t.Fatalf("missing %q in %v", key, body)
	}
	return v
}

func list(t *testing.T, body map[string]any, key string) []any {
	t.Helper()
	v, ok := body[key].([]any)
	if !ok {
		t.Fatalf("missing %q in %v", key, body)
	}
	return v
}

func errCode(body map[string]any) string {
	e, _ := body["error"].(map[string]any)
	code, _ := e["code"].(string)
	return code
}

func pngUpload(t *testing.T, path string) *http.Request {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 40, 30))
	for x := 0; x < 40; x++ {
		for y := 0; y < 30; y++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 6), G: uint8(y * 8), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(httpH.ImageField, "photo.png")
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	if err := png.Encode(fw, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestHealthcheck(t *testing.T) {
	h := newHarness(t)
	for _, path := range []string{"/healthcheck", "/readyz"} {
		rec := httptest.NewRecorder()
		h.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
			t.Fatalf("%s: status=%d body=%q", path, rec.Code, rec.Body.String())
		}
	}
}

func TestAuthFlow(t *testing.T) {
	h := newHarness(t)

	status, body := h.do(http.MethodPost, "/api/register", "", map[string]any{"email": "nope", "password": "correct horse"})
	if status != http.StatusBadRequest || errCode(body) == "" {
		t.Fatalf("bad register: status=%d body=%v", status, body)
	}

	token := h.login("ada@example.com")
	status, body = h.do(http.MethodGet, "/api/me", token, nil)
	if status != http.StatusOK || obj(t, body, "me")["email"] != "ada@example.com" {
		t.Fatalf("me: status=%d body=%v", status, body)
	}
	if _, leaked := obj(t, body, "me")["password"]; leaked {
		t.Fatalf("password hash must not be serialised")
	}

	status, body = h.do(http.MethodPatch, "/api/me", token, map[string]any{"first_name": "Augusta"})
	if status != http.StatusOK || obj(t, body, "me")["first_name"] != "Augusta" {
		t.Fatalf("patch me: status=%d body=%v", status, body)
	}

	status, body = h.do(http.MethodPost, "/api/login", "", map[string]any{"email": "ada@example.com", "password": "correct horse"})
	if status != http.StatusOK {
		t.Fatalf("second login: %d", status)
	}
	refresh := body["refresh_token"].(string)
	status, body = h.do(http.MethodPost, "/api/refresh", "", map[string]any{"refresh_token": refresh})
	if status != http.StatusOK || body["access_token"] == "" {
		t.Fatalf("refresh: status=%d body=%v", status, body)
	}
	status, _ = h.do(http.MethodPost, "/api/refresh", "", map[string]any{"refresh_token": refresh})
	if status != http.StatusUnauthorized {
		t.Fatalf("reused refresh: want=401 got=%d", status)
	}

	status, _ = h.do(http.MethodPost, "/api/logout", token, nil)
	if status != http.StatusOK {
		t.Fatalf("logout: %d", status)
	}
	status, body = h.do(http.MethodGet, "/api/me", token, nil)
	if status != http.StatusUnauthorized || errCode(body) == "" {
		t.Fatalf("me after logout: status=%d body=%v", status, body)
	}
}

func TestInventoryFlow(t *testing.T) {
	h := newHarness(t)
	token := h.login("ada@example.com")

	status, body := h.do(http.MethodPost, "/api/spaces", token, map[string]any{"name": "Garage", "rows": 2, "cols": 3})
	if status != http.StatusCreated {
		t.Fatalf("create space: status=%d body=%v", status, body)
	}
	space := obj(t, body, "space")
	spaceID := space["id"].(string)
	if space["rows"].(float64) != 2 || space["thumbnail_url"] == "" {
		t.Fatalf("unexpected space: %v", space)
	}

	status, body = h.do(http.MethodPost, "/api/spaces/"+spaceID+"/grids", token, map[string]any{"name": "Shelf", "row": 0, "col": 0, "col_span": 2})
	if status != http.StatusCreated {
		t.Fatalf("create grid: status=%d body=%v", status, body)
	}
	gridID := obj(t, body, "grid")["id"].(string)

	status, body = h.do(http.MethodPost, "/api/spaces/"+spaceID+"/grids", token, map[string]any{"row": 0, "col": 1})
	if status != http.StatusConflict || errCode(body) != "grid_overlap" {
		t.Fatalf("overlap: status=%d body=%v", status, body)
	}
	status, body = h.do(http.MethodPost, "/api/spaces/"+spaceID+"/grids", token, map[string]any{"row": 2, "col": 0})
	if status != http.StatusBadRequest || errCode(body) != "out_of_bounds" {
		t.Fatalf("bounds: status=%d body=%v", status, body)
	}

	status, body = h.do(http.MethodPost, "/api/items", token, map[string]any{
		"space_id": spaceID, "grid_id": gridID, "name": "Drill", "category": "Tools", "tags": []string{"Power", "power", " cordless "},
	})
	if status != http.StatusCreated {
		t.Fatalf("create item: status=%d body=%v", status, body)
	}
	item := obj(t, body, "item")
	itemID := item["id"].(string)
	if tags := item["tags"].([]any); len(tags) != 2 {
		t.Fatalf("tags not normalised: %v", tags)
	}

	status, body = h.do(http.MethodPost, "/api/items", token, map[string]any{"name": "Orphan"})
	if status != http.StatusBadRequest || errCode(body) != "invalid_space_id" {
		t.Fatalf("item without space: status=%d body=%v", status, body)
	}

	status, body = h.do(http.MethodGet, "/api/items?space_id="+spaceID, token, nil)
	if status != http.StatusOK || len(list(t, body, "items")) != 1 {
		t.Fatalf("list items: status=%d body=%v", status, body)
	}
	status, body = h.do(http.MethodGet, "/api/items?grid_id=not-a-uuid", token, nil)
	if status != http.StatusBadRequest {
		t.Fatalf("bad grid filter: want=400 got=%d", status)
	}

	status, body = h.do(http.MethodGet, "/api/search?q=dri", token, nil)
	if status != http.StatusOK || len(list(t, body, "items")) != 1 {
		t.Fatalf("search: status=%d body=%v", status, body)
	}
	status, body = h.do(http.MethodGet, "/api/search", token, nil)
	if status != http.StatusBadRequest {
		t.Fatalf("empty search: want=400 got=%d", status)
	}

	reminderAt := time.Now().UTC().Add(2 * time.Hour).Format(time.RFC3339)
	status, body = h.do(http.MethodPut, "/api/items/"+itemID, token, map[string]any{
		"quantity": 3, "reminder_at": reminderAt, "reminder_note": "return to Bob", "clear_grid": true,
	})
	if status != http.StatusOK {
		t.Fatalf("update item: status=%d body=%v", status, body)
	}
	item = obj(t, body, "item")
	if item["quantity"].(float64) != 3 || item["grid_id"] != nil {
		t.Fatalf("update not applied: %v", item)
	}

	status, body = h.do(http.MethodGet, "/api/reminders?within=24h", token, nil)
	if status != http.StatusOK || len(list(t, body, "items")) != 1 {
		t.Fatalf("reminders: status=%d body=%v", status, body)
	}
	status, _ = h.do(http.MethodGet, "/api/reminders?within=soon", token, nil)
	if status != http.StatusBadRequest {
		t.Fatalf("bad window: want=400 got=%d", status)
	}

	status, body = h.send(pngUpload(t, "/api/items/"+itemID+"/image"), token)
	if status != http.StatusOK {
		t.Fatalf("upload: status=%d body=%v", status, body)
	}
	thumb := obj(t, body, "item")["thumbnail_url"].(string)
	if !strings.Contains(thumb, "/media/item/") {
		t.Fatalf("thumbnail url: %q", thumb)
	}
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, thumb[strings.Index(thumb, "/media/"):], nil))
	if rec.Code != http.StatusOK || rec.Body.Len() == 0 {
		t.Fatalf("media route: status=%d", rec.Code)
	}

	status, body = h.do(http.MethodPost, "/api/items/"+itemID+"/image", token, map[string]any{})
	if status != http.StatusBadRequest || errCode(body) != "missing_image" {
		t.Fatalf("upload without file: status=%d body=%v", status, body)
	}

	status, _ = h.do(http.MethodDelete, "/api/grids/"+gridID, token, nil)
	if status != http.StatusOK {
		t.Fatalf("delete grid: %d", status)
	}
	status, _ = h.do(http.MethodDelete, "/api/spaces/"+spaceID, token, nil)
	if status != http.StatusOK {
		t.Fatalf("delete space: %d", status)
	}
	status, body = h.do(http.MethodGet, "/api/items/"+itemID, token, nil)
	if status != http.StatusNotFound {
		t.Fatalf("item after space delete: status=%d body=%v", status, body)
	}
	files := 0
	_ = filepath.WalkDir(filepath.Join(h.mediaDir, "item"), func(_ string, d os.DirEntry, err error) error {
		if err == nil && !d.IsDir() {
			files++
		}
		return nil
	})
	if files != 0 {
		t.Fatalf("item images should be removed with the space: %d left", files)
	}
}

func TestOwnershipIsolation(t *testing.T) {
	h := newHarness(t)
	ada := h.login("ada@example.com")
	bob := h.login("bob@example.com")

	_, body := h.do(http.MethodPost, "/api/spaces", ada, map[string]any{"name": "Attic"})
	spaceID := obj(t, body, "space")["id"].(string)

	status, body := h.do(http.MethodGet, "/api/spaces/"+spaceID, bob, nil)
	if status != http.StatusNotFound {
		t.Fatalf("foreign space: status=%d body=%v", status, body)
	}
	status, _ = h.do(http.MethodDelete, "/api/spaces/"+spaceID, bob, nil)
	if status != http.StatusNotFound {
		t.Fatalf("foreign delete: want=404 got=%d", status)
	}
	status, body = h.do(http.MethodGet, "/api/spaces", bob, nil)
	if status != http.StatusOK || len(list(t, body, "spaces")) != 0 {
		t.Fatalf("bob sees ada's spaces: %v", body)
	}
	status, _ = h.do(http.MethodGet, "/api/spaces/not-a-uuid", ada, nil)
	if status != http.StatusBadRequest {
		t.Fatalf("bad id: want=400 got=%d", status)
	}
	status, _ = h.do(http.MethodGet, "/api/spaces", "", nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("anonymous: want=401 got=%d", status)
	}
}
