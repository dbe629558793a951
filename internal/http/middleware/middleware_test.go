package middleware

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/spacekeeper-backend/internal/observability"
	"github.com/yungbote/spacekeeper-backend/internal/platform/apierr"
	"github.com/yungbote/spacekeeper-backend/internal/platform/ctxutil"
	"github.com/yungbote/spacekeeper-backend/internal/platform/logger"
	"github.com/yungbote/spacekeeper-backend/internal/services"
)

type fakeAuth struct {
	services.AuthService
	tokens map[string]uuid.UUID
}

func (f *fakeAuth) SetContextFromToken(ctx context.Context, token string) (context.Context, error) {
	id, ok := f.tokens[token]
	if !ok {
		return ctx, apierr.Unauthorized("invalid_token", "unknown token")
	}
	return ctxutil.WithRequestData(ctx, &ctxutil.RequestData{TokenString: token, UserID: id}), nil
}

func newAuthRouter(t *testing.T, userID uuid.UUID) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	am := NewAuthMiddleware(logger.Nop(), &fakeAuth{tokens: map[string]uuid.UUID{"good": userID}})
	r := gin.New()
	whoami := func(c *gin.Context) { c.String(http.StatusOK, ctxutil.UserID(c.Request.Context()).String()) }
	r.GET("/api/me", am.RequireAuth(), whoami)
	r.GET("/api/sse/stream", am.RequireStreamAuth(), whoami)
	return r
}

func doGet(r http.Handler, path, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRequireAuth(t *testing.T) {
	userID := uuid.New()
	r := newAuthRouter(t, userID)

	if rec := doGet(r, "/api/me", "good"); rec.Code != http.StatusOK || rec.Body.String() != userID.String() {
		t.Fatalf("bearer: status=%d body=%q", rec.Code, rec.Body.String())
	}
	if rec := doGet(r, "/api/me", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing token: want=401 got=%d", rec.Code)
	}
	rec := doGet(r, "/api/me", "bad")
	if rec.Code != http.StatusUnauthorized || !strings.Contains(rec.Body.String(), `"code":"invalid_token"`) {
		t.Fatalf("bad token: status=%d body=%s", rec.Code, rec.Body.String())
	}
	// Query tokens are only honoured on the stream route.
	if rec := doGet(r, "/api/me?token=good", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("query token on api: want=401 got=%d", rec.Code)
	}
	if rec := doGet(r, "/api/sse/stream?token=good", ""); rec.Code != http.StatusOK {
		t.Fatalf("query token on stream: want=200 got=%d", rec.Code)
	}
}

func TestRequestIDs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestIDs(), AccessLog(logger.Nop()))
	r.GET("/x", func(c *gin.Context) {
		td := ctxutil.GetTraceData(c.Request.Context())
		c.String(http.StatusOK, td.RequestID)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-Id", "req-123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Body.String() != "req-123" || rec.Header().Get("X-Request-Id") != "req-123" {
		t.Fatalf("request id not propagated: body=%q", rec.Body.String())
	}
	if rec.Header().Get("X-Trace-Id") == "" {
		t.Fatalf("trace id header missing")
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	if _, err := uuid.Parse(rec.Header().Get("X-Request-Id")); err != nil {
		t.Fatalf("generated request id: %v", err)
	}
	if rec.Header().Get("X-Trace-Id") != rec.Header().Get("X-Request-Id") {
		t.Fatalf("trace id should fall back to the request id without a span")
	}
}

func TestLimitBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/upload", LimitBody(8), func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			var mbe *http.MaxBytesError
			if errors.As(err, &mbe) {
				c.Status(http.StatusRequestEntityTooLarge)
				return
			}
			c.Status(http.StatusBadRequest)
			return
		}
		c.Status(http.StatusOK)
	})

	for body, want := range map[string]int{"small": http.StatusOK, "much too large": http.StatusRequestEntityTooLarge} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/upload", bytes.NewBufferString(body)))
		if rec.Code != want {
			t.Fatalf("%q: want=%d got=%d", body, want, rec.Code)
		}
	}
}

func TestMetricsMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := observability.New()
	r := gin.New()
	r.Use(Metrics(m, "/api/sse/stream"))
	r.GET("/api/spaces/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/api/sse/stream", func(c *gin.Context) { time.Sleep(time.Millisecond); c.Status(http.StatusOK) })

	doGet(r, "/api/spaces/"+uuid.NewString(), "")
	doGet(r, "/api/sse/stream", "")

	var buf bytes.Buffer
	if err := m.WritePrometheus(&buf); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `sk_api_requests_total{method="GET",route="/api/spaces/:id",status="200"} 1`) {
		t.Fatalf("route template not recorded:\n%s", out)
	}
	if strings.Contains(out, `route="/api/sse/stream"`) {
		t.Fatalf("stream route should be skipped")
	}
	if !strings.Contains(out, "sk_api_inflight_requests 0") {
		t.Fatalf("inflight should return to zero")
	}
}
