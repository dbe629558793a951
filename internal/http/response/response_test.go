package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/spacekeeper-backend/internal/platform/apierr"
)

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) ErrorEnvelope {
	t.Helper()
	var env ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return env
}

func TestRespondFailureMapsAPIError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	RespondFailure(c, apierr.Conflict("grid_overlap", "cell taken"), "create_grid_failed")

	if rec.Code != http.StatusConflict {
		t.Fatalf("status: want=%d got=%d", http.StatusConflict, rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.Error.Code != "grid_overlap" || env.Error.Message == "" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
}

func TestRespondFailureHidesInternalErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	RespondFailure(c, errors.New("pq: connection refused"), "list_spaces_failed")

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status: want=500 got=%d", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.Error.Code != "list_spaces_failed" || env.Error.Message != "Internal Server Error" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
	if len(c.Errors) != 1 {
		t.Fatalf("cause should be attached to the context")
	}
}
