package app

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"testing"
	"time"

	"Todo/internal/config"
	"Todo/internal/dto"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	_ "Todo/docs"
)

func newTestApp(t *testing.T) http.Handler {
	t.Helper()

	gin.SetMode(gin.TestMode)
	cfg := config.Config{
		App: config.AppConfig{Env: "dev", Version: "test"},
		Store: config.StoreConfig{
			Driver:         config.DriverSQLite,
			SQLitePath:     filepath.Join(t.TempDir(), "todo.db"),
			MigrateOnStart: true,
		},
	}

	a, err := New(cfg, log.New(io.Discard))
	if err != nil {
		t.Fatalf("app.New err=%v", err)
	}
	t.Cleanup(func() {
		if err := a.Close(); err != nil {
			t.Errorf("Close err=%v", err)
		}
	})
	return a.Router()
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body err=%v", err)
		}
	}
	return doRaw(t, h, method, path, buf.String())
}

func doRaw(t *testing.T, h http.Handler, method, path string, raw string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode err=%v body=%s", err, rr.Body.String())
	}
	return out
}

func createTodo(t *testing.T, h http.Handler, body map[string]any) dto.TodoResponse {
	t.Helper()

	rr := doJSON(t, h, http.MethodPost, "/api/v1/todos", body)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status=%d body=%s", rr.Code, rr.Body.String())
	}
	return decode[dto.TodoResponse](t, rr)
}

func todoPath(id int64) string {
	return "/api/v1/todos/" + strconv.FormatInt(id, 10)
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)

	rr := doRaw(t, app, http.MethodGet, "/api/v1/health", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d, want 200", rr.Code)
	}
	if got := strings.TrimSpace(rr.Body.String()); got != `{"status":"ok"}` {
		t.Fatalf("body=%s", got)
	}
}

func TestPOST_Todos_Created(t *testing.T) {
	app := newTestApp(t)

	out := createTodo(t, app, map[string]any{
		"title":       "Buy groceries",
		"description": "Milk",
	})
	if out.ID <= 0 {
		t.Fatalf("id=%d, want > 0", out.ID)
	}
	if out.Completed {
		t.Fatalf("completed=true, want default false")
	}
	if out.DeadlineAt != nil {
		t.Fatalf("deadline=%v, want null", out.DeadlineAt)
	}
}

func TestPOST_Todos_MissingFields_400(t *testing.T) {
	app := newTestApp(t)

	rr := doJSON(t, app, http.MethodPost, "/api/v1/todos", map[string]any{"completed": true})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status=%d, want 400 body=%s", rr.Code, rr.Body.String())
	}
	got := decode[map[string][]string](t, rr)
	want := map[string][]string{
		"title":       {dto.MsgRequired},
		"description": {dto.MsgRequired},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("errors=%v, want %v", got, want)
	}

	list := decode[[]dto.TodoResponse](t, doRaw(t, app, http.MethodGet, "/api/v1/todos", ""))
	if len(list) != 0 {
		t.Fatalf("list=%v, want nothing persisted", list)
	}
}

func TestPOST_Todos_InvalidJSON_400(t *testing.T) {
	app := newTestApp(t)

	rr := doRaw(t, app, http.MethodPost, "/api/v1/todos", "{bad json}")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status=%d, want 400", rr.Code)
	}
	got := decode[map[string][]string](t, rr)
	if !reflect.DeepEqual(got, map[string][]string{dto.SchemaField: {dto.MsgInvalidInput}}) {
		t.Fatalf("errors=%v", got)
	}
}

func TestGET_TodoByID_RoundTrip(t *testing.T) {
	app := newTestApp(t)

	created := createTodo(t, app, map[string]any{
		"title":       "Dentist",
		"description": "Checkup",
		"completed":   false,
		"deadline_at": "2026-11-03T09:30:00",
	})

	rr := doRaw(t, app, http.MethodGet, todoPath(created.ID), "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	got := decode[dto.TodoResponse](t, rr)
	if !reflect.DeepEqual(got, created) {
		t.Fatalf("got %+v, want %+v", got, created)
	}
	want := time.Date(2026, 11, 3, 9, 30, 0, 0, time.UTC)
	if got.DeadlineAt == nil || !got.DeadlineAt.Equal(want) {
		t.Fatalf("deadline=%v, want %v", got.DeadlineAt, want)
	}
}

func TestGET_TodoByID_NotFound_404(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{"/api/v1/todos/999999", "/api/v1/todos/abc", "/api/v1/todos/-1"} {
		rr := doRaw(t, app, http.MethodGet, path, "")
		if rr.Code != http.StatusNotFound {
			t.Fatalf("%s: status=%d, want 404", path, rr.Code)
		}
		if got := strings.TrimSpace(rr.Body.String()); got != `{"error":"Todo not found"}` {
			t.Fatalf("%s: body=%s", path, got)
		}
	}
}

func TestPUT_Todo_OnlyCompletedChanges(t *testing.T) {
	app := newTestApp(t)

	created := createTodo(t, app, map[string]any{
		"title":       "Taxes",
		"description": "File before deadline",
		"deadline_at": "2027-04-15",
	})

	rr := doJSON(t, app, http.MethodPut, todoPath(created.ID), map[string]any{"completed": true})
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	got := decode[dto.TodoResponse](t, rr)

	want := created
	want.Completed = true
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestPUT_Todo_DeadlineParsedAndCleared(t *testing.T) {
	app := newTestApp(t)

	created := createTodo(t, app, map[string]any{"title": "T", "description": "D"})

	rr := doJSON(t, app, http.MethodPut, todoPath(created.ID), map[string]any{"deadline_at": "2026-12-24T18:00:00+01:00"})
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	got := decode[dto.TodoResponse](t, rr)
	want := time.Date(2026, 12, 24, 17, 0, 0, 0, time.UTC)
	if got.DeadlineAt == nil || !got.DeadlineAt.Equal(want) {
		t.Fatalf("deadline=%v, want %v", got.DeadlineAt, want)
	}

	rr = doRaw(t, app, http.MethodPut, todoPath(created.ID), `{"deadline_at": null}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	if got := decode[dto.TodoResponse](t, rr); got.DeadlineAt != nil {
		t.Fatalf("deadline=%v, want cleared", got.DeadlineAt)
	}

	rr = doJSON(t, app, http.MethodPut, todoPath(created.ID), map[string]any{"deadline_at": "soon"})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status=%d, want 400", rr.Code)
	}
}

func TestPUT_Todo_ValidationBeforeNotFound(t *testing.T) {
	app := newTestApp(t)

	rr := doJSON(t, app, http.MethodPut, todoPath(12345), map[string]any{"completed": "nope"})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status=%d, want 400 body=%s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, app, http.MethodPut, todoPath(12345), map[string]any{"completed": true})
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status=%d, want 404 body=%s", rr.Code, rr.Body.String())
	}
}

func TestPUT_Todo_UnknownField_400(t *testing.T) {
	app := newTestApp(t)
	created := createTodo(t, app, map[string]any{"title": "T", "description": "D"})

	rr := doJSON(t, app, http.MethodPut, todoPath(created.ID), map[string]any{"priority": "high"})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status=%d, want 400", rr.Code)
	}
	got := decode[map[string][]string](t, rr)
	if !reflect.DeepEqual(got, map[string][]string{"priority": {dto.MsgUnknown}}) {
		t.Fatalf("errors=%v", got)
	}
}

func TestDELETE_Todo(t *testing.T) {
	app := newTestApp(t)
	created := createTodo(t, app, map[string]any{"title": "T", "description": "D"})

	rr := doRaw(t, app, http.MethodDelete, todoPath(created.ID), "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	if got := decode[dto.TodoResponse](t, rr); !reflect.DeepEqual(got, created) {
		t.Fatalf("got %+v, want %+v", got, created)
	}

	rr = doRaw(t, app, http.MethodGet, todoPath(created.ID), "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("after delete status=%d, want 404", rr.Code)
	}
}

func TestDELETE_Todo_Missing_EmptyObject(t *testing.T) {
	app := newTestApp(t)

	rr := doRaw(t, app, http.MethodDelete, todoPath(4242), "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d, want 200", rr.Code)
	}
	if got := strings.TrimSpace(rr.Body.String()); got != `{}` {
		t.Fatalf("body=%s, want {}", got)
	}
}

func TestGET_Todos_Filters(t *testing.T) {
	app := newTestApp(t)
	now := time.Now().UTC()

	soon := createTodo(t, app, map[string]any{
		"title": "soon", "description": "-", "completed": true,
		"deadline_at": now.Add(2 * 24 * time.Hour).Format(time.RFC3339),
	})
	overdue := createTodo(t, app, map[string]any{
		"title": "overdue", "description": "-",
		"deadline_at": now.Add(-3 * 24 * time.Hour).Format(time.RFC3339),
	})
	far := createTodo(t, app, map[string]any{
		"title": "far", "description": "-", "completed": true,
		"deadline_at": now.Add(30 * 24 * time.Hour).Format(time.RFC3339),
	})
	none := createTodo(t, app, map[string]any{"title": "none", "description": "-"})

	ids := func(path string) []int64 {
		rr := doRaw(t, app, http.MethodGet, path, "")
		if rr.Code != http.StatusOK {
			t.Fatalf("%s: status=%d", path, rr.Code)
		}
		out := []int64{}
		for _, td := range decode[[]dto.TodoResponse](t, rr) {
			out = append(out, td.ID)
		}
		return out
	}

	cases := []struct {
		path string
		want []int64
	}{
		{"/api/v1/todos", []int64{soon.ID, overdue.ID, far.ID, none.ID}},
		{"/api/v1/todos?completed=true", []int64{soon.ID, far.ID}},
		{"/api/v1/todos?completed=false", []int64{soon.ID, overdue.ID, far.ID, none.ID}},
		{"/api/v1/todos?window=7", []int64{soon.ID, overdue.ID}},
		{"/api/v1/todos?window=7&completed=true", []int64{soon.ID}},
		{"/api/v1/todos?window=-2", []int64{soon.ID, overdue.ID, far.ID, none.ID}},
		{"/api/v1/todos?completed=maybe", []int64{soon.ID, overdue.ID, far.ID, none.ID}},
	}
	for _, tc := range cases {
		if got := ids(tc.path); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("%s: ids=%v, want %v", tc.path, got, tc.want)
		}
	}
}

func TestGET_Todos_WindowExcludesDistantDeadlines(t *testing.T) {
	app := newTestApp(t)

	ancient := createTodo(t, app, map[string]any{"title": "ancient", "description": "-", "deadline_at": "1700-01-01"})
	distant := createTodo(t, app, map[string]any{"title": "distant", "description": "-", "deadline_at": "9999-12-31T23:59:59Z"})
	if ancient.DeadlineAt == nil || ancient.DeadlineAt.Year() != 1700 {
		t.Fatalf("ancient deadline=%v", ancient.DeadlineAt)
	}

	for _, path := range []string{"/api/v1/todos?window=7", "/api/v1/todos?window=200000"} {
		rr := doRaw(t, app, http.MethodGet, path, "")
		if rr.Code != http.StatusOK {
			t.Fatalf("%s: status=%d", path, rr.Code)
		}
		if got := decode[[]dto.TodoResponse](t, rr); len(got) != 0 {
			t.Errorf("%s: got %+v, want none", path, got)
		}
	}

	rr := doRaw(t, app, http.MethodGet, "/api/v1/todos", "")
	if got := decode[[]dto.TodoResponse](t, rr); len(got) != 2 || got[1].ID != distant.ID {
		t.Fatalf("unfiltered: got %+v", got)
	}
}

func TestGET_Todos_EmptyIsArray(t *testing.T) {
	app := newTestApp(t)

	rr := doRaw(t, app, http.MethodGet, "/api/v1/todos", "")
	if got := strings.TrimSpace(rr.Body.String()); got != "[]" {
		t.Fatalf("body=%s, want []", got)
	}
}

func TestServiceRoutes(t *testing.T) {
	app := newTestApp(t)

	rr := doRaw(t, app, http.MethodGet, "/version", "")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"test"`) {
		t.Fatalf("version: status=%d body=%s", rr.Code, rr.Body.String())
	}

	rr = doRaw(t, app, http.MethodGet, "/swagger-doc.json", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("swagger doc status=%d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"/todos/{id}"`) {
		t.Fatalf("swagger doc missing todo routes")
	}

	rr = doRaw(t, app, http.MethodGet, "/api/v1/health", "")
	if rr.Header().Get("X-Request-ID") == "" {
		t.Fatalf("missing X-Request-ID header")
	}
}
