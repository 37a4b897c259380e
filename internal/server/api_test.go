// ABOUTME: Tests for the board, layout, stream, locale and notebook API handlers
// ABOUTME: Drives the full handler over httptest with the local admin identity

package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/homarr-board/internal/board"
	"github.com/2389/homarr-board/internal/boardio"
	"github.com/2389/homarr-board/internal/broadcast"
	"github.com/2389/homarr-board/internal/layout"
	"github.com/2389/homarr-board/internal/locale"
	"github.com/2389/homarr-board/internal/notebook"
	"github.com/2389/homarr-board/internal/store"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func doRequest(t *testing.T, method, url, token, contentType string, body io.Reader) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func doJSON(t *testing.T, method, url, token string, v any) *http.Response {
	t.Helper()
	var body io.Reader
	if v != nil {
		data, err := json.Marshal(v)
		require.NoError(t, err)
		body = bytes.NewReader(data)
	}
	return doRequest(t, method, url, token, "application/json", body)
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func getJSON(t *testing.T, url, token string, v any) {
	t.Helper()
	resp := doRequest(t, http.MethodGet, url, token, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, v)
}

func errorOf(t *testing.T, resp *http.Response) string {
	t.Helper()
	var body map[string]string
	decodeBody(t, resp, &body)
	return body["error"]
}

func categoryArea(id string) board.Area {
	return board.Area{Type: board.AreaCategory, Properties: board.AreaProperties{ID: id}}
}

func sidebarArea(loc board.SidebarLocation) board.Area {
	return board.Area{Type: board.AreaSidebar, Properties: board.AreaProperties{Location: loc}}
}

func addApp(t *testing.T, base string, app board.App) board.App {
	t.Helper()
	resp := doJSON(t, http.MethodPost, base+"/api/boards/default/apps", "", app)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created board.App
	decodeBody(t, resp, &created)
	return created
}

func readySession(t *testing.T, base string) layout.SessionState {
	t.Helper()
	resp := doJSON(t, http.MethodPut, base+"/api/boards/default/session", "", map[string]any{
		"edit_mode":       true,
		"main_area_width": 1200,
		"column_count":    12,
		"size_class":      "md",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var state layout.SessionState
	decodeBody(t, resp, &state)
	return state
}

func seededServer(t *testing.T) (*Server, string) {
	t.Helper()
	srv, ts := newTestServer(t, testConfig(t))
	require.NoError(t, srv.Seed(context.Background()))
	return srv, ts.URL
}

func TestBoards_CRUD(t *testing.T) {
	_, base := seededServer(t)

	resp := doJSON(t, http.MethodPost, base+"/api/boards", "", CreateBoardRequest{Name: "media", Locale: "de"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created board.Config
	decodeBody(t, resp, &created)
	assert.Equal(t, "media", created.Name)
	assert.Equal(t, uint64(1), created.Version)
	assert.Equal(t, "de", created.Settings.Locale)

	resp = doJSON(t, http.MethodPost, base+"/api/boards", "", CreateBoardRequest{Name: "media"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, errorOf(t, resp), "exists")

	resp = doJSON(t, http.MethodPost, base+"/api/boards", "", CreateBoardRequest{})
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var list ListBoardsResponse
	getJSON(t, base+"/api/boards", "", &list)
	require.Len(t, list.Boards, 2)

	resp = doRequest(t, http.MethodDelete, base+"/api/boards/media", "", "", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doRequest(t, http.MethodGet, base+"/api/boards/media", "", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "not found", errorOf(t, resp))
}

func TestBoards_AddItems(t *testing.T) {
	_, base := seededServer(t)

	app := addApp(t, base, board.App{Name: "Plex", Area: categoryArea("A")})
	assert.NotEmpty(t, app.ID, "ids are generated")

	resp := doJSON(t, http.MethodPost, base+"/api/boards/default/apps", "", board.App{ID: app.ID, Name: "Again", Area: categoryArea("A")})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, errorOf(t, resp), "duplicate id")

	resp = doJSON(t, http.MethodPost, base+"/api/boards/default/widgets", "", board.Widget{Type: "clock", Area: sidebarArea(board.SidebarRight)})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var widget board.Widget
	decodeBody(t, resp, &widget)
	assert.NotEmpty(t, widget.ID)

	var cfg board.Config
	getJSON(t, base+"/api/boards/default", "", &cfg)
	assert.Equal(t, uint64(3), cfg.Version)
	assert.Len(t, cfg.Apps, 1)
	assert.Len(t, cfg.Widgets, 1)
}

func TestBoards_ExportImport(t *testing.T) {
	_, base := seededServer(t)
	addApp(t, base, board.App{ID: "plex", Name: "Plex", Area: categoryArea("A")})

	resp := doRequest(t, http.MethodGet, base+"/api/boards/default/export?format=yaml", "", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, boardio.FormatYAML.ContentType(), resp.Header.Get("Content-Type"))
	exported, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(exported), "plex")

	resp = doRequest(t, http.MethodGet, base+"/api/boards/default/export?format=xml", "", "", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	doc := `
[[apps]]
id = "sonarr"
name = "Sonarr"
[apps.area]
type = "sidebar"
[apps.area.properties]
location = "left"
`
	resp = doRequest(t, http.MethodPut, base+"/api/boards/default/import?format=toml", "", "application/toml", strings.NewReader(doc))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var imported ImportResponse
	decodeBody(t, resp, &imported)
	assert.True(t, imported.Applied)
	assert.Equal(t, uint64(3), imported.Version)

	resp = doRequest(t, http.MethodPut, base+"/api/boards/default/import?format=toml", "", "application/toml", strings.NewReader(doc))
	decodeBody(t, resp, &imported)
	assert.False(t, imported.Applied, "identical content is a no-op")
	assert.Equal(t, uint64(3), imported.Version)

	var cfg board.Config
	getJSON(t, base+"/api/boards/default", "", &cfg)
	require.Len(t, cfg.Apps, 1)
	assert.Equal(t, "sonarr", cfg.Apps[0].ID)

	resp = doRequest(t, http.MethodPut, base+"/api/boards/default/import", "", "application/json", strings.NewReader(`{"apps":[{"id":"x"}]}`))
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLayout_SessionAndMetrics(t *testing.T) {
	_, base := seededServer(t)

	var metrics MetricsResponse
	getJSON(t, base+"/api/boards/default/metrics", "", &metrics)
	assert.False(t, metrics.Published)

	resp := doJSON(t, http.MethodPut, base+"/api/boards/default/session", "", map[string]any{"main_area_width": 900})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var state layout.SessionState
	decodeBody(t, resp, &state)
	assert.False(t, state.Ready)

	state = readySession(t, base)
	assert.True(t, state.Ready)
	assert.Equal(t, layout.StyleVars{WidgetWidth: 100, ColumnCount: 12}, state.Style)

	getJSON(t, base+"/api/boards/default/metrics", "", &metrics)
	assert.True(t, metrics.Published)
	assert.Equal(t, 100.0, metrics.Style.WidgetWidth)

	resp = doJSON(t, http.MethodPut, base+"/api/boards/missing/session", "", map[string]any{"edit_mode": true})
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doRequest(t, http.MethodDelete, base+"/api/boards/default/session", "", "", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	getJSON(t, base+"/api/boards/default/metrics", "", &metrics)
	assert.False(t, metrics.Published, "ending the session forgets its metrics")
}

func TestLayout_AreaRequiresMetrics(t *testing.T) {
	_, base := seededServer(t)

	resp := doRequest(t, http.MethodGet, base+"/api/boards/default/areas/category/A", "", "", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, errorOf(t, resp), "metrics")

	resp = doRequest(t, http.MethodGet, base+"/api/boards/default/areas/panel/A", "", "", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLayout_ChangeEvents(t *testing.T) {
	_, base := seededServer(t)
	plex := addApp(t, base, board.App{Name: "Plex", Area: categoryArea("A")})
	readySession(t, base)

	var area AreaResponse
	getJSON(t, base+"/api/boards/default/areas/category/A", "", &area)
	require.Len(t, area.Apps, 1)
	require.Len(t, area.Layout.Nodes, 1)
	assert.Equal(t, board.ItemRef{Kind: board.KindApp, ID: plex.ID}, area.Layout.Nodes[0].Ref)
	assert.Equal(t, 100.0, area.Layout.CellHeight)

	ev := map[string]any{
		"event_id": "evt-1",
		"op":       "change",
		"item":     map[string]string{"type": "app", "id": plex.ID},
		"x":        3,
		"w":        2,
	}
	resp := doJSON(t, http.MethodPost, base+"/api/boards/default/areas/category/A/events", "", ev)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var res layout.Result
	decodeBody(t, resp, &res)
	assert.True(t, res.Applied)
	assert.Equal(t, uint64(3), res.Version)

	resp = doJSON(t, http.MethodPost, base+"/api/boards/default/areas/category/A/events", "", ev)
	decodeBody(t, resp, &res)
	assert.False(t, res.Applied)
	assert.Equal(t, layout.ReasonDuplicate, res.Reason)

	getJSON(t, base+"/api/boards/default/areas/category/A", "", &area)
	require.Len(t, area.Layout.Nodes, 1)
	assert.Equal(t, board.Location{X: 3, Y: 0}, area.Layout.Nodes[0].Location)
	assert.Equal(t, 2, area.Layout.Nodes[0].Size.Width)

	resp = doJSON(t, http.MethodPost, base+"/api/boards/default/areas/category/A/events", "", map[string]any{
		"op":         "change",
		"attributes": map[string]string{"data-type": "app", "data-id": "nope"},
		"x":          1,
	})
	decodeBody(t, resp, &res)
	assert.Equal(t, layout.ReasonUnknownItem, res.Reason)
}

func TestLayout_MoveBetweenAreas(t *testing.T) {
	_, base := seededServer(t)
	sonarr := addApp(t, base, board.App{Name: "Sonarr", Area: sidebarArea(board.SidebarLeft)})
	readySession(t, base)

	var left AreaResponse
	getJSON(t, base+"/api/boards/default/areas/sidebar/left", "", &left)
	require.Len(t, left.Layout.Nodes, 1)

	resp := doJSON(t, http.MethodPost, base+"/api/boards/default/areas/category/A/events", "", map[string]any{
		"op":   "add",
		"item": map[string]string{"type": "app", "id": sonarr.ID},
		"x":    0,
		"y":    1,
	})
	var res layout.Result
	decodeBody(t, resp, &res)
	require.True(t, res.Applied)

	getJSON(t, base+"/api/boards/default/areas/sidebar/left", "", &left)
	assert.Empty(t, left.Apps)
	assert.Empty(t, left.Layout.Nodes)

	var a AreaResponse
	getJSON(t, base+"/api/boards/default/areas/category/A", "", &a)
	require.Len(t, a.Apps, 1)
	assert.Equal(t, categoryArea("A"), a.Apps[0].Area)

	resp = doJSON(t, http.MethodPost, base+"/api/boards/default/areas/category/A/events", "", map[string]any{
		"op":   "add",
		"item": map[string]string{"type": "app", "id": sonarr.ID},
		"x":    4,
	})
	decodeBody(t, resp, &res)
	assert.False(t, res.Applied)
	assert.Equal(t, layout.ReasonAreaUnchanged, res.Reason)
}

func TestLayout_ReadOnlySession(t *testing.T) {
	_, base := seededServer(t)
	plex := addApp(t, base, board.App{Name: "Plex", Area: categoryArea("A")})
	readySession(t, base)

	resp := doJSON(t, http.MethodPut, base+"/api/boards/default/session", "", map[string]any{"edit_mode": false})
	resp.Body.Close()

	resp = doJSON(t, http.MethodPost, base+"/api/boards/default/areas/category/A/events", "", map[string]any{
		"op":   "change",
		"item": map[string]string{"type": "app", "id": plex.ID},
		"x":    5,
	})
	var res layout.Result
	decodeBody(t, resp, &res)
	assert.Equal(t, layout.ReasonReadOnly, res.Reason)
}

func TestStream_BoardUpdated(t *testing.T) {
	_, base := seededServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/api/boards/default/stream", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	readEvent := func() (string, string) {
		var event, data string
		for {
			line, err := reader.ReadString('\n')
			require.NoError(t, err)
			line = strings.TrimRight(line, "\n")
			switch {
			case strings.HasPrefix(line, "event: "):
				event = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: "):
				data = strings.TrimPrefix(line, "data: ")
			case line == "" && event != "":
				return event, data
			}
		}
	}

	event, _ := readEvent()
	require.Equal(t, "connected", event)

	addApp(t, base, board.App{Name: "Plex", Area: categoryArea("A")})

	event, data := readEvent()
	require.Equal(t, broadcast.EventBoardUpdated, event)
	var got broadcast.BoardEvent
	require.NoError(t, json.Unmarshal([]byte(data), &got))
	assert.Equal(t, "default", got.Board)
	assert.Equal(t, uint64(2), got.Version)
	assert.False(t, got.Deleted)
}

func TestStream_UnknownBoard(t *testing.T) {
	_, base := seededServer(t)
	resp := doRequest(t, http.MethodGet, base+"/api/boards/missing/stream", "", "", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestLocales(t *testing.T) {
	_, base := seededServer(t)

	var list LocalesResponse
	getJSON(t, base+"/api/locales", "", &list)
	assert.Equal(t, locale.FallbackLocale, list.Default.Locale)
	assert.Len(t, list.Languages, len(locale.All()))

	var lang locale.Language
	getJSON(t, base+"/api/locales/resolve?code=de", "", &lang)
	assert.Equal(t, "de", lang.ShortName)

	getJSON(t, base+"/api/locales/resolve?code=xx", "", &lang)
	assert.Equal(t, locale.FallbackLocale, lang.Locale)

	req, err := http.NewRequest(http.MethodGet, base+"/api/locales/resolve", nil)
	require.NoError(t, err)
	req.Header.Set("Accept-Language", "de-AT,de;q=0.9,en;q=0.5")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	decodeBody(t, resp, &lang)
	assert.Equal(t, "de", lang.ShortName)
}

func TestNavigation_LocalAdminAndActive(t *testing.T) {
	_, base := seededServer(t)

	var nav NavigationResponse
	getJSON(t, base+"/api/manage/navigation?path=/manage/boards", "", &nav)
	assert.True(t, nav.Admin, "without a secret the caller is the local admin")

	var boards bool
	for _, l := range nav.Links {
		if l.Name == "boards" {
			boards = l.Active
		}
	}
	assert.True(t, boards)
}

func TestNotebook(t *testing.T) {
	_, base := seededServer(t)

	resp := doJSON(t, http.MethodPost, base+"/api/boards/default/widgets", "", board.Widget{
		ID:         "notes",
		Type:       notebook.WidgetType,
		Properties: map[string]any{notebook.ContentKey: "# Hi"},
		Area:       sidebarArea(board.SidebarLeft),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()
	resp = doJSON(t, http.MethodPost, base+"/api/boards/default/widgets", "", board.Widget{
		ID: "clock", Type: "clock", Area: sidebarArea(board.SidebarLeft),
	})
	resp.Body.Close()

	var note notebook.Note
	getJSON(t, base+"/api/boards/default/widgets/notes/notebook", "", &note)
	assert.Equal(t, "# Hi", note.Markdown)
	assert.Contains(t, note.HTML, "<h1>Hi</h1>")

	resp = doJSON(t, http.MethodPut, base+"/api/boards/default/widgets/notes/notebook", "", UpdateNoteRequest{Markdown: "**bold**"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &note)
	assert.Contains(t, note.HTML, "<strong>bold</strong>")
	assert.Equal(t, uint64(4), note.Version)

	resp = doRequest(t, http.MethodGet, base+"/api/boards/default/widgets/clock/notebook", "", "", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doRequest(t, http.MethodGet, base+"/api/boards/default/widgets/none/notebook", "", "", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{store.ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("get: %w", store.ErrNotFound), http.StatusNotFound},
		{notebook.ErrWidgetNotFound, http.StatusNotFound},
		{store.ErrBoardExists, http.StatusConflict},
		{layout.ErrMetricsNotReady, http.StatusConflict},
		{board.ErrInvalidConfig, http.StatusBadRequest},
		{board.ErrInvalidArea, http.StatusBadRequest},
		{boardio.ErrUnknownFormat, http.StatusBadRequest},
		{notebook.ErrNotNotebook, http.StatusBadRequest},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestLayout_UnknownBoardIsNotFound(t *testing.T) {
	srv, base := seededServer(t)

	for _, name := range []string{"x1", "x2"} {
		resp := doRequest(t, http.MethodGet, base+"/api/boards/"+name+"/areas/category/A", "", "", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		resp.Body.Close()

		resp = doJSON(t, http.MethodPost, base+"/api/boards/"+name+"/areas/category/A/events", "", map[string]any{"op": "change"})
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		resp.Body.Close()

		resp = doRequest(t, http.MethodGet, base+"/api/boards/"+name+"/session", "", "", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		resp.Body.Close()
	}
	assert.Empty(t, srv.layouts.Boards())

	resp := doRequest(t, http.MethodGet, base+"/health/ready", "", "", nil)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "ready (1 boards, 0 sessions)", string(body))
}

func TestLayout_SessionRejectsUnknownSizeClass(t *testing.T) {
	_, base := seededServer(t)

	resp := doJSON(t, http.MethodPut, base+"/api/boards/default/session", "", map[string]any{
		"main_area_width": 1200,
		"column_count":    12,
		"size_class":      "xl",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, errorOf(t, resp), "size class")

	var state layout.SessionState
	getJSON(t, base+"/api/boards/default/session", "", &state)
	assert.False(t, state.Ready)
}
