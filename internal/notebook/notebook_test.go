// ABOUTME: Tests for the notebook widget service
// ABOUTME: Covers rendering, escaping, reads, writes and type checks

package notebook

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/homarr-board/internal/board"
	"github.com/2389/homarr-board/internal/store"
)

func newTestService(t *testing.T) (*Service, store.ConfigStore) {
	t.Helper()
	s := store.NewMemoryStore()
	area, err := board.NewArea(board.AreaWrapper, "main")
	require.NoError(t, err)

	cfg := board.New("default")
	cfg.Widgets = []board.Widget{
		{ID: "notes", Type: WidgetType, Area: area, Properties: map[string]any{ContentKey: "# Shopping\n\n- milk"}},
		{ID: "empty", Type: WidgetType, Area: area},
		{ID: "clock", Type: "clock", Area: area},
	}
	require.NoError(t, s.Create(context.Background(), cfg))
	return NewService(s, nil), s
}

func TestService_Render(t *testing.T) {
	svc, _ := newTestService(t)

	out, err := svc.Render("**bold** ~~gone~~")
	require.NoError(t, err)
	assert.Contains(t, out, "<strong>bold</strong>")
	assert.Contains(t, out, "<del>gone</del>")
}

func TestService_RenderEscapesRawHTML(t *testing.T) {
	svc, _ := newTestService(t)

	out, err := svc.Render("<script>alert(1)</script>")
	require.NoError(t, err)
	assert.NotContains(t, out, "<script>")
}

func TestService_Get(t *testing.T) {
	svc, _ := newTestService(t)

	note, err := svc.Get(context.Background(), "default", "notes")
	require.NoError(t, err)
	assert.Equal(t, "# Shopping\n\n- milk", note.Markdown)
	assert.Contains(t, note.HTML, "<h1>Shopping</h1>")
	assert.Contains(t, note.HTML, "<li>milk</li>")
	assert.Equal(t, uint64(1), note.Version)
}

func TestService_GetErrors(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Get(ctx, "default", "missing")
	assert.ErrorIs(t, err, ErrWidgetNotFound)

	_, err = svc.Get(ctx, "default", "clock")
	assert.ErrorIs(t, err, ErrNotNotebook)

	_, err = svc.Get(ctx, "nope", "notes")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestService_Update(t *testing.T) {
	svc, s := newTestService(t)
	ctx := context.Background()

	note, err := svc.Update(ctx, "default", "empty", "hello *world*")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), note.Version)
	assert.Contains(t, note.HTML, "<em>world</em>")

	cfg, err := s.Get(ctx, "default")
	require.NoError(t, err)
	i, ok := cfg.FindWidget("empty")
	require.True(t, ok)
	assert.Equal(t, "hello *world*", cfg.Widgets[i].Properties[ContentKey])
}

func TestService_UpdateSameContentKeepsVersion(t *testing.T) {
	svc, _ := newTestService(t)

	note, err := svc.Update(context.Background(), "default", "notes", "# Shopping\n\n- milk")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), note.Version)
}

func TestService_UpdateRejectsOtherWidgets(t *testing.T) {
	svc, s := newTestService(t)
	ctx := context.Background()

	_, err := svc.Update(ctx, "default", "clock", "text")
	assert.ErrorIs(t, err, ErrNotNotebook)

	cfg, err := s.Get(ctx, "default")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), cfg.Version)
}
