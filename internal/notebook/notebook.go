// ABOUTME: Notebook widget service storing markdown in widget properties
// ABOUTME: Renders notes to HTML with goldmark (GFM, raw HTML escaped)

package notebook

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/2389/homarr-board/internal/board"
	"github.com/2389/homarr-board/internal/store"
)

const (
	// WidgetType is the widget type served by this package.
	WidgetType = "notebook"

	// ContentKey is the widget property holding the markdown source.
	ContentKey = "content"
)

// Notebook errors
var (
	ErrWidgetNotFound = errors.New("widget not found")
	ErrNotNotebook    = errors.New("widget is not a notebook")
)

// Note is a notebook widget's content.
type Note struct {
	Board    string `json:"board"`
	WidgetID string `json:"widget_id"`
	Markdown string `json:"markdown"`
	HTML     string `json:"html"`
	Version  uint64 `json:"version"`
}

// Service reads and writes notebook widgets.
type Service struct {
	store  store.ConfigStore
	md     goldmark.Markdown
	logger *slog.Logger
}

// NewService creates a notebook service.
func NewService(s store.ConfigStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store: s,
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
		logger: logger.With("component", "notebook"),
	}
}

// Render converts markdown to HTML.
func (s *Service) Render(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := s.md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return buf.String(), nil
}

// notebookWidget returns the index of the notebook widget id in cfg.
func notebookWidget(cfg *board.Config, id string) (int, error) {
	i, ok := cfg.FindWidget(id)
	if !ok {
		return -1, ErrWidgetNotFound
	}
	if cfg.Widgets[i].Type != WidgetType {
		return -1, fmt.Errorf("%w: %q has type %q", ErrNotNotebook, id, cfg.Widgets[i].Type)
	}
	return i, nil
}

func content(w board.Widget) string {
	s, _ := w.Properties[ContentKey].(string)
	return s
}

func (s *Service) note(cfg *board.Config, i int) (*Note, error) {
	md := content(cfg.Widgets[i])
	rendered, err := s.Render(md)
	if err != nil {
		return nil, err
	}
	return &Note{
		Board:    cfg.Name,
		WidgetID: cfg.Widgets[i].ID,
		Markdown: md,
		HTML:     rendered,
		Version:  cfg.Version,
	}, nil
}

// Get returns the note of a notebook widget.
func (s *Service) Get(ctx context.Context, boardName, widgetID string) (*Note, error) {
	cfg, err := s.store.Get(ctx, boardName)
	if err != nil {
		return nil, err
	}
	i, err := notebookWidget(cfg, widgetID)
	if err != nil {
		return nil, err
	}
	return s.note(cfg, i)
}

// Update replaces the markdown of a notebook widget.
func (s *Service) Update(ctx context.Context, boardName, widgetID, markdown string) (*Note, error) {
	var lookupErr error
	cfg, applied, err := s.store.Update(ctx, boardName, func(prev *board.Config) *board.Config {
		i, err := notebookWidget(prev, widgetID)
		if err != nil {
			lookupErr = err
			return prev
		}
		if prev.Widgets[i].Properties == nil {
			prev.Widgets[i].Properties = map[string]any{}
		}
		prev.Widgets[i].Properties[ContentKey] = markdown
		return prev
	}, nil)
	if err != nil {
		return nil, err
	}
	if lookupErr != nil {
		return nil, lookupErr
	}
	if applied {
		s.logger.Info("notebook updated", "board", boardName, "widget", widgetID, "version", cfg.Version)
	}

	i, err := notebookWidget(cfg, widgetID)
	if err != nil {
		return nil, err
	}
	return s.note(cfg, i)
}
