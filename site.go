package main

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/freekieb7/pebble/filesystem"
	"github.com/freekieb7/pebble/http"
)

// site holds the handlers the binary registers at startup.
type site struct {
	basePath string
	files    filesystem.Filesystem
	logger   *slog.Logger
}

func newSite(basePath string, files filesystem.Filesystem, logger *slog.Logger) *site {
	return &site{
		basePath: basePath,
		files:    files,
		logger:   logger,
	}
}

func (s *site) root(ctx context.Context, req *http.Request) http.Response {
	return req.Respond(http.StatusOK, nil)
}

func (s *site) index(ctx context.Context, req *http.Request) http.Response {
	content, err := s.files.ReadFile(filepath.Join(s.basePath, "static", "index.html"))
	if err != nil {
		s.logger.WarnContext(ctx, "index page unavailable", "error", err)
		return http.NotFound(req)
	}

	return req.Respond(http.StatusOK, content)
}
