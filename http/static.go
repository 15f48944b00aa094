package http

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// FileReader is the part of filesystem.Filesystem the resolver needs.
type FileReader interface {
	ReadFile(path string) ([]byte, error)
}

// StaticResolver serves files below BasePath for URIs that look like file
// names. The path is BasePath followed by the URI as received, without any
// cleaning.
type StaticResolver struct {
	BasePath string
	Files    FileReader
	Logger   *slog.Logger
}

func NewStaticResolver(basePath string, files FileReader, logger *slog.Logger) *StaticResolver {
	return &StaticResolver{
		BasePath: basePath,
		Files:    files,
		Logger:   logger,
	}
}

// Resolve returns a 200 response holding the file named by req.URI. It
// returns ErrNotAFile without touching the filesystem when the URI has no
// extension, and ErrFileNotFound when the file cannot be read.
func (resolver *StaticResolver) Resolve(ctx context.Context, req *Request) (Response, error) {
	if !HasFileExtension(req.URI) {
		return Response{}, ErrNotAFile
	}

	path := resolver.BasePath + req.URI
	content, err := resolver.Files.ReadFile(path)
	if err != nil {
		if resolver.Logger != nil {
			resolver.Logger.InfoContext(ctx, "static file not found", "uri", req.URI, "path", path, "error", err)
		}
		return Response{}, fmt.Errorf("%w: %s", ErrFileNotFound, req.URI)
	}

	if content == nil {
		content = []byte{}
	}
	return NewResponse(req, StatusOK, StatusText(StatusOK), nil, content), nil
}

// HasFileExtension reports whether uri ends in an extension: a dot that is
// neither the first nor the last byte, followed by no path separator.
func HasFileExtension(uri string) bool {
	pos := strings.LastIndexByte(uri, '.')
	if pos <= 0 || pos >= len(uri)-1 {
		return false
	}
	return !strings.ContainsAny(uri[pos+1:], `/\`)
}
