// Package http implements a small HTTP/1.1 server engine: one request per
// connection, Content-Length framed bodies and exact URI routing with a
// static file fallback.
package http

import (
	"errors"
	"fmt"
)

const (
	DefaultReadBufferSize  = 4096 // 4kB
	DefaultWriteBufferSize = 4096 // 4kB
)

var (
	ErrMalformedRequestLine = errors.New("http: malformed request line")
	ErrIncompleteRequest    = errors.New("http: incomplete request")
	ErrBodyTruncated        = errors.New("http: body truncated")
	ErrBodyTooLarge         = errors.New("http: body too large")
	ErrHandlerNotFound      = errors.New("http: handler not found")
	ErrFileNotFound         = errors.New("http: file not found")
	ErrNotAFile             = errors.New("http: uri does not name a file")
	ErrIO                   = errors.New("http: i/o failure")
	ErrServerClosed         = errors.New("http: server closed")
)

type Method uint8

const (
	MethodGet Method = iota
	MethodHead
	MethodPost
	MethodPut
	MethodDelete
	MethodConnect
	MethodOptions
	MethodTrace
	MethodPatch
)

var methodNames = [...]string{
	MethodGet:     "GET",
	MethodHead:    "HEAD",
	MethodPost:    "POST",
	MethodPut:     "PUT",
	MethodDelete:  "DELETE",
	MethodConnect: "CONNECT",
	MethodOptions: "OPTIONS",
	MethodTrace:   "TRACE",
	MethodPatch:   "PATCH",
}

func (m Method) String() string {
	if int(m) < len(methodNames) {
		return methodNames[m]
	}
	return fmt.Sprintf("Method(%d)", uint8(m))
}

// ParseMethod maps a request line token onto a Method. Matching is case
// sensitive, "get" is not a method.
func ParseMethod(token string) (Method, error) {
	for m, name := range methodNames {
		if name == token {
			return Method(m), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown method %q", ErrMalformedRequestLine, token)
}
