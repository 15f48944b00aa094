package http

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const headerContentLength = "content-length"

// bodyPreallocLimit caps how much of a declared body is allocated before any
// of it has arrived.
const bodyPreallocLimit = 64 << 10

// Request is a parsed request. It is never modified once ReadRequest returns.
type Request struct {
	Protocol string
	Method   Method
	URI      string
	// Headers holds the raw header lines in wire order, duplicates included.
	Headers []string
	Body    []byte

	// rawContentLength keeps a Content-Length value that could not be parsed,
	// so the server can report it.
	rawContentLength string
}

// Header returns the trimmed value of the first header line whose name
// matches name case-insensitively.
func (req *Request) Header(name string) (string, bool) {
	for _, line := range req.Headers {
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(key), name) {
			return strings.TrimSpace(value), true
		}
	}
	return "", false
}

// ContentLength is the length of the body that was read.
func (req *Request) ContentLength() int {
	return len(req.Body)
}

// Respond builds a response to req with the canonical reason phrase for status.
func (req *Request) Respond(status int, body []byte) Response {
	return NewResponse(req, status, StatusText(status), nil, body)
}

// ReadRequest reads exactly one request from br.
//
// The request line must hold three whitespace separated tokens. Header lines
// are kept verbatim until the first empty line. A body is read only when the
// last Content-Length header carries a positive integer; anything else,
// including a value that does not parse, means no body.
func ReadRequest(br *bufio.Reader) (*Request, error) {
	return ReadRequestLimit(br, 0)
}

// ReadRequestLimit is ReadRequest with a cap on the declared body size. A
// Content-Length above maxBodySize fails with ErrBodyTooLarge before any body
// byte is read. A maxBodySize of zero or less disables the cap.
func ReadRequestLimit(br *bufio.Reader, maxBodySize int) (*Request, error) {
	line, err := readLine(br)
	if err != nil {
		return nil, err
	}
	if line == "" {
		return nil, fmt.Errorf("%w: no request line", ErrIncompleteRequest)
	}

	parts := strings.Fields(line)
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: %q", ErrMalformedRequestLine, line)
	}
	method, err := ParseMethod(parts[0])
	if err != nil {
		return nil, err
	}

	req := &Request{
		Method:   method,
		URI:      parts[1],
		Protocol: parts[2],
		Headers:  make([]string, 0, 8),
	}

	contentLength := 0
	for {
		line, err := readLine(br)
		if err != nil {
			return nil, err
		}
		if line == "" {
			break // end of headers
		}

		if name, value, found := strings.Cut(line, ":"); found && strings.EqualFold(name, headerContentLength) {
			contentLength, req.rawContentLength = parseContentLength(value)
		}
		req.Headers = append(req.Headers, line)
	}

	if maxBodySize > 0 && contentLength > maxBodySize {
		return nil, fmt.Errorf("%w: %d bytes declared, limit is %d", ErrBodyTooLarge, contentLength, maxBodySize)
	}
	if contentLength > 0 {
		if req.Body, err = readBody(br, contentLength); err != nil {
			return nil, err
		}
	}

	return req, nil
}

// readBody reads exactly n bytes. Memory grows with the bytes that actually
// arrive, not with the declared length.
func readBody(br *bufio.Reader, n int) ([]byte, error) {
	var body bytes.Buffer
	body.Grow(min(n, bodyPreallocLimit))

	if _, err := io.CopyN(&body, br, int64(n)); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrBodyTruncated, n, body.Len())
		}
		return nil, err
	}
	return body.Bytes(), nil
}

// readLine returns the next line without its "\n" or "\r\n" terminator. A
// stream that ends before the terminator is an incomplete request.
func readLine(br *bufio.Reader) (string, error) {
	line, err := br.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			return "", fmt.Errorf("%w: stream closed before end of headers", ErrIncompleteRequest)
		}
		return "", err
	}
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	return line, nil
}

// parseContentLength returns the body length for a header value and, when
// the value is not a number, the raw value.
func parseContentLength(value string) (int, string) {
	value = strings.TrimSpace(value)
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, value
	}
	if n < 0 {
		return 0, ""
	}
	return n, ""
}
