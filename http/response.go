package http

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
)

var crlf = []byte("\r\n")

type Response struct {
	Protocol     string
	StatusCode   int
	ReasonPhrase string
	Headers      []string
	// Body is nil when the response carries no body.
	Body []byte
}

// NewResponse builds a response that echoes the protocol of req.
func NewResponse(req *Request, status int, reason string, headers []string, body []byte) Response {
	return Response{
		Protocol:     req.Protocol,
		StatusCode:   status,
		ReasonPhrase: reason,
		Headers:      append([]string(nil), headers...),
		Body:         body,
	}
}

func NotFound(req *Request) Response {
	return NewResponse(req, StatusNotFound, StatusText(StatusNotFound), nil, nil)
}

// WriteTo renders the response in wire format. No header is added: the
// start line, the caller's header lines, an empty line and the body are
// written as they are.
func (res *Response) WriteTo(w io.Writer) (int64, error) {
	bw, ok := w.(*bufio.Writer)
	if !ok {
		bw = bufio.NewWriterSize(w, DefaultWriteBufferSize)
	}

	var n int64
	write := func(b []byte) error {
		m, err := bw.Write(b)
		n += int64(m)
		return err
	}

	head := make([]byte, 0, 64)
	head = append(head, res.Protocol...)
	head = append(head, ' ')
	head = strconv.AppendInt(head, int64(res.StatusCode), 10)
	head = append(head, ' ')
	head = append(head, res.ReasonPhrase...)
	head = append(head, crlf...)
	for _, header := range res.Headers {
		head = append(head, header...)
		head = append(head, crlf...)
	}
	head = append(head, crlf...)

	if err := write(head); err != nil {
		return n, err
	}
	if res.Body != nil {
		if err := write(res.Body); err != nil {
			return n, err
		}
	}

	if !ok {
		return n, bw.Flush()
	}
	return n, nil
}

func (res *Response) Bytes() []byte {
	var buf bytes.Buffer
	// Writes to a bytes.Buffer cannot fail.
	_, _ = res.WriteTo(&buf)
	return buf.Bytes()
}

// ReadResponse reads a response written by this server. The body runs until
// the end of the stream unless a Content-Length header says otherwise.
func ReadResponse(br *bufio.Reader) (*Response, error) {
	line, err := readLine(br)
	if err != nil {
		return nil, err
	}

	protocol, rest, found := strings.Cut(line, " ")
	if !found {
		return nil, fmt.Errorf("http: malformed status line %q", line)
	}
	code, reason, _ := strings.Cut(rest, " ")
	status, err := strconv.Atoi(code)
	if err != nil {
		return nil, fmt.Errorf("http: malformed status code %q", code)
	}

	res := &Response{
		Protocol:     protocol,
		StatusCode:   status,
		ReasonPhrase: reason,
	}

	contentLength := -1
	for {
		line, err := readLine(br)
		if err != nil {
			return nil, err
		}
		if line == "" {
			break
		}
		if name, value, found := strings.Cut(line, ":"); found && strings.EqualFold(name, headerContentLength) {
			if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil && n >= 0 {
				contentLength = n
			}
		}
		res.Headers = append(res.Headers, line)
	}

	if contentLength >= 0 {
		if res.Body, err = readBody(br, contentLength); err != nil {
			return nil, err
		}
		return res, nil
	}

	body, err := io.ReadAll(br)
	if err != nil {
		return nil, err
	}
	if len(body) > 0 {
		res.Body = body
	}
	return res, nil
}
