package http

import (
	"bufio"
	"bytes"
	"errors"
	"slices"
	"testing"

	"github.com/freekieb7/pebble/test"
)

func TestResponseWrite(t *testing.T) {
	req := &Request{Protocol: "HTTP/1.1"}
	res := NewResponse(req, StatusOK, "OK", nil, []byte("ok"))

	test.AssertEqual(t, "HTTP/1.1 200 OK\r\n\r\nok", string(res.Bytes()))
}

func TestResponseWriteHeadersAndNoBody(t *testing.T) {
	res := Response{
		Protocol:     "HTTP/1.0",
		StatusCode:   StatusNoContent,
		ReasonPhrase: "No Content",
		Headers:      []string{"X-A: 1", "X-B: 2"},
	}

	test.AssertEqual(t, "HTTP/1.0 204 No Content\r\nX-A: 1\r\nX-B: 2\r\n\r\n", string(res.Bytes()))
}

func TestResponseWriteDoesNotAddContentLength(t *testing.T) {
	res := Response{Protocol: "HTTP/1.1", StatusCode: 200, ReasonPhrase: "OK", Body: []byte("hello, world!")}

	got := res.Bytes()
	if bytes.Contains(bytes.ToLower(got), []byte("content-length")) {
		t.Errorf("unexpected content-length header: %q", got)
	}
}

func TestNotFoundEchoesProtocol(t *testing.T) {
	res := NotFound(&Request{Protocol: "HTTP/1.0"})

	test.AssertEqual(t, "HTTP/1.0 404 Not Found\r\n\r\n", string(res.Bytes()))
}

func TestResponseRoundTrip(t *testing.T) {
	responses := []Response{
		{Protocol: "HTTP/1.1", StatusCode: 200, ReasonPhrase: "OK"},
		{Protocol: "HTTP/1.1", StatusCode: 404, ReasonPhrase: "Not Found", Headers: []string{"X-A: 1"}},
		{Protocol: "HTTP/1.1", StatusCode: 418, ReasonPhrase: "I'm a teapot", Headers: []string{"X-A: 1", "X-A: 1", "Server: pebble"}, Body: []byte("short and stout")},
		{Protocol: "HTTP/1.1", StatusCode: 599, ReasonPhrase: "", Headers: []string{"Content-Length: 3"}, Body: []byte("abc")},
	}

	for _, res := range responses {
		parsed, err := ReadResponse(bufio.NewReader(bytes.NewReader(res.Bytes())))
		if err != nil {
			t.Fatal(err)
		}

		test.AssertEqual(t, res.StatusCode, parsed.StatusCode)
		test.AssertEqual(t, res.ReasonPhrase, parsed.ReasonPhrase)

		want := slices.Clone(res.Headers)
		got := slices.Clone(parsed.Headers)
		slices.Sort(want)
		slices.Sort(got)
		test.AssertEqual(t, want, got)
	}
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("broken pipe")
}

func TestResponseWriteToReportsErrors(t *testing.T) {
	res := Response{Protocol: "HTTP/1.1", StatusCode: 200, ReasonPhrase: "OK", Body: []byte("x")}

	if _, err := res.WriteTo(failingWriter{}); err == nil {
		t.Error("expected write error")
	}
}

func TestStatusText(t *testing.T) {
	test.AssertEqual(t, "OK", StatusText(StatusOK))
	test.AssertEqual(t, "Not Found", StatusText(StatusNotFound))
	test.AssertEqual(t, "", StatusText(299))
}
