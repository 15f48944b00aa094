package http

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ConnState is the position of a connection in its single pass from accept
// to close. States are never revisited.
type ConnState uint8

const (
	StateAccepted ConnState = iota
	StateParsing
	StateRouting
	StateResponding
	StateClosed
)

func (state ConnState) String() string {
	switch state {
	case StateAccepted:
		return "accepted"
	case StateParsing:
		return "parsing"
	case StateRouting:
		return "routing"
	case StateResponding:
		return "responding"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

var (
	readerPool = sync.Pool{
		New: func() any { return bufio.NewReaderSize(nil, DefaultReadBufferSize) },
	}
	writerPool = sync.Pool{
		New: func() any { return bufio.NewWriterSize(nil, DefaultWriteBufferSize) },
	}
)

// worker owns one connection for its whole life: it parses one request,
// writes one response and closes the connection.
type worker struct {
	server  *Server
	conn    net.Conn
	id      string
	started time.Time

	reader *bufio.Reader
	writer *bufio.Writer
}

func newWorker(server *Server, conn net.Conn) *worker {
	reader := readerPool.Get().(*bufio.Reader)
	reader.Reset(conn)
	writer := writerPool.Get().(*bufio.Writer)
	writer.Reset(conn)

	return &worker{
		server:  server,
		conn:    conn,
		id:      uuid.NewString(),
		started: time.Now(),
		reader:  reader,
		writer:  writer,
	}
}

func (w *worker) setState(state ConnState) {
	if hook := w.server.ConnStateHook; hook != nil {
		hook(w.conn, state)
	}
}

func (w *worker) serve(ctx context.Context) {
	s := w.server
	remote := remoteAddr(w.conn)

	ctx, span := s.tracer.Start(ctx, "http.conn",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("conn.id", w.id),
			attribute.String("net.peer.addr", remote),
		),
	)
	defer span.End()

	s.metrics.connOpened(ctx)
	defer s.metrics.connClosed(ctx, w.started)

	s.Logger.InfoContext(ctx, "accepted connection", "conn_id", w.id, "remote", remote)

	w.setState(StateParsing)
	if s.ReadTimeout > 0 {
		w.conn.SetReadDeadline(time.Now().Add(s.ReadTimeout))
	}
	req, err := ReadRequestLimit(w.reader, s.MaxBodySize)
	if err != nil {
		s.Logger.WarnContext(ctx, "reading request failed", "conn_id", w.id, "remote", remote, "error", err)
		s.metrics.parseFailed(ctx, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "parse")
		return
	}
	if req.rawContentLength != "" {
		s.Logger.WarnContext(ctx, "unparseable content-length treated as zero",
			"conn_id", w.id,
			"uri", req.URI,
			"content_length", req.rawContentLength,
		)
	}
	span.SetAttributes(
		attribute.String("http.method", req.Method.String()),
		attribute.String("http.target", req.URI),
		attribute.String("http.flavor", req.Protocol),
	)

	w.setState(StateRouting)
	res, outcome := s.route(ctx, req)
	span.SetAttributes(
		attribute.String("http.route.outcome", outcome),
		attribute.Int("http.status_code", res.StatusCode),
	)

	w.setState(StateResponding)
	if s.WriteTimeout > 0 {
		w.conn.SetWriteDeadline(time.Now().Add(s.WriteTimeout))
	}
	_, err = res.WriteTo(w.writer)
	if err == nil {
		err = w.writer.Flush()
	}
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrIO, err)
		s.Logger.ErrorContext(ctx, "writing response failed", "conn_id", w.id, "uri", req.URI, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "write")
	}

	s.metrics.requestServed(ctx, outcome, res.StatusCode)
	s.Logger.InfoContext(ctx, "request served",
		"conn_id", w.id,
		"method", req.Method.String(),
		"uri", req.URI,
		"status", res.StatusCode,
		"outcome", outcome,
	)
}

func (w *worker) close() {
	if err := w.conn.Close(); err != nil {
		w.server.Logger.Debug("closing connection failed", "conn_id", w.id, "error", err)
	}
	w.setState(StateClosed)

	w.reader.Reset(nil)
	readerPool.Put(w.reader)
	w.writer.Reset(nil)
	writerPool.Put(w.writer)
}

func remoteAddr(conn net.Conn) string {
	if addr := conn.RemoteAddr(); addr != nil {
		return addr.String()
	}
	return ""
}
