package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

type Server struct {
	Name     string
	Registry *Registry
	// Static is consulted when no handler matches. Nil disables the fallback.
	Static *StaticResolver

	// ReadTimeout bounds reading the whole request, WriteTimeout bounds
	// writing the response. Zero means no deadline.
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// MaxConns caps the number of connections served at once. Once reached
	// the accept loop waits for a worker to finish. Zero means no cap.
	MaxConns int
	// MaxBodySize rejects requests that declare a larger Content-Length.
	// Zero means no limit.
	MaxBodySize int
	ReusePort   bool

	Logger        *slog.Logger
	ConnStateHook func(conn net.Conn, state ConnState)

	tracer  trace.Tracer
	metrics *serverMetrics

	initOnce sync.Once
	slots    chan struct{}
	done     chan struct{}

	mu         sync.Mutex
	inShutdown bool
	listeners  map[net.Listener]struct{}
	workers    sync.WaitGroup
}

func NewServer(name string) *Server {
	return &Server{
		Name:     name,
		Registry: NewRegistry(),
		Logger:   otelslog.NewLogger(name),

		tracer:  otel.Tracer(instrumentationName),
		metrics: newServerMetrics(otel.Meter(instrumentationName)),
	}
}

func (s *Server) init() {
	s.initOnce.Do(func() {
		if s.Registry == nil {
			s.Registry = NewRegistry()
		}
		if s.Logger == nil {
			s.Logger = otelslog.NewLogger(s.Name)
		}
		if s.tracer == nil {
			s.tracer = otel.Tracer(instrumentationName)
		}
		if s.metrics == nil {
			s.metrics = newServerMetrics(otel.Meter(instrumentationName))
		}
		if s.MaxConns > 0 {
			s.slots = make(chan struct{}, s.MaxConns)
		}
		s.done = make(chan struct{})
		s.listeners = make(map[net.Listener]struct{})
	})
}

func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.init()

	var listenConfig net.ListenConfig
	if s.ReusePort {
		listenConfig.Control = reusePortControl
	}

	listener, err := listenConfig.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("http: listen on %s: %w", addr, err)
	}

	s.Logger.InfoContext(ctx, "listening", "server", s.Name, "addr", listener.Addr().String())

	return s.Serve(listener)
}

// Serve accepts connections on listener and serves each one on its own
// goroutine. It returns ErrServerClosed after Shutdown.
func (s *Server) Serve(listener net.Listener) error {
	s.init()

	if !s.trackListener(listener) {
		listener.Close()
		return ErrServerClosed
	}
	defer s.untrackListener(listener)

	var backoff time.Duration
	for {
		if s.slots != nil {
			select {
			case s.slots <- struct{}{}:
			case <-s.done:
				return ErrServerClosed
			}
		}

		conn, err := listener.Accept()
		if err != nil {
			s.releaseSlot()

			select {
			case <-s.done:
				return ErrServerClosed
			default:
			}

			if errors.Is(err, net.ErrClosed) {
				return err
			}

			if backoff == 0 {
				backoff = 5 * time.Millisecond
			} else if backoff *= 2; backoff > time.Second {
				backoff = time.Second
			}
			s.Logger.Error("accepting connection failed", "error", err, "retry_in", backoff)
			time.Sleep(backoff)
			continue
		}
		backoff = 0

		s.mu.Lock()
		if s.inShutdown {
			s.mu.Unlock()
			conn.Close()
			s.releaseSlot()
			return ErrServerClosed
		}
		s.workers.Add(1)
		s.mu.Unlock()

		go func() {
			defer s.workers.Done()
			defer s.releaseSlot()

			s.serveConn(conn)
		}()
	}
}

// ServeConn serves exactly one request on conn and closes it. Failures are
// logged and never escape to the caller. Shutdown waits for the connection
// like it does for accepted ones; after Shutdown conn is closed unanswered.
func (s *Server) ServeConn(conn net.Conn) {
	s.init()

	s.mu.Lock()
	if s.inShutdown {
		s.mu.Unlock()
		conn.Close()
		return
	}
	s.workers.Add(1)
	s.mu.Unlock()
	defer s.workers.Done()

	s.serveConn(conn)
}

// serveConn runs a worker on conn. The caller accounts for it in s.workers.
func (s *Server) serveConn(conn net.Conn) {
	w := newWorker(s, conn)
	defer w.close()
	defer func() {
		if recovered := recover(); recovered != nil {
			s.Logger.Error("worker panicked", "conn_id", w.id, "panic", fmt.Sprint(recovered))
		}
	}()

	w.setState(StateAccepted)
	w.serve(context.Background())
}

// route picks exactly one of: the registered handler, a static file, or 404.
func (s *Server) route(ctx context.Context, req *Request) (Response, string) {
	if handler, found := s.Registry.Lookup(req.URI); found {
		return RecoverMiddleware(s.Logger)(handler).ServeHTTP(ctx, req), outcomeHandler
	}

	miss := ErrHandlerNotFound
	if s.Static != nil {
		res, err := s.Static.Resolve(ctx, req)
		if err == nil {
			return res, outcomeStatic
		}
		miss = errors.Join(miss, err)
	}

	s.Logger.DebugContext(ctx, "no route", "uri", req.URI, "error", miss)
	return NotFound(req), outcomeNotFound
}

// Shutdown stops every accept loop and waits until in-flight connections,
// including those handed to ServeConn, have been answered or ctx is done.
// Requests being read are not interrupted.
func (s *Server) Shutdown(ctx context.Context) error {
	s.init()

	s.mu.Lock()
	if !s.inShutdown {
		s.inShutdown = true
		close(s.done)
	}
	var err error
	for listener := range s.listeners {
		if closeErr := listener.Close(); closeErr != nil && !errors.Is(closeErr, net.ErrClosed) {
			err = errors.Join(err, closeErr)
		}
		delete(s.listeners, listener)
	}
	s.mu.Unlock()

	finished := make(chan struct{})
	go func() {
		s.workers.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		return err
	case <-ctx.Done():
		return errors.Join(err, ctx.Err())
	}
}

func (s *Server) trackListener(listener net.Listener) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inShutdown {
		return false
	}
	s.listeners[listener] = struct{}{}
	return true
}

func (s *Server) untrackListener(listener net.Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.listeners, listener)
}

func (s *Server) releaseSlot() {
	if s.slots != nil {
		<-s.slots
	}
}
