package http

import (
	"context"
	"slices"
	"sync"
)

type Handler interface {
	ServeHTTP(ctx context.Context, req *Request) Response
}

type HandlerFunc func(ctx context.Context, req *Request) Response

func (f HandlerFunc) ServeHTTP(ctx context.Context, req *Request) Response {
	return f(ctx, req)
}

// Registry maps exact URIs onto handlers. Lookups may run concurrently with
// each other and with Register.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[string]Handler),
	}
}

// Register binds handler to uri, replacing any handler registered before it.
// Middleware is applied in order, the first one ends up innermost.
func (registry *Registry) Register(uri string, handler Handler, middleware ...Middleware) {
	for _, mw := range middleware {
		handler = mw(handler)
	}

	registry.mu.Lock()
	defer registry.mu.Unlock()

	registry.handlers[uri] = handler
}

func (registry *Registry) RegisterFunc(uri string, handler func(ctx context.Context, req *Request) Response, middleware ...Middleware) {
	registry.Register(uri, HandlerFunc(handler), middleware...)
}

// Lookup compares uri byte for byte against the registered URIs.
func (registry *Registry) Lookup(uri string) (Handler, bool) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	handler, found := registry.handlers[uri]
	return handler, found
}

func (registry *Registry) Len() int {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	return len(registry.handlers)
}

// URIs returns the registered URIs in sorted order.
func (registry *Registry) URIs() []string {
	registry.mu.RLock()
	uris := make([]string, 0, len(registry.handlers))
	for uri := range registry.handlers {
		uris = append(uris, uri)
	}
	registry.mu.RUnlock()

	slices.Sort(uris)
	return uris
}
