package http

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
)

type Middleware func(next Handler) Handler

// RecoverMiddleware answers 500 Internal Server Error when next panics, so a
// broken handler only costs the connection it was serving.
func RecoverMiddleware(logger *slog.Logger) Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx context.Context, req *Request) (res Response) {
			defer func() {
				if recovered := recover(); recovered != nil {
					logger.ErrorContext(ctx, "handler panicked",
						"uri", req.URI,
						"panic", fmt.Sprint(recovered),
						"stack", string(debug.Stack()),
					)

					res = req.Respond(StatusInternalServerError, nil)
				}
			}()

			return next.ServeHTTP(ctx, req)
		})
	}
}

// HeaderMiddleware appends header lines to every response produced by next.
func HeaderMiddleware(headers ...string) Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx context.Context, req *Request) Response {
			res := next.ServeHTTP(ctx, req)
			res.Headers = append(res.Headers, headers...)
			return res
		})
	}
}
