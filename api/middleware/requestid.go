package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/irsalhamdi/course-studio/api/web"
)

const (
	RequestIDHeader = "X-Request-Id"

	// maxRequestID bounds ids taken from clients.
	maxRequestID = 64
)

type reqIDKeyCtx int

const reqIDKey reqIDKeyCtx = 1

// RequestID tags the request with the id sent by the client, or a fresh one,
// and echoes it in the response.
func RequestID() web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			id := r.Header.Get(RequestIDHeader)
			switch {
			case id == "":
				id = uuid.NewString()
			case len(id) > maxRequestID:
				id = id[:maxRequestID]
			}

			ctx = context.WithValue(ctx, reqIDKey, id)
			w.Header().Set(RequestIDHeader, id)

			return handler(ctx, w, r.WithContext(ctx))
		}
		return h
	}
	return m
}

func ContextRequestID(ctx context.Context) string {
	id, _ := ctx.Value(reqIDKey).(string)
	return id
}
