package middleware

import (
	"context"
	"net/http"

	"github.com/irsalhamdi/course-studio/api/web"
	"github.com/irsalhamdi/course-studio/api/weberr"
	"github.com/sirupsen/logrus"
)

func Errors(log logrus.FieldLogger) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

			err := handler(ctx, w, r)
			if err == nil {
				return nil
			}

			fields := logrus.Fields{
				"req_id":  ContextRequestID(ctx),
				"message": err,
			}
			if f, ok := weberr.Fields(err); ok {
				for k, v := range f {
					fields[k] = v
				}
			}

			if body, code, ok := weberr.Response(err); ok {
				if code < http.StatusInternalServerError {
					log.WithFields(fields).Warn("REQUEST")
				} else {
					log.WithFields(fields).Error("ERROR")
				}
				return web.Respond(ctx, w, body, code)
			}

			log.WithFields(fields).Error("ERROR")

			er := weberr.ErrorResponse{
				Error: http.StatusText(http.StatusInternalServerError),
			}
			return web.Respond(ctx, w, er, http.StatusInternalServerError)
		}
		return h
	}
	return m
}
