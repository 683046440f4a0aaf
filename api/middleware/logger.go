package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/irsalhamdi/course-studio/api/web"
	"github.com/sirupsen/logrus"
	"github.com/zenazn/goji/web/mutil"
)

// Logger logs every request once it completes. Wizard paths carry draft
// keys, so requests are grouped by route template.
func Logger(log logrus.FieldLogger) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			route := r.URL.Path
			if cr := mux.CurrentRoute(r); cr != nil {
				if tpl, err := cr.GetPathTemplate(); err == nil {
					route = tpl
				}
			}

			log := log.WithFields(logrus.Fields{
				"req_id":     ContextRequestID(ctx),
				"method":     r.Method,
				"route":      route,
				"path":       r.URL.Path,
				"remoteaddr": r.RemoteAddr,
			})
			log.Debug("started")

			start := time.Now()
			lw := mutil.WrapWriter(w)
			err := handler(ctx, lw, r)

			log = log.WithFields(logrus.Fields{
				"statuscode": lw.Status(),
				"bytes":      lw.BytesWritten(),
				"since":      time.Since(start).String(),
			})
			if lw.Status() >= http.StatusInternalServerError {
				log.Warn("completed")
			} else {
				log.Info("completed")
			}
			return err
		}
		return h
	}
	return m
}
