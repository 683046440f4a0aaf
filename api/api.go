package api

import (
	"context"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/gorilla/mux"
	"github.com/irsalhamdi/course-studio/api/middleware"
	"github.com/irsalhamdi/course-studio/api/web"
	"github.com/irsalhamdi/course-studio/client"
	"github.com/irsalhamdi/course-studio/core/auth"
	"github.com/irsalhamdi/course-studio/core/wizard"
	"github.com/irsalhamdi/course-studio/rate"
	"github.com/sirupsen/logrus"
)

type APIConfig struct {
	CorsOrigin string
	Log        logrus.FieldLogger
	Session    *scs.SessionManager
	Backend    client.Config
	Limiter    *rate.Limiter

	// Dial overrides how the wizard reaches the backend. It defaults to a
	// client.Client built from Backend.
	Dial wizard.Dialer
}

type api struct {
	*mux.Router
	mw  []web.Middleware
	log logrus.FieldLogger
}

func APIMux(cfg APIConfig) http.Handler {
	a := &api{
		Router: mux.NewRouter(),
		log:    cfg.Log,
	}

	a.mw = append(a.mw, middleware.RequestID())
	a.mw = append(a.mw, middleware.Logger(cfg.Log))
	a.mw = append(a.mw, middleware.Errors(cfg.Log))
	a.mw = append(a.mw, middleware.Panics())

	if cfg.CorsOrigin != "" {
		a.mw = append(a.mw, middleware.Cors(cfg.CorsOrigin))

		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			w.WriteHeader(http.StatusNoContent)
			return nil
		}

		a.Handle(http.MethodOptions, "/{path:.*}", h)
	}

	dial := cfg.Dial
	if dial == nil {
		dial = func(token string) wizard.Backend {
			return client.ForToken(cfg.Backend, token)
		}
	}

	authen := auth.Authenticate(cfg.Session)
	teacher := auth.Teacher()
	sess := cfg.Session

	a.Handle(http.MethodPost, "/auth/login", auth.HandleLogin(sess, cfg.Backend))
	a.Handle(http.MethodPost, "/auth/logout", auth.HandleLogout(sess))

	a.Handle(http.MethodPost, "/wizard", wizard.HandleStart(sess), authen, teacher)
	a.Handle(http.MethodGet, "/wizard", wizard.HandleShow(sess), authen, teacher)
	a.Handle(http.MethodPatch, "/wizard", wizard.HandleUpdate(sess), authen, teacher)
	a.Handle(http.MethodPost, "/wizard/courses/{course_id}", wizard.HandleEdit(sess, dial), authen, teacher)
	a.Handle(http.MethodGet, "/wizard/view", wizard.HandleView(sess, dial), authen, teacher)
	a.Handle(http.MethodGet, "/wizard/plan", wizard.HandlePlan(sess), authen, teacher)
	a.Handle(http.MethodPost, "/wizard/submit", wizard.HandleSubmit(sess, dial, cfg.Limiter, cfg.Log), authen, teacher)

	a.Handle(http.MethodPut, "/wizard/catalog/{module_id}", wizard.HandleSelect(sess), authen, teacher)
	a.Handle(http.MethodDelete, "/wizard/catalog/{module_id}", wizard.HandleDeselect(sess), authen, teacher)

	a.Handle(http.MethodPost, "/wizard/modules", wizard.HandleAddModule(sess), authen, teacher)
	a.Handle(http.MethodPost, "/wizard/modules/move", wizard.HandleMoveModule(sess), authen, teacher)
	a.Handle(http.MethodPut, "/wizard/modules/{key}", wizard.HandleEditModule(sess), authen, teacher)
	a.Handle(http.MethodDelete, "/wizard/modules/{key}", wizard.HandleRemoveModule(sess), authen, teacher)

	a.Handle(http.MethodPost, "/wizard/modules/{key}/lessons", wizard.HandleAddLesson(sess), authen, teacher)
	a.Handle(http.MethodPost, "/wizard/modules/{key}/lessons/move", wizard.HandleMoveLesson(sess), authen, teacher)
	a.Handle(http.MethodPut, "/wizard/modules/{key}/lessons/{lesson_key}", wizard.HandleEditLesson(sess), authen, teacher)
	a.Handle(http.MethodDelete, "/wizard/modules/{key}/lessons/{lesson_key}", wizard.HandleRemoveLesson(sess), authen, teacher)

	return sess.LoadAndSave(a.Router)
}

func (a *api) Handle(method string, path string, handler web.Handler, mw ...web.Middleware) {

	handler = web.WrapMiddleware(mw, handler)

	handler = web.WrapMiddleware(a.mw, handler)

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		ctx := r.Context()

		if err := handler(ctx, w, r); err != nil {

			a.log.WithFields(logrus.Fields{
				"req_id":  middleware.ContextRequestID(ctx),
				"message": err,
			}).Error("ERROR")
		}
	})

	a.Router.Handle(path, h).Methods(method)
}
