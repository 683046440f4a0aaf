package wizard

import (
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/alexedwards/scs/v2"
	"github.com/irsalhamdi/course-studio/api/middleware"
	"github.com/irsalhamdi/course-studio/api/web"
	"github.com/irsalhamdi/course-studio/api/weberr"
	"github.com/irsalhamdi/course-studio/client"
	"github.com/irsalhamdi/course-studio/core/claims"
	"github.com/irsalhamdi/course-studio/core/course"
	"github.com/irsalhamdi/course-studio/core/lesson"
	"github.com/irsalhamdi/course-studio/core/module"
	"github.com/irsalhamdi/course-studio/rate"
	"github.com/irsalhamdi/course-studio/validate"
	"github.com/sirupsen/logrus"
)

// Backend is everything the wizard needs from the remote API.
type Backend interface {
	Courses
	Modules
	Lessons
	FetchCourse(ctx context.Context, courseID int) (course.Course, error)
	FetchCourseModules(ctx context.Context, courseID int) ([]module.Module, error)
	FetchCatalog(ctx context.Context, teacherID int) ([]module.Module, error)
}

// Dialer returns a Backend acting with the given user token.
type Dialer func(token string) Backend

const dataKey = "wizard"

const submitFailed = "the course could not be saved, please submit again"

func init() {
	gob.Register(Data{})
}

type Move struct {
	From int `json:"from" validate:"gte=0"`
	To   int `json:"to" validate:"gte=0"`
}

// Keyed answers operations that create an element.
type Keyed struct {
	Key    string `json:"key"`
	Wizard Data   `json:"wizard"`
}

type Submitted struct {
	CourseID int `json:"course_id"`
}

func load(ctx context.Context, session *scs.SessionManager) (Data, error) {
	d, ok := session.Get(ctx, dataKey).(Data)
	if !ok {
		return Data{}, weberr.NotFound(errors.New("no wizard in session"))
	}
	// The session codec decodes empty slices as nil; cloning restores them.
	return d.clone(), nil
}

func webErr(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return weberr.NotFound(err)
	case errors.Is(err, ErrIndex):
		return weberr.BadRequest(err)
	}
	return err
}

func backendErr(err error, msg string) error {
	if errors.Is(err, client.ErrNotFound) {
		return weberr.NotFound(err)
	}
	return weberr.BadGateway(err, msg)
}

// mutation is a Data transformation driven by a request. It returns the new
// state and the response body; a nil body answers with the new state.
type mutation func(w http.ResponseWriter, r *http.Request, d Data) (Data, interface{}, error)

func mutate(session *scs.SessionManager, status int, fn mutation) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		d, err := load(ctx, session)
		if err != nil {
			return err
		}

		nd, body, err := fn(w, r, d)
		if err != nil {
			return webErr(err)
		}

		session.Put(ctx, dataKey, nd)

		if body == nil {
			body = nd
		}
		return web.Respond(ctx, w, body, status)
	}
}

// HandleStart opens an empty wizard for a new course, replacing any wizard
// in progress.
func HandleStart(session *scs.SessionManager) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		d := New()
		session.Put(ctx, dataKey, d)
		return web.Respond(ctx, w, d, http.StatusCreated)
	}
}

// HandleEdit opens a wizard over one of the teacher's courses.
func HandleEdit(session *scs.SessionManager, dial Dialer) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		courseID, err := web.ParamInt(r, "course_id")
		if err != nil {
			return weberr.BadRequest(err)
		}

		bk := dial(clm.Token)

		crs, err := bk.FetchCourse(ctx, courseID)
		if err != nil {
			return backendErr(err, "the course could not be loaded")
		}

		if crs.TeacherID != clm.UserID {
			return weberr.Forbidden(fmt.Errorf("course[%d] belongs to teacher[%d], not [%d]", courseID, crs.TeacherID, clm.UserID))
		}

		modules, err := bk.FetchCourseModules(ctx, courseID)
		if err != nil {
			return backendErr(err, "the course modules could not be loaded")
		}

		d := Hydrate(crs, modules)
		session.Put(ctx, dataKey, d)

		return web.Respond(ctx, w, d, http.StatusCreated)
	}
}

func HandleShow(session *scs.SessionManager) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		d, err := load(ctx, session)
		if err != nil {
			return err
		}
		return web.Respond(ctx, w, d, http.StatusOK)
	}
}

func HandleUpdate(session *scs.SessionManager) web.Handler {
	return mutate(session, http.StatusOK, func(w http.ResponseWriter, r *http.Request, d Data) (Data, interface{}, error) {
		var up course.CourseUp
		if err := web.Decode(w, r, &up); err != nil {
			return d, nil, weberr.BadRequest(err)
		}
		if err := validate.Check(up); err != nil {
			return d, nil, weberr.BadRequest(err)
		}
		return d.Update(up), nil, nil
	})
}

// HandleView renders the module sequence against the teacher's catalog.
func HandleView(session *scs.SessionManager, dial Dialer) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		d, err := load(ctx, session)
		if err != nil {
			return err
		}

		catalog := []module.Module{}
		if len(d.Selected) > 0 {
			catalog, err = dial(clm.Token).FetchCatalog(ctx, clm.UserID)
			if err != nil {
				return weberr.BadGateway(err, "the module catalog could not be loaded")
			}
		}

		return web.Respond(ctx, w, Build(d, catalog), http.StatusOK)
	}
}

func HandlePlan(session *scs.SessionManager) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		d, err := load(ctx, session)
		if err != nil {
			return err
		}

		p, err := Project(d)
		if err != nil {
			return weberr.InternalError(err)
		}
		return web.Respond(ctx, w, p, http.StatusOK)
	}
}

func HandleSelect(session *scs.SessionManager) web.Handler {
	return mutate(session, http.StatusOK, func(w http.ResponseWriter, r *http.Request, d Data) (Data, interface{}, error) {
		id, err := web.ParamInt(r, "module_id")
		if err != nil {
			return d, nil, weberr.BadRequest(err)
		}
		nd, err := d.SelectModule(id)
		return nd, nil, err
	})
}

func HandleDeselect(session *scs.SessionManager) web.Handler {
	return mutate(session, http.StatusOK, func(w http.ResponseWriter, r *http.Request, d Data) (Data, interface{}, error) {
		id, err := web.ParamInt(r, "module_id")
		if err != nil {
			return d, nil, weberr.BadRequest(err)
		}
		nd, err := d.DeselectModule(id)
		return nd, nil, err
	})
}

func HandleAddModule(session *scs.SessionManager) web.Handler {
	return mutate(session, http.StatusCreated, func(w http.ResponseWriter, r *http.Request, d Data) (Data, interface{}, error) {
		var nm module.ModuleNew
		if err := web.Decode(w, r, &nm); err != nil {
			return d, nil, weberr.BadRequest(err)
		}
		if err := validate.Check(nm); err != nil {
			return d, nil, weberr.BadRequest(err)
		}
		nd, key := d.AddModule(nm)
		return nd, Keyed{Key: key, Wizard: nd}, nil
	})
}

func HandleEditModule(session *scs.SessionManager) web.Handler {
	return mutate(session, http.StatusOK, func(w http.ResponseWriter, r *http.Request, d Data) (Data, interface{}, error) {
		var up module.ModuleUp
		if err := web.Decode(w, r, &up); err != nil {
			return d, nil, weberr.BadRequest(err)
		}
		if up.Title != nil && *up.Title == "" {
			return d, nil, weberr.BadRequest(errors.New("title cannot be empty"))
		}
		nd, err := d.EditModule(web.Param(r, "key"), up)
		return nd, nil, err
	})
}

func HandleRemoveModule(session *scs.SessionManager) web.Handler {
	return mutate(session, http.StatusOK, func(w http.ResponseWriter, r *http.Request, d Data) (Data, interface{}, error) {
		nd, err := d.RemoveModule(web.Param(r, "key"))
		return nd, nil, err
	})
}

func HandleMoveModule(session *scs.SessionManager) web.Handler {
	return mutate(session, http.StatusOK, func(w http.ResponseWriter, r *http.Request, d Data) (Data, interface{}, error) {
		var mv Move
		if err := web.Decode(w, r, &mv); err != nil {
			return d, nil, weberr.BadRequest(err)
		}
		if err := validate.Check(mv); err != nil {
			return d, nil, weberr.BadRequest(err)
		}
		nd, err := d.MoveModule(mv.From, mv.To)
		return nd, nil, err
	})
}

func HandleAddLesson(session *scs.SessionManager) web.Handler {
	return mutate(session, http.StatusCreated, func(w http.ResponseWriter, r *http.Request, d Data) (Data, interface{}, error) {
		var nl lesson.LessonNew
		if err := web.Decode(w, r, &nl); err != nil {
			return d, nil, weberr.BadRequest(err)
		}
		if err := validate.CheckLesson(nl); err != nil {
			return d, nil, weberr.BadRequest(err)
		}
		nd, key, err := d.AddLesson(web.Param(r, "key"), nl)
		if err != nil {
			return d, nil, err
		}
		return nd, Keyed{Key: key, Wizard: nd}, nil
	})
}

func HandleEditLesson(session *scs.SessionManager) web.Handler {
	return mutate(session, http.StatusOK, func(w http.ResponseWriter, r *http.Request, d Data) (Data, interface{}, error) {
		var up lesson.LessonUp
		if err := web.Decode(w, r, &up); err != nil {
			return d, nil, weberr.BadRequest(err)
		}
		if err := validate.Check(up); err != nil {
			return d, nil, weberr.BadRequest(err)
		}

		moduleKey, lessonKey := web.Param(r, "key"), web.Param(r, "lesson_key")
		nd, err := d.EditLesson(moduleKey, lessonKey, up)
		if err != nil {
			return d, nil, err
		}

		i, j, err := nd.lessonIndex(moduleKey, lessonKey)
		if err != nil {
			return d, nil, err
		}
		l := nd.Drafts[i].Lessons[j]
		if err := validate.CheckLesson(lesson.LessonNew{Title: l.Title, Type: l.Type, Content: l.Content}); err != nil {
			return d, nil, weberr.BadRequest(err)
		}
		return nd, nil, nil
	})
}

func HandleRemoveLesson(session *scs.SessionManager) web.Handler {
	return mutate(session, http.StatusOK, func(w http.ResponseWriter, r *http.Request, d Data) (Data, interface{}, error) {
		nd, err := d.RemoveLesson(web.Param(r, "key"), web.Param(r, "lesson_key"))
		return nd, nil, err
	})
}

func HandleMoveLesson(session *scs.SessionManager) web.Handler {
	return mutate(session, http.StatusOK, func(w http.ResponseWriter, r *http.Request, d Data) (Data, interface{}, error) {
		var mv Move
		if err := web.Decode(w, r, &mv); err != nil {
			return d, nil, weberr.BadRequest(err)
		}
		if err := validate.Check(mv); err != nil {
			return d, nil, weberr.BadRequest(err)
		}
		nd, err := d.MoveLesson(web.Param(r, "key"), mv.From, mv.To)
		return nd, nil, err
	})
}

// HandleSubmit persists the wizard and discards it. Any backend failure is
// reported with one generic message; the wizard stays in the session so the
// whole submission can be retried.
func HandleSubmit(session *scs.SessionManager, dial Dialer, lim *rate.Limiter, log logrus.FieldLogger) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		d, err := load(ctx, session)
		if err != nil {
			return err
		}

		if err := validate.Check(newCourse(clm.UserID, d)); err != nil {
			return weberr.BadRequest(err)
		}

		if !lim.Check(strconv.Itoa(clm.UserID)) {
			return weberr.TooManyRequests(fmt.Errorf("teacher[%d] submitted too often", clm.UserID))
		}

		bk := dial(clm.Token)
		sub := Submitter{
			Courses: bk,
			Modules: bk,
			Lessons: bk,
			Log:     log.WithField("req_id", middleware.ContextRequestID(ctx)),
		}

		courseID, err := sub.Submit(ctx, clm.UserID, d)
		switch {
		case errors.Is(err, ErrNoTeacher):
			return weberr.NotAuthorized(err)
		case errors.Is(err, ErrInconsistent):
			return weberr.InternalError(err)
		case err != nil:
			// A course created before the failure is updated, not created again, on retry.
			if d.CourseID == 0 && courseID != 0 {
				d.CourseID = courseID
				session.Put(ctx, dataKey, d)
			}

			var se *SubmitError
			step := ""
			if errors.As(err, &se) {
				step = se.Step
			}
			return weberr.BadGateway(err, submitFailed, weberr.WithFields(map[string]interface{}{
				"course_id": courseID,
				"step":      step,
			}))
		}

		session.Remove(ctx, dataKey)

		return web.Respond(ctx, w, Submitted{CourseID: courseID}, http.StatusOK)
	}
}
