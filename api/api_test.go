package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/gorilla/mux"
	"github.com/irsalhamdi/course-studio/api"
	"github.com/irsalhamdi/course-studio/client"
	"github.com/irsalhamdi/course-studio/core/course"
	"github.com/irsalhamdi/course-studio/core/lesson"
	"github.com/irsalhamdi/course-studio/core/module"
	"github.com/irsalhamdi/course-studio/core/wizard"
	"github.com/irsalhamdi/course-studio/rate"
	"github.com/sirupsen/logrus"
)

// backend fakes the remote API: two users, one catalog module and one
// course, with a log of every write it receives. Every write takes the next
// id, whether or not it creates something.
type backend struct {
	mu     sync.Mutex
	writes []string
	nextID int
}

func (b *backend) write(format string, args ...interface{}) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.writes = append(b.writes, fmt.Sprintf(format, args...))
	b.nextID++
	return 100 + b.nextID
}

func (b *backend) log() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return append([]string(nil), b.writes...)
}

func respond(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

func (b *backend) router() *mux.Router {
	users := map[string]client.User{
		"Bearer teacher-token": {ID: 3, Name: "Ada", Role: "TEACHER"},
		"Bearer student-token": {ID: 4, Name: "Bob", Role: "STUDENT"},
	}

	r := mux.NewRouter()

	r.HandleFunc("/users/me", func(w http.ResponseWriter, r *http.Request) {
		u, ok := users[r.Header.Get("Authorization")]
		if !ok {
			respond(w, nil, http.StatusUnauthorized)
			return
		}
		respond(w, u, http.StatusOK)
	}).Methods(http.MethodGet)

	r.HandleFunc("/teachers/3/modules", func(w http.ResponseWriter, r *http.Request) {
		respond(w, []module.Module{{ID: 5, TeacherID: 3, Title: "Shared basics", Lessons: []lesson.Lesson{
			{ID: 51, ModuleID: 5, Title: "Welcome", Type: lesson.Text, Content: lesson.Content{Text: "hi"}, Order: 1},
		}}}, http.StatusOK)
	}).Methods(http.MethodGet)

	r.HandleFunc("/courses/{id}", func(w http.ResponseWriter, r *http.Request) {
		switch mux.Vars(r)["id"] {
		case "7":
			respond(w, course.Course{ID: 7, TeacherID: 3, Title: "Mine"}, http.StatusOK)
		case "8":
			respond(w, course.Course{ID: 8, TeacherID: 9, Title: "Someone else's"}, http.StatusOK)
		default:
			respond(w, nil, http.StatusNotFound)
		}
	}).Methods(http.MethodGet)

	r.HandleFunc("/courses/{id}/modules", func(w http.ResponseWriter, r *http.Request) {
		respond(w, []module.Module{{ID: 70, TeacherID: 3, Title: "Own module", Order: 1, Lessons: []lesson.Lesson{}}}, http.StatusOK)
	}).Methods(http.MethodGet)

	r.HandleFunc("/courses", func(w http.ResponseWriter, r *http.Request) {
		var nc course.CourseNew
		_ = json.NewDecoder(r.Body).Decode(&nc)
		id := b.write("create course %s by %d", nc.Title, nc.TeacherID)
		respond(w, course.Course{ID: id, TeacherID: nc.TeacherID, Title: nc.Title}, http.StatusCreated)
	}).Methods(http.MethodPost)

	r.HandleFunc("/courses/{id}/modules", func(w http.ResponseWriter, r *http.Request) {
		var at module.Attach
		_ = json.NewDecoder(r.Body).Decode(&at)
		b.write("attach %d to %s at %d", at.ModuleID, mux.Vars(r)["id"], at.Order)
		respond(w, nil, http.StatusNoContent)
	}).Methods(http.MethodPost)

	r.HandleFunc("/modules", func(w http.ResponseWriter, r *http.Request) {
		var nm module.ModuleNew
		_ = json.NewDecoder(r.Body).Decode(&nm)
		id := b.write("create module %s", nm.Title)
		respond(w, module.Module{ID: id, TeacherID: nm.TeacherID, Title: nm.Title}, http.StatusCreated)
	}).Methods(http.MethodPost)

	r.HandleFunc("/lessons", func(w http.ResponseWriter, r *http.Request) {
		var nl lesson.LessonNew
		_ = json.NewDecoder(r.Body).Decode(&nl)
		if nl.Title == "explode" {
			respond(w, nil, http.StatusInternalServerError)
			return
		}
		id := b.write("create lesson %s in %d at %d", nl.Title, nl.ModuleID, nl.Order)
		respond(w, lesson.Lesson{ID: id, ModuleID: nl.ModuleID, Title: nl.Title}, http.StatusCreated)
	}).Methods(http.MethodPost)

	return r
}

type session struct {
	t   *testing.T
	url string
	c   *http.Client
}

func newStudio(t *testing.T) (*backend, *session) {
	t.Helper()

	b := &backend{}
	bsrv := httptest.NewServer(b.router())
	t.Cleanup(bsrv.Close)

	log := logrus.New()
	log.SetOutput(io.Discard)

	lim := rate.NewLimiter(1, time.Minute, rate.Every(time.Hour))
	t.Cleanup(lim.Stop)

	h := api.APIMux(api.APIConfig{
		Log:     log,
		Session: scs.New(),
		Backend: client.Config{BaseURL: bsrv.URL, Timeout: 5 * time.Second},
		Limiter: lim,
	})

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}

	return b, &session{t: t, url: srv.URL, c: &http.Client{Jar: jar}}
}

// do sends body as JSON, checks the status and decodes the answer into out.
func (s *session) do(method, path string, body, out interface{}, status int) {
	s.t.Helper()

	var rd io.Reader
	if body != nil {
		bs, err := json.Marshal(body)
		if err != nil {
			s.t.Fatal(err)
		}
		rd = bytes.NewReader(bs)
	}

	req, err := http.NewRequest(method, s.url+path, rd)
	if err != nil {
		s.t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.c.Do(req)
	if err != nil {
		s.t.Fatal(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		s.t.Fatal(err)
	}

	if resp.StatusCode != status {
		s.t.Fatalf("%s %s: expected status %d, got %d: %s", method, path, status, resp.StatusCode, raw)
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			s.t.Fatalf("%s %s: decoding %s: %v", method, path, raw, err)
		}
	}
}

func (s *session) login(token string, status int) {
	s.t.Helper()
	s.do(http.MethodPost, "/auth/login", map[string]string{"token": token}, nil, status)
}

func (s *session) basics(title string) {
	s.t.Helper()

	desc := title + " description"
	s.do(http.MethodPatch, "/wizard", course.CourseUp{Title: &title, Description: &desc}, nil, http.StatusOK)
}

func TestCreateCourse(t *testing.T) {
	b, s := newStudio(t)
	s.login("teacher-token", http.StatusOK)

	s.do(http.MethodPost, "/wizard", nil, nil, http.StatusCreated)
	s.basics("Go in practice")

	var k wizard.Keyed
	s.do(http.MethodPost, "/wizard/modules", module.ModuleNew{Title: "M1"}, &k, http.StatusCreated)
	if !strings.HasPrefix(k.Key, "new-") {
		t.Fatalf("unexpected module key %q", k.Key)
	}

	for _, title := range []string{"L1", "L2"} {
		nl := lesson.LessonNew{Title: title, Type: lesson.Text, Content: lesson.Content{Text: title}}
		s.do(http.MethodPost, "/wizard/modules/"+k.Key+"/lessons", nl, nil, http.StatusCreated)
	}

	s.do(http.MethodPut, "/wizard/catalog/5", nil, nil, http.StatusOK)

	var d wizard.Data
	s.do(http.MethodPost, "/wizard/modules/move", wizard.Move{From: 1, To: 0}, &d, http.StatusOK)
	if d.Order[0].Key != "existing-5" {
		t.Fatalf("expected the catalog module first, got %+v", d.Order)
	}

	var views []wizard.View
	s.do(http.MethodGet, "/wizard/view", nil, &views, http.StatusOK)
	if len(views) != 2 || views[0].Title != "Shared basics" || len(views[1].Lessons) != 2 {
		t.Fatalf("unexpected views %+v", views)
	}

	var p wizard.Plan
	s.do(http.MethodGet, "/wizard/plan", nil, &p, http.StatusOK)
	if diff := cmp.Diff([]module.Attach{{ModuleID: 5, Order: 1}}, p.Attach); diff != "" {
		t.Fatalf("unexpected attachments (-want +got):\n%s", diff)
	}

	var sub wizard.Submitted
	s.do(http.MethodPost, "/wizard/submit", nil, &sub, http.StatusOK)
	if sub.CourseID != 101 {
		t.Fatalf("expected course 101, got %d", sub.CourseID)
	}

	want := []string{
		"create course Go in practice by 3",
		"attach 5 to 101 at 1",
		"create module M1",
		"attach 103 to 101 at 2",
		"create lesson L1 in 103 at 1",
		"create lesson L2 in 103 at 2",
	}
	if diff := cmp.Diff(want, b.log()); diff != "" {
		t.Fatalf("unexpected backend writes (-want +got):\n%s", diff)
	}

	s.do(http.MethodGet, "/wizard", nil, nil, http.StatusNotFound)

	s.do(http.MethodPost, "/wizard", nil, nil, http.StatusCreated)
	s.basics("Another")
	s.do(http.MethodPost, "/wizard/submit", nil, nil, http.StatusTooManyRequests)
}

func TestSubmitFailureKeepsWizard(t *testing.T) {
	b, s := newStudio(t)
	s.login("teacher-token", http.StatusOK)

	s.do(http.MethodPost, "/wizard", nil, nil, http.StatusCreated)
	s.basics("Fragile")

	var k wizard.Keyed
	s.do(http.MethodPost, "/wizard/modules", module.ModuleNew{Title: "M1"}, &k, http.StatusCreated)
	nl := lesson.LessonNew{Title: "explode", Type: lesson.Text, Content: lesson.Content{Text: "boom"}}
	s.do(http.MethodPost, "/wizard/modules/"+k.Key+"/lessons", nl, nil, http.StatusCreated)

	var er struct {
		Error string `json:"error"`
	}
	s.do(http.MethodPost, "/wizard/submit", nil, &er, http.StatusBadGateway)
	if !strings.Contains(er.Error, "submit again") {
		t.Fatalf("unexpected error message %q", er.Error)
	}

	var d wizard.Data
	s.do(http.MethodGet, "/wizard", nil, &d, http.StatusOK)
	if d.CourseID != 101 {
		t.Fatalf("the created course must be kept for a retry, got course %d", d.CourseID)
	}
	if len(b.log()) != 3 {
		t.Fatalf("expected 3 writes before the failure, got %v", b.log())
	}
}

func TestEditCourse(t *testing.T) {
	_, s := newStudio(t)
	s.login("teacher-token", http.StatusOK)

	var d wizard.Data
	s.do(http.MethodPost, "/wizard/courses/7", nil, &d, http.StatusCreated)
	if d.CourseID != 7 || len(d.Order) != 1 || d.Order[0].Key != "course-70" {
		t.Fatalf("unexpected wizard %+v", d)
	}

	s.do(http.MethodPost, "/wizard/courses/8", nil, nil, http.StatusForbidden)
	s.do(http.MethodPost, "/wizard/courses/9", nil, nil, http.StatusNotFound)
	s.do(http.MethodPost, "/wizard/courses/x", nil, nil, http.StatusBadRequest)
}

func TestWizardErrors(t *testing.T) {
	_, s := newStudio(t)
	s.login("teacher-token", http.StatusOK)

	s.do(http.MethodGet, "/wizard", nil, nil, http.StatusNotFound)
	s.do(http.MethodPost, "/wizard", nil, nil, http.StatusCreated)

	s.do(http.MethodPost, "/wizard/modules/move", wizard.Move{From: 0, To: 1}, nil, http.StatusBadRequest)
	s.do(http.MethodDelete, "/wizard/modules/new-missing", nil, nil, http.StatusNotFound)
	s.do(http.MethodPost, "/wizard/modules", module.ModuleNew{}, nil, http.StatusBadRequest)
	s.do(http.MethodPut, "/wizard/catalog/0", nil, nil, http.StatusBadRequest)

	// A submission without basics never reaches the backend.
	s.do(http.MethodPost, "/wizard/submit", nil, nil, http.StatusBadRequest)
}

func TestAccess(t *testing.T) {
	_, s := newStudio(t)

	s.do(http.MethodPost, "/wizard", nil, nil, http.StatusUnauthorized)

	s.login("bogus-token", http.StatusUnauthorized)

	s.login("student-token", http.StatusOK)
	s.do(http.MethodPost, "/wizard", nil, nil, http.StatusForbidden)

	s.do(http.MethodPost, "/auth/logout", nil, nil, http.StatusNoContent)
	s.do(http.MethodGet, "/wizard", nil, nil, http.StatusUnauthorized)

	s.login("teacher-token", http.StatusOK)
	s.do(http.MethodPost, "/wizard", nil, nil, http.StatusCreated)
}

func TestRequestID(t *testing.T) {
	_, s := newStudio(t)

	resp, err := s.c.Get(s.url + "/wizard")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", resp.StatusCode)
	}
	if resp.Header.Get("X-Request-Id") == "" {
		t.Fatal("expected a request id header on errors too")
	}
}
