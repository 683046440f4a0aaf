// Package client talks to the remote content and commerce API on behalf of
// a logged in user.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/irsalhamdi/course-studio/core/course"
	"github.com/irsalhamdi/course-studio/core/lesson"
	"github.com/irsalhamdi/course-studio/core/module"
	"golang.org/x/oauth2"
)

var (
	ErrNotFound     = errors.New("resource not found on the backend")
	ErrUnauthorized = errors.New("backend rejected the credentials")
)

type Config struct {
	BaseURL string
	Timeout time.Duration
}

// StatusError is returned for any non 2xx answer of the backend.
type StatusError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Status, e.Body)
}

func (e *StatusError) Unwrap() error {
	switch e.Status {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	}
	return nil
}

type User struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

type Client struct {
	rc *resty.Client
}

// New builds a client whose requests carry tokens from ts. A nil ts sends
// anonymous requests.
func New(cfg Config, ts oauth2.TokenSource) *Client {
	hc := &http.Client{}
	if ts != nil {
		hc = oauth2.NewClient(context.Background(), ts)
	}

	rc := resty.NewWithClient(hc).
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")

	return &Client{rc: rc}
}

// ForToken builds a client acting with the given bearer token.
func ForToken(cfg Config, token string) *Client {
	return New(cfg, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}))
}

func (c *Client) do(ctx context.Context, method, path string, params map[string]string, body, result interface{}) error {
	req := c.rc.R().
		SetContext(ctx).
		SetPathParams(params)

	if body != nil {
		req.SetBody(body)
	}
	if result != nil {
		req.SetResult(result)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}

	if resp.IsError() {
		return &StatusError{
			Method: method,
			Path:   resp.Request.URL,
			Status: resp.StatusCode(),
			Body:   resp.String(),
		}
	}
	return nil
}

func id(v int) map[string]string {
	return map[string]string{"id": strconv.Itoa(v)}
}

func (c *Client) CurrentUser(ctx context.Context) (User, error) {
	var u User
	if err := c.do(ctx, http.MethodGet, "/users/me", nil, nil, &u); err != nil {
		return User{}, fmt.Errorf("fetching current user: %w", err)
	}
	return u, nil
}

func (c *Client) FetchCourse(ctx context.Context, courseID int) (course.Course, error) {
	var crs course.Course
	if err := c.do(ctx, http.MethodGet, "/courses/{id}", id(courseID), nil, &crs); err != nil {
		return course.Course{}, fmt.Errorf("fetching course[%d]: %w", courseID, err)
	}
	return crs, nil
}

func (c *Client) FetchCourseModules(ctx context.Context, courseID int) ([]module.Module, error) {
	ms := []module.Module{}
	if err := c.do(ctx, http.MethodGet, "/courses/{id}/modules", id(courseID), nil, &ms); err != nil {
		return nil, fmt.Errorf("fetching modules of course[%d]: %w", courseID, err)
	}
	return ms, nil
}

func (c *Client) CreateCourse(ctx context.Context, nc course.CourseNew) (course.Course, error) {
	var crs course.Course
	if err := c.do(ctx, http.MethodPost, "/courses", nil, nc, &crs); err != nil {
		return course.Course{}, fmt.Errorf("creating course: %w", err)
	}
	return crs, nil
}

func (c *Client) UpdateCourse(ctx context.Context, courseID int, up course.CourseUp) error {
	if err := c.do(ctx, http.MethodPut, "/courses/{id}", id(courseID), up, nil); err != nil {
		return fmt.Errorf("updating course[%d]: %w", courseID, err)
	}
	return nil
}

// FetchCatalog lists the reusable modules owned by a teacher.
func (c *Client) FetchCatalog(ctx context.Context, teacherID int) ([]module.Module, error) {
	ms := []module.Module{}
	if err := c.do(ctx, http.MethodGet, "/teachers/{id}/modules", id(teacherID), nil, &ms); err != nil {
		return nil, fmt.Errorf("fetching module catalog of teacher[%d]: %w", teacherID, err)
	}
	return ms, nil
}

func (c *Client) CreateModule(ctx context.Context, nm module.ModuleNew) (module.Module, error) {
	var m module.Module
	if err := c.do(ctx, http.MethodPost, "/modules", nil, nm, &m); err != nil {
		return module.Module{}, fmt.Errorf("creating module: %w", err)
	}
	return m, nil
}

func (c *Client) UpdateModule(ctx context.Context, moduleID int, up module.ModuleUp) error {
	if err := c.do(ctx, http.MethodPut, "/modules/{id}", id(moduleID), up, nil); err != nil {
		return fmt.Errorf("updating module[%d]: %w", moduleID, err)
	}
	return nil
}

func (c *Client) AttachModule(ctx context.Context, courseID int, at module.Attach) error {
	if err := c.do(ctx, http.MethodPost, "/courses/{id}/modules", id(courseID), at, nil); err != nil {
		return fmt.Errorf("attaching module[%d] to course[%d]: %w", at.ModuleID, courseID, err)
	}
	return nil
}

func (c *Client) CreateLesson(ctx context.Context, nl lesson.LessonNew) (lesson.Lesson, error) {
	var l lesson.Lesson
	if err := c.do(ctx, http.MethodPost, "/lessons", nil, nl, &l); err != nil {
		return lesson.Lesson{}, fmt.Errorf("creating lesson in module[%d]: %w", nl.ModuleID, err)
	}
	return l, nil
}

func (c *Client) UpdateLesson(ctx context.Context, lessonID int, up lesson.LessonUp) error {
	if err := c.do(ctx, http.MethodPut, "/lessons/{id}", id(lessonID), up, nil); err != nil {
		return fmt.Errorf("updating lesson[%d]: %w", lessonID, err)
	}
	return nil
}
