package weberr

import (
	"net/http"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type RequestError struct {
	Err error
}

func (r *RequestError) Error() string { return r.Err.Error() }

func (e *RequestError) Unwrap() error { return e.Err }

func NewError(err error, msg string, status int, opts ...Opt) error {
	e := &RequestError{Err: err}
	opts = append(opts, WithResponse(
		&ErrorResponse{msg},
		status,
	))

	return Wrap(e, opts...)
}

func NotFound(err error, opts ...Opt) error {
	return NewError(
		err,
		"the resource could not be found",
		http.StatusNotFound,
		opts...,
	)
}

func NotAuthorized(err error, opts ...Opt) error {
	return NewError(
		err,
		"not authorized to access resource",
		http.StatusUnauthorized,
		opts...,
	)
}

func Forbidden(err error, opts ...Opt) error {
	return NewError(
		err,
		"only teachers can author courses",
		http.StatusForbidden,
		opts...,
	)
}

func InternalError(err error, opts ...Opt) error {
	return NewError(
		err,
		"the server encountered a problem and could not process your request",
		http.StatusInternalServerError,
		opts...,
	)
}

// BadRequest answers with err's own message, which must be fit for clients.
func BadRequest(err error, opts ...Opt) error {
	return NewError(
		err,
		err.Error(),
		http.StatusBadRequest,
		opts...,
	)
}

func TooManyRequests(err error, opts ...Opt) error {
	return NewError(
		err,
		"a submission was just made, please wait before submitting again",
		http.StatusTooManyRequests,
		opts...,
	)
}

// BadGateway hides a backend failure behind a message inviting to retry.
func BadGateway(err error, msg string, opts ...Opt) error {
	return NewError(
		err,
		msg,
		http.StatusBadGateway,
		opts...,
	)
}
