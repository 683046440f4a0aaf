// Package weberr attaches an HTTP answer and log fields to errors, so
// handlers can return plain errors and leave the response to middleware.
package weberr

import "errors"

type Opt func(error) error

func Wrap(err error, opts ...Opt) error {
	for _, opt := range opts {
		err = opt(err)
	}
	return err
}

type responseError struct {
	error
	body   interface{}
	status int
}

func (e *responseError) Unwrap() error { return e.error }

func WithResponse(body interface{}, status int) Opt {
	return func(err error) error {
		return &responseError{error: err, body: body, status: status}
	}
}

// Response returns the outermost answer attached to err.
func Response(err error) (body interface{}, status int, ok bool) {
	var re *responseError
	if errors.As(err, &re) {
		return re.body, re.status, true
	}
	return nil, 0, false
}

type fieldsError struct {
	error
	fields map[string]interface{}
}

func (e *fieldsError) Unwrap() error { return e.error }

func WithFields(fields map[string]interface{}) Opt {
	return func(err error) error {
		return &fieldsError{error: err, fields: fields}
	}
}

// Fields merges the fields attached anywhere in the chain of err. Outer
// fields win over inner ones with the same name.
func Fields(err error) (map[string]interface{}, bool) {
	var merged map[string]interface{}
	for e := err; e != nil; e = errors.Unwrap(e) {
		fe, ok := e.(*fieldsError)
		if !ok {
			continue
		}
		if merged == nil {
			merged = make(map[string]interface{}, len(fe.fields))
		}
		for k, v := range fe.fields {
			if _, set := merged[k]; !set {
				merged[k] = v
			}
		}
	}
	return merged, merged != nil
}
