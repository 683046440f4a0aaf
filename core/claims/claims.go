package claims

import (
	"context"
	"errors"
)

const (
	RoleTeacher = "TEACHER"
	RoleStudent = "STUDENT"
)

// Claims identify the acting user. Token is the backend bearer token the
// user logged in with; every remote call made on their behalf carries it.
type Claims struct {
	UserID int
	Role   string
	Token  string
}

type ctxKey int

const claimsKey ctxKey = 1

func Set(ctx context.Context, claims Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

func Get(ctx context.Context) (Claims, error) {
	v, ok := ctx.Value(claimsKey).(Claims)
	if !ok {
		return Claims{}, errors.New("claim value missing from context")
	}
	return v, nil
}

func IsTeacher(ctx context.Context) bool {
	c, err := Get(ctx)
	if err != nil {
		return false
	}

	return c.Role == RoleTeacher
}
