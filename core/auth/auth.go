package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/irsalhamdi/course-studio/api/web"
	"github.com/irsalhamdi/course-studio/api/weberr"
	"github.com/irsalhamdi/course-studio/client"
	"github.com/irsalhamdi/course-studio/core/claims"
	"github.com/irsalhamdi/course-studio/validate"
)

const (
	userIDKey = "user_id"
	roleKey   = "role"
	tokenKey  = "token"
)

type Login struct {
	Token string `json:"token" validate:"required"`
}

// HandleLogin exchanges a backend token for a session. The backend is the
// authority on who the token belongs to.
func HandleLogin(session *scs.SessionManager, backend client.Config) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var in Login
		if err := web.Decode(w, r, &in); err != nil {
			return weberr.BadRequest(err)
		}

		if err := validate.Check(in); err != nil {
			return weberr.BadRequest(err)
		}

		u, err := client.ForToken(backend, in.Token).CurrentUser(ctx)
		switch {
		case errors.Is(err, client.ErrUnauthorized):
			return weberr.NotAuthorized(err)
		case err != nil:
			return weberr.BadGateway(err, "the authentication service is unavailable")
		}

		if u.ID <= 0 {
			return weberr.NotAuthorized(fmt.Errorf("backend resolved the token to user[%d]", u.ID))
		}

		if err := session.RenewToken(ctx); err != nil {
			return fmt.Errorf("renewing session token: %w", err)
		}

		session.Put(ctx, userIDKey, u.ID)
		session.Put(ctx, roleKey, u.Role)
		session.Put(ctx, tokenKey, in.Token)

		return web.Respond(ctx, w, u, http.StatusOK)
	}
}

func HandleLogout(session *scs.SessionManager) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		if err := session.Destroy(ctx); err != nil {
			return fmt.Errorf("destroying session: %w", err)
		}
		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}

// Authenticate puts the claims of the logged in user in the context.
func Authenticate(session *scs.SessionManager) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			id := session.GetInt(ctx, userIDKey)
			if id == 0 {
				return weberr.NotAuthorized(errors.New("no user in session"))
			}

			ctx = claims.Set(ctx, claims.Claims{
				UserID: id,
				Role:   session.GetString(ctx, roleKey),
				Token:  session.GetString(ctx, tokenKey),
			})

			return handler(ctx, w, r.WithContext(ctx))
		}
		return h
	}
	return m
}

// Teacher lets through teachers only. It must run after Authenticate.
func Teacher() web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			if !claims.IsTeacher(ctx) {
				return weberr.Forbidden(errors.New("user is not a teacher"))
			}
			return handler(ctx, w, r)
		}
		return h
	}
	return m
}
