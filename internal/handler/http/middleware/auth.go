package middleware

import (
	"context"
	"net/http"

	"github.com/cmlabs-hris/hris-workforce-engine/internal/domain/user"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-workforce-engine/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
)

type actorKey struct{}

// AuthRequired rejects requests without a verified access token and stores
// the caller as a user.Actor on the request context.
func AuthRequired(ja *jwtauth.JWTAuth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			token, claims, err := jwtauth.FromContext(r.Context())
			if err != nil {
				response.Unauthorized(w, err.Error())
				return
			}
			if token == nil {
				response.Unauthorized(w, jwt.ErrInvalidToken.Error())
				return
			}

			tokenType, ok := claims["type"].(string)
			if !ok || tokenType != jwt.TokenTypeAccess {
				response.Unauthorized(w, jwt.ErrInvalidToken.Error())
				return
			}

			actor, err := jwt.ActorFromClaims(claims)
			if err != nil {
				response.Unauthorized(w, err.Error())
				return
			}
			if actor.CompanyID == "" {
				response.HandleError(w, user.ErrCompanyIDRequired)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		}
		return http.HandlerFunc(hfn)
	}
}

func WithActor(ctx context.Context, actor user.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the caller stored by AuthRequired.
func ActorFromContext(ctx context.Context) (user.Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(user.Actor)
	return actor, ok
}
