package middleware

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"

	httputil "locomotion/pkg/http"
)

const (
	RoleAdmin    = "admin"
	RoleCreator  = "creator"
	RoleBusiness = "business"
)

const IdentityKey contextKey = "identity"

// Claims carried by the hosted auth provider's bearer tokens. Token
// issuance happens outside this service; we only verify.
type Claims struct {
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// Identity is the request-scoped view of the authenticated user.
type Identity struct {
	UserID string   `json:"user_id"`
	Name   string   `json:"name"`
	Email  string   `json:"email"`
	Roles  []string `json:"roles"`
}

func (id *Identity) HasRole(role string) bool {
	return slices.Contains(id.Roles, role)
}

// Authenticate verifies the bearer token and stores the Identity in the
// request context. Missing or invalid tokens get a 401.
func Authenticate(secret []byte, next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		identity, ok := parseBearer(r, secret)
		if !ok {
			_ = httputil.WriteJSON(w, http.StatusUnauthorized, httputil.ErrorResponse{
				Error: "Missing or invalid token",
			})
			return
		}

		ctx := context.WithValue(r.Context(), IdentityKey, identity)
		next(w, r.WithContext(ctx), ps)
	}
}

// OptionalAuthenticate attaches an Identity when a valid bearer token is
// present and passes the request through anonymously otherwise. Used on
// public routes that show more to authenticated callers.
func OptionalAuthenticate(secret []byte, next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if identity, ok := parseBearer(r, secret); ok {
			r = r.WithContext(context.WithValue(r.Context(), IdentityKey, identity))
		}
		next(w, r, ps)
	}
}

// RequireRole is Authenticate plus a role check; non-holders get a 403.
func RequireRole(secret []byte, role string, next httprouter.Handle) httprouter.Handle {
	return Authenticate(secret, func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		identity := IdentityFromContext(r.Context())
		if identity == nil || !identity.HasRole(role) {
			_ = httputil.WriteJSON(w, http.StatusForbidden, httputil.ErrorResponse{
				Error: "Insufficient permissions",
			})
			return
		}
		next(w, r, ps)
	})
}

func IdentityFromContext(ctx context.Context) *Identity {
	if identity, ok := ctx.Value(IdentityKey).(*Identity); ok {
		return identity
	}
	return nil
}

func parseBearer(r *http.Request, secret []byte) (*Identity, bool) {
	header := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return nil, false
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !parsed.Valid {
		return nil, false
	}

	return &Identity{
		UserID: claims.Subject,
		Name:   claims.Name,
		Email:  claims.Email,
		Roles:  claims.Roles,
	}, true
}
