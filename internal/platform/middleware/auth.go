package middleware

import (
	"net/http"
	"strings"

	id "opptak/pkg/domain"
	dErrors "opptak/pkg/domain-errors"
	"opptak/pkg/platform/httputil"
	"opptak/pkg/requestcontext"
)

// TokenVerifier validates a bearer token and returns the actor it represents.
type TokenVerifier interface {
	Verify(token string) (id.StaffID, id.Role, error)
}

// Auth populates the request context with the staff actor when a bearer
// token is present. Requests without a token proceed as guardians; role
// guards downstream decide what that actor may do.
func Auth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "malformed authorization header"))
				return
			}
			staffID, role, err := verifier.Verify(token)
			if err != nil {
				httputil.WriteError(w, err)
				return
			}
			ctx := requestcontext.WithStaffID(r.Context(), staffID)
			ctx = requestcontext.WithRole(ctx, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireStaff rejects requests whose actor cannot process applications.
// Mount it on caseworker-only routes after Auth.
func RequireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !requestcontext.Role(r.Context()).CanProcessApplications() {
			httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "caseworker or admin role required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
