package testutil

import (
	"net/http"
	"time"

	id "opptak/pkg/domain"
	"opptak/pkg/requestcontext"
)

// WithActor adds a staff actor to the request context, simulating what the
// auth middleware does for authenticated requests. An unparseable staff ID is
// silently ignored so tests can opt out with an empty string.
func WithActor(req *http.Request, staffID string, role id.Role) *http.Request {
	ctx := req.Context()
	if parsed, err := id.ParseStaffID(staffID); err == nil {
		ctx = requestcontext.WithStaffID(ctx, parsed)
	}
	ctx = requestcontext.WithRole(ctx, role)
	return req.WithContext(ctx)
}

// WithRequestTime pins the request clock, making round classification and
// age-band evaluation deterministic.
func WithRequestTime(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}

// WithRequestID adds a request ID to the request context.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}
