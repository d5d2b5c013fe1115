package lifescope

import (
	"net/http"

	"github.com/google/uuid"
)

// RequestIDHeader carries the request identifier that owns a request
// scope across HTTP calls.
const RequestIDHeader = "X-Request-ID"

// RequestScope returns HTTP middleware that materializes a container
// scope per inbound request. The scope is keyed by the X-Request-ID
// header (generated when absent, and echoed back in the response), so
// retries and follow-up calls carrying the same identifier share one
// scope. Scopes stay alive between calls until the manager's idle
// timeout evicts them.
//
// Handlers recover the scope with ContainerFrom(r.Context()).
func RequestScope(m *ScopeManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = uuid.NewString()
			}

			scope := m.GetOrCreateScope(requestID)
			ctx := WithRequestID(WithContainer(r.Context(), scope), requestID)

			w.Header().Set(RequestIDHeader, requestID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
