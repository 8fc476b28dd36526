package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"printerp/internal/domain/auth"
	"printerp/internal/transport/http/api"
)

type PermissionStore interface {
	HasPermission(ctx context.Context, roleID, permission string) (bool, error)
}

// RequirePermission rejects requests whose role lacks permission. The
// forbidden response names the missing permission.
func RequirePermission(permission string, store PermissionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := GetRequestID(r.Context())
			user, ok := GetUser(r.Context())
			if !ok {
				api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
				return
			}

			allowed, err := store.HasPermission(r.Context(), user.RoleID, permission)
			if err != nil {
				slog.Warn("permission check failed", "role", user.RoleID, "permission", permission, "err", err)
				api.Fail(w, http.StatusInternalServerError, "permission_error", "permission check failed", requestID)
				return
			}
			if !allowed {
				api.FailWithDetails(w, http.StatusForbidden, "forbidden", "insufficient permissions",
					map[string]string{"permission": permission}, requestID)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// AuthorizeEmployee writes a 401 or 403 and returns false unless the caller
// may see employeeID's commission. Self-scoped roles only see their own.
func AuthorizeEmployee(w http.ResponseWriter, r *http.Request, employeeID string) bool {
	requestID := GetRequestID(r.Context())
	user, ok := GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return false
	}
	if auth.SelfScoped(user.RoleName) && user.EmployeeID != employeeID {
		api.Fail(w, http.StatusForbidden, "forbidden", "employees may only view their own commission", requestID)
		return false
	}
	return true
}
