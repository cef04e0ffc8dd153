// Package handlers contains the HTTP handlers. Each handler decodes
// and strictly validates its request, resolves the acting user, calls
// one service method, and maps the result onto the response envelope.
package handlers

import (
	"net/http"

	"audiohub-backend/domain/policy"
	"audiohub-backend/pkg/auth"
	"audiohub-backend/pkg/common"
)

// maxBodyBytes caps request bodies; no endpoint takes large payloads.
const maxBodyBytes = 64 * 1024

// actorFromRequest resolves the authenticated caller. A missing user
// context means the auth middleware did not run; treat as unauthorized.
func actorFromRequest(w http.ResponseWriter, r *http.Request) (policy.Actor, bool) {
	user, ok := auth.GetUserFromContext(r.Context())
	if !ok || user.UserID == "" {
		common.RespondError(w, http.StatusUnauthorized, common.StandardErrorCodes.Unauthorized, "Authentication required")
		return policy.Actor{}, false
	}
	return policy.Actor{UserID: user.UserID, Role: user.Role}, true
}
