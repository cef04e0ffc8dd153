package middleware

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"audiohub-backend/domain/entities"
	"audiohub-backend/pkg/auth"
	"audiohub-backend/pkg/common"
)

// Authenticator attaches the caller's identity to the request context.
// Behind API Gateway the JWT authorizer has already validated the
// Cognito token; the Lambda adapter forwards the claims as headers and
// this middleware trusts them. On the local server it validates the
// bearer token itself.
type Authenticator struct {
	validator   *auth.JWTValidator
	trustProxy  bool
	ipLimiter   *auth.IPRateLimiter
	userLimiter *auth.UserRateLimiter
	logger      *zap.Logger
}

// NewAuthenticator creates a new Authenticator. trustProxy selects the
// Lambda mode where the upstream authorizer is trusted.
func NewAuthenticator(validator *auth.JWTValidator, trustProxy bool, ipPerMinute, userPerMinute int, logger *zap.Logger) *Authenticator {
	return &Authenticator{
		validator:   validator,
		trustProxy:  trustProxy,
		ipLimiter:   auth.NewIPRateLimiter(ipPerMinute),
		userLimiter: auth.NewUserRateLimiter(userPerMinute),
		logger:      logger,
	}
}

// Handler is the authentication middleware.
func (a *Authenticator) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientIP := getClientIP(r)
		if allowed, _ := a.ipLimiter.Allow(r.Context(), clientIP); !allowed {
			common.RespondError(w, http.StatusTooManyRequests, common.StandardErrorCodes.TooManyRequests, "Rate limit exceeded")
			return
		}

		var user *auth.UserContext
		if a.trustProxy && r.Header.Get("X-API-Gateway-Authorized") == "true" {
			user = userFromProxyHeaders(r)
			if user == nil {
				common.RespondError(w, http.StatusUnauthorized, common.StandardErrorCodes.Unauthorized, "Missing user context from API Gateway")
				return
			}
		} else {
			token := extractBearerToken(r)
			if token == "" {
				common.RespondError(w, http.StatusUnauthorized, common.StandardErrorCodes.Unauthorized, "Missing authentication token")
				return
			}

			claims, err := a.validator.Validate(token)
			if err != nil {
				a.logger.Warn("Token rejected",
					zap.String("ip", clientIP),
					zap.String("path", r.URL.Path),
					zap.Error(err),
				)
				message := "Invalid token"
				if errors.Is(err, auth.ErrExpiredToken) {
					message = "Token has expired"
				}
				common.RespondError(w, http.StatusUnauthorized, common.StandardErrorCodes.Unauthorized, message)
				return
			}

			user = &auth.UserContext{
				UserID:   claims.UserID,
				Email:    claims.Email,
				Username: claims.Username,
				Role:     claims.Role,
			}
		}

		if user.Role == "" {
			user.Role = entities.RoleUser
		}

		if allowed, _ := a.userLimiter.Allow(r.Context(), user.UserID); !allowed {
			common.RespondError(w, http.StatusTooManyRequests, common.StandardErrorCodes.TooManyRequests, "User rate limit exceeded")
			return
		}

		ctx := auth.SetUserInContext(r.Context(), user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// userFromProxyHeaders reads the claims the Lambda adapter forwarded.
func userFromProxyHeaders(r *http.Request) *auth.UserContext {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		return nil
	}
	return &auth.UserContext{
		UserID:   userID,
		Email:    r.Header.Get("X-User-Email"),
		Username: r.Header.Get("X-User-Username"),
		Role:     r.Header.Get("X-User-Role"),
	}
}

// extractBearerToken pulls the token out of the Authorization header.
func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1]
	}
	return authHeader
}

// getClientIP extracts the client IP address
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx != -1 {
		return addr[:idx]
	}
	return addr
}
