package middleware

import (
	"net/http"
	"strings"

	"wedly/internal/shared/config"
	"wedly/internal/shared/gate"
	"wedly/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// GateAuth validates the bearer token and resolves the calling actor. Every
// downstream handler reads the actor from the gin context; a request that
// reaches a handler without an actor is a wiring bug, not a user error.
func GateAuth() gin.HandlerFunc {
	return GateAuthWithConfig(config.Load())
}

// GateAuthWithConfig validates the bearer token with an explicit config.
func GateAuthWithConfig(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "Authorization header is required", nil, nil)
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "authorization header format must be Bearer {token}", nil, nil)
			c.Abort()
			return
		}

		token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(cfg.JWT.Secret), nil
		})
		if err != nil || !token.Valid {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "invalid or expired token", nil, nil)
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "invalid token claims", nil, nil)
			c.Abort()
			return
		}
		if tokenType, ok := claims["type"]; !ok || tokenType != "access" {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "invalid token type", nil, nil)
			c.Abort()
			return
		}

		actor, err := actorFromClaims(claims)
		if err != nil {
			response.RespondJSON(c, "error", http.StatusUnauthorized, err.Error(), nil, nil)
			c.Abort()
			return
		}

		gate.Store(c, actor)
		c.Next()
	}
}

// RequireOwner restricts a route to the event owner. Must run after GateAuth.
func RequireOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := gate.FromContext(c)
		if !ok {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "actor not resolved", nil, nil)
			c.Abort()
			return
		}
		if !actor.IsOwner() {
			response.RespondJSON(c, "error", http.StatusForbidden, "Insufficient permissions", nil, nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

func actorFromClaims(claims jwt.MapClaims) (gate.Actor, error) {
	actorID, err := uuidClaim(claims, "actor_id")
	if err != nil {
		return gate.Actor{}, err
	}
	eventID, err := uuidClaim(claims, "event_id")
	if err != nil {
		return gate.Actor{}, err
	}

	kindStr, _ := claims["actor_kind"].(string)
	kind := gate.ActorKind(kindStr)
	if kind != gate.KindOwner && kind != gate.KindStaff {
		return gate.Actor{}, jwt.NewValidationError("unknown actor kind", jwt.ValidationErrorClaimsInvalid)
	}

	actor := gate.Actor{
		ID:      actorID,
		Kind:    kind,
		EventID: eventID,
	}
	if rawCaps, ok := claims["caps"].([]interface{}); ok {
		caps := make(map[gate.Capability]bool, len(rawCaps))
		for _, raw := range rawCaps {
			if s, ok := raw.(string); ok {
				caps[gate.Capability(s)] = true
			}
		}
		actor.Capabilities = caps
	}
	return actor, nil
}

func uuidClaim(claims jwt.MapClaims, key string) (uuid.UUID, error) {
	raw, ok := claims[key].(string)
	if !ok {
		return uuid.Nil, jwt.NewValidationError("missing claim "+key, jwt.ValidationErrorClaimsInvalid)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, jwt.NewValidationError("invalid claim "+key, jwt.ValidationErrorClaimsInvalid)
	}
	return id, nil
}
