package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/BradenHooton/eventease/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

// parser never verifies signatures: the client has no key and only reads
// claims for display and expiry. The backend remains the authority.
var parser = jwt.NewParser()

// IsTokenExpired reports whether token should be treated as logged out.
// Undecodable tokens count as expired; tokens without an exp claim never
// expire on the client.
func IsTokenExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return true
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return true
	}
	if exp == nil {
		return false
	}
	return !exp.Time.After(now)
}

// DecodeClaims extracts the identity carried by token. The user id falls
// back through userId, id, _id and sub, then to the email.
func DecodeClaims(token string) (models.Claims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return models.Claims{}, fmt.Errorf("failed to decode token: %w", err)
	}

	email := normalise(firstString(claims, "email", "userEmail"))
	userID := normalise(firstString(claims, "userId", "id", "_id", "sub"))
	if userID == "" {
		userID = email
	}

	out := models.Claims{
		UserID: userID,
		Email:  email,
		Role:   firstString(claims, "role"),
	}

	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		t := exp.Time
		out.ExpiresAt = &t
	}

	return out, nil
}

func firstString(claims jwt.MapClaims, keys ...string) string {
	for _, key := range keys {
		if v, ok := claims[key].(string); ok && strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func normalise(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
