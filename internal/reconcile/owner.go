package reconcile

import (
	"strings"

	"github.com/BradenHooton/eventease/internal/models"
)

// OwnerID returns the owning user's id. userId may be a plain id or a
// populated user object.
func OwnerID(rec Record) string {
	switch v := rec["userId"].(type) {
	case string:
		return strings.TrimSpace(v)
	case map[string]any:
		for _, key := range []string{"_id", "id"} {
			if s := scalarString(v[key]); s != "" {
				return s
			}
		}
	}
	return scalarString(rec["ownerId"])
}

// OwnerEmail returns the owning user's email.
func OwnerEmail(rec Record) string {
	if s := scalarString(rec["userEmail"]); s != "" {
		return s
	}
	if user, ok := asMap(rec["userId"]); ok {
		if s := scalarString(user["email"]); s != "" {
			return s
		}
	}
	return scalarString(rec["ownerEmail"])
}

// OwnerName is the best display name for the owner: the populated user's
// name, then the email, then the raw user id, then "Unknown".
func OwnerName(rec Record) string {
	if user, ok := asMap(rec["userId"]); ok {
		if s := scalarString(user["name"]); s != "" {
			return s
		}
	}
	if s := scalarString(rec["userEmail"]); s != "" {
		return s
	}
	if s := OwnerID(rec); s != "" {
		return s
	}
	return "Unknown"
}

// FilterForOwner keeps the records owned by the session's user. Matching
// is trimmed and case-insensitive on id or email. Records with no owner
// fields are always dropped.
func FilterForOwner(records []Record, claims models.Claims) []Record {
	identities := make(map[string]bool, 2)
	for _, s := range []string{claims.UserID, claims.Email} {
		if s = fold(s); s != "" {
			identities[s] = true
		}
	}

	out := make([]Record, 0, len(records))
	for _, rec := range records {
		id, email := fold(OwnerID(rec)), fold(OwnerEmail(rec))
		if id == "" && email == "" {
			continue
		}
		if (id != "" && identities[id]) || (email != "" && identities[email]) {
			out = append(out, rec)
		}
	}
	return out
}

func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
