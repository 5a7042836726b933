package reconcile

import (
	"testing"

	"github.com/BradenHooton/eventease/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestFilterForOwner(t *testing.T) {
	records := []Record{
		{"id": "1", "userEmail": "  Jane@Example.com "},
		{"id": "2", "userId": "U-42"},
		{"id": "3", "userId": map[string]any{"_id": "u-77", "name": "Sam"}},
		{"id": "4", "userEmail": "someone@else.com"},
		{"id": "5"},
		{"id": "6", "userId": "", "userEmail": "  "},
	}

	got := FilterForOwner(records, models.Claims{UserID: "u-42", Email: "jane@example.com"})

	var ids []string
	for _, rec := range got {
		ids = append(ids, ID(rec))
	}
	assert.Equal(t, []string{"1", "2"}, ids)
}

func TestFilterForOwner_OwnerlessNeverShown(t *testing.T) {
	ownerless := []Record{{"id": "1"}, {"id": "2", "userEmail": ""}}

	for _, claims := range []models.Claims{
		{},
		{UserID: "", Email: ""},
		{UserID: "admin", Email: "admin@example.com", Role: models.RoleAdmin},
	} {
		assert.Empty(t, FilterForOwner(ownerless, claims))
	}
}

func TestFilterForOwner_EmptySessionMatchesNothing(t *testing.T) {
	records := []Record{{"id": "1", "userEmail": "jane@example.com"}}
	assert.Empty(t, FilterForOwner(records, models.Claims{}))
}

func TestOwnerName(t *testing.T) {
	assert.Equal(t, "Sam", OwnerName(Record{"userId": map[string]any{"name": "Sam"}, "userEmail": "s@x.com"}))
	assert.Equal(t, "s@x.com", OwnerName(Record{"userId": "u1", "userEmail": "s@x.com"}))
	assert.Equal(t, "u1", OwnerName(Record{"userId": "u1"}))
	assert.Equal(t, "Unknown", OwnerName(Record{}))
}
