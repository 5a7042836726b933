package menu

import (
	"testing"

	"github.com/BradenHooton/eventease/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validForm() BookingForm {
	return BookingForm{
		Event:    "Product launch dinner",
		Date:     "2026-12-05",
		Time:     "19:30",
		Guests:   4,
		MainDish: "Grilled Chicken with 2 Sides",
		Sides:    []string{"Salad", "Mashed Potato"},
		Drink:    "Juice",
		Dessert:  "No Dessert",
	}
}

func TestTotal_PriceScenario(t *testing.T) {
	c := Default()

	total := c.Total("Grilled Chicken with 2 Sides", "Juice", "No Dessert", 4)

	assert.Equal(t, "140", total.String())
	assert.Equal(t, 140.0, total.InexactFloat64())
}

func TestTotal_EdgeCases(t *testing.T) {
	c := Default()

	assert.True(t, c.Total("Grilled Chicken with 1 Side", "", "", 0).IsZero())
	assert.Equal(t, "57", c.Total("Double Chicken Grilled with 3 Sides", "", "Biscoff Bingsu", 1).String())
	assert.Equal(t, "25", c.Total("Grilled Chicken with 1 Side", "", "", 1).String(), "empty drink and dessert are free")
}

func TestSelection_SideCap(t *testing.T) {
	s := NewSelection(Default())
	require.Equal(t, "Grilled Chicken with 1 Side", s.MainDish())

	require.NoError(t, s.ToggleSide("Salad"))
	assert.ErrorIs(t, s.ToggleSide("Mashed Potato"), ErrSideLimitReached)
	assert.Equal(t, []string{"Salad"}, s.Sides())

	// removing is always allowed
	require.NoError(t, s.ToggleSide("Salad"))
	assert.Empty(t, s.Sides())
}

func TestSelection_MainDishChangeResetsSides(t *testing.T) {
	s := NewSelection(Default())
	require.NoError(t, s.SetMainDish("Grilled Chicken with 3 Sides"))

	for _, side := range []string{"Salad", "Potato Salad", "Steamed Green"} {
		require.NoError(t, s.ToggleSide(side))
	}
	assert.ErrorIs(t, s.ToggleSide("Mashed Potato"), ErrSideLimitReached)
	assert.Len(t, s.Sides(), 3)

	require.NoError(t, s.SetMainDish("Grilled Chicken with 2 Sides"))
	assert.Empty(t, s.Sides())
	assert.Equal(t, 2, s.MaxSides())
}

func TestSelection_RejectsUnknownItems(t *testing.T) {
	s := NewSelection(Default())

	assert.ErrorIs(t, s.SetMainDish("Beef Wellington"), ErrUnknownItem)
	assert.ErrorIs(t, s.ToggleSide("Fries"), ErrUnknownItem)
	assert.ErrorIs(t, s.SetDrink("Coffee"), ErrUnknownItem)
	assert.ErrorIs(t, s.SetDessert("Cake"), ErrUnknownItem)
	assert.Equal(t, "Grilled Chicken with 1 Side", s.MainDish())
}

func TestSelection_Total(t *testing.T) {
	s := NewSelection(Default())
	require.NoError(t, s.SetMainDish("Grilled Chicken with 2 Sides"))
	require.NoError(t, s.SetDrink("Juice"))

	assert.Equal(t, "140", s.Total(4).String())
}

func TestSelection_SidesReturnsCopy(t *testing.T) {
	s := NewSelection(Default())
	require.NoError(t, s.ToggleSide("Salad"))

	sides := s.Sides()
	sides[0] = "changed"

	assert.Equal(t, []string{"Salad"}, s.Sides())
}

func TestValidate(t *testing.T) {
	c := Default()

	tests := []struct {
		name    string
		mutate  func(f *BookingForm)
		wantErr error
	}{
		{"valid", func(f *BookingForm) {}, nil},
		{"blank event", func(f *BookingForm) { f.Event = "   " }, models.ErrValidation},
		{"bad date", func(f *BookingForm) { f.Date = "05/12/2026" }, models.ErrValidation},
		{"bad time", func(f *BookingForm) { f.Time = "7pm" }, models.ErrValidation},
		{"no guests", func(f *BookingForm) { f.Guests = 0 }, models.ErrValidation},
		{"unknown main", func(f *BookingForm) { f.MainDish = "Steak" }, ErrUnknownItem},
		{"unknown side", func(f *BookingForm) { f.Sides = []string{"Fries"} }, ErrUnknownItem},
		{"too many sides", func(f *BookingForm) { f.Sides = []string{"Salad", "Mashed Potato", "Potato Salad"} }, ErrSideLimitReached},
		{"duplicate side", func(f *BookingForm) { f.Sides = []string{"Salad", "Salad"} }, models.ErrValidation},
		{"unknown drink", func(f *BookingForm) { f.Drink = "Coffee" }, ErrUnknownItem},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validForm()
			tt.mutate(&form)

			err := c.Validate(form)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestQuote(t *testing.T) {
	total, err := Default().Quote(validForm())
	require.NoError(t, err)
	assert.Equal(t, "140", total.String())

	form := validForm()
	form.Guests = -1
	_, err = Default().Quote(form)
	assert.ErrorIs(t, err, models.ErrValidation)
}
