package menu

import (
	"fmt"
	"strings"

	"github.com/BradenHooton/eventease/internal/models"
	"github.com/BradenHooton/eventease/internal/validation"
	"github.com/shopspring/decimal"
)

// BookingForm is the submitted booking form.
type BookingForm struct {
	Event    string   `validate:"required,max=120"`
	Date     string   `validate:"required,datetime=2006-01-02"`
	Time     string   `validate:"required,datetime=15:04"`
	Guests   int      `validate:"gte=1,lte=1000"`
	MainDish string   `validate:"required"`
	Sides    []string `validate:"dive,required"`
	Drink    string
	Dessert  string
	Notes    string `validate:"max=1000"`
}

// Validate checks the form fields and that every selection is on the menu
// within the side-dish cap.
func (c *Catalog) Validate(form BookingForm) error {
	form.Event = strings.TrimSpace(form.Event)
	if err := validation.Struct(form); err != nil {
		return err
	}

	dish, ok := c.MainDish(form.MainDish)
	if !ok {
		return fmt.Errorf("%w: main dish %q", ErrUnknownItem, form.MainDish)
	}

	seen := make(map[string]bool, len(form.Sides))
	for _, side := range form.Sides {
		if !c.IsSide(side) {
			return fmt.Errorf("%w: side %q", ErrUnknownItem, side)
		}
		if seen[side] {
			return fmt.Errorf("%w: side %q chosen twice", models.ErrValidation, side)
		}
		seen[side] = true
	}
	if len(form.Sides) > dish.MaxSides {
		return fmt.Errorf("%w: %s allows %d", ErrSideLimitReached, dish.Name, dish.MaxSides)
	}

	if _, ok := c.Drink(form.Drink); !ok {
		return fmt.Errorf("%w: drink %q", ErrUnknownItem, form.Drink)
	}
	if _, ok := c.Dessert(form.Dessert); !ok {
		return fmt.Errorf("%w: dessert %q", ErrUnknownItem, form.Dessert)
	}

	return nil
}

// Quote validates the form and prices it.
func (c *Catalog) Quote(form BookingForm) (decimal.Decimal, error) {
	if err := c.Validate(form); err != nil {
		return decimal.Zero, err
	}
	return c.Total(form.MainDish, form.Drink, form.Dessert, form.Guests), nil
}
