package menu

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Selection is the menu part of the booking form as the user edits it.
type Selection struct {
	catalog  *Catalog
	mainDish string
	sides    []string
	drink    string
	dessert  string
}

// NewSelection starts with the first main dish, no sides, no drink and no
// dessert.
func NewSelection(c *Catalog) *Selection {
	s := &Selection{catalog: c, drink: NoDrink, dessert: NoDessert}
	if len(c.MainDishes) > 0 {
		s.mainDish = c.MainDishes[0].Name
	}
	return s
}

// SetMainDish changes the main dish and clears the chosen sides.
func (s *Selection) SetMainDish(name string) error {
	if _, ok := s.catalog.MainDish(name); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownItem, name)
	}
	s.mainDish = name
	s.sides = nil
	return nil
}

// ToggleSide adds or removes a side. Adding past the main dish's cap fails
// with ErrSideLimitReached and leaves the selection unchanged.
func (s *Selection) ToggleSide(name string) error {
	for i, side := range s.sides {
		if side == name {
			s.sides = append(s.sides[:i:i], s.sides[i+1:]...)
			return nil
		}
	}

	if !s.catalog.IsSide(name) {
		return fmt.Errorf("%w: %q", ErrUnknownItem, name)
	}
	if len(s.sides) >= s.MaxSides() {
		return ErrSideLimitReached
	}

	s.sides = append(s.sides, name)
	return nil
}

func (s *Selection) SetDrink(name string) error {
	if _, ok := s.catalog.Drink(name); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownItem, name)
	}
	s.drink = name
	return nil
}

func (s *Selection) SetDessert(name string) error {
	if _, ok := s.catalog.Dessert(name); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownItem, name)
	}
	s.dessert = name
	return nil
}

// MaxSides is the cap for the current main dish.
func (s *Selection) MaxSides() int {
	d, _ := s.catalog.MainDish(s.mainDish)
	return d.MaxSides
}

func (s *Selection) MainDish() string { return s.mainDish }
func (s *Selection) Drink() string    { return s.drink }
func (s *Selection) Dessert() string  { return s.dessert }

// Sides returns a copy of the chosen sides in selection order.
func (s *Selection) Sides() []string {
	out := make([]string, len(s.sides))
	copy(out, s.sides)
	return out
}

// Total prices the selection for guests.
func (s *Selection) Total(guests int) decimal.Decimal {
	return s.catalog.Total(s.mainDish, s.drink, s.dessert, guests)
}
