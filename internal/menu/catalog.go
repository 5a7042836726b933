package menu

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrUnknownItem      = errors.New("item is not on the menu")
	ErrSideLimitReached = errors.New("side dish limit reached for the chosen main dish")
)

// Item is a priced menu entry. Prices are per guest.
type Item struct {
	Name  string
	Price decimal.Decimal
}

// MainDish is a main course and how many sides come with it.
type MainDish struct {
	Item
	MaxSides int
}

// Catalog lists everything that can be ordered.
type Catalog struct {
	MainDishes []MainDish
	Sides      []string
	Drinks     []Item
	Desserts   []Item
}

const (
	NoDrink   = "No Drink"
	NoDessert = "No Dessert"
)

// Default returns the EventEase menu.
func Default() *Catalog {
	return &Catalog{
		MainDishes: []MainDish{
			{Item: item("Grilled Chicken with 1 Side", 25), MaxSides: 1},
			{Item: item("Grilled Chicken with 2 Sides", 30), MaxSides: 2},
			{Item: item("Grilled Chicken with 3 Sides", 35), MaxSides: 3},
			{Item: item("Double Chicken Grilled with 3 Sides", 45), MaxSides: 3},
		},
		Sides: []string{"Mashed Potato", "Steamed Green", "Potato Salad", "Salad"},
		Drinks: []Item{
			item(NoDrink, 0),
			item("Juice", 5),
			item("Soft Drink", 4),
			item("Iced Lemon Tea", 4),
		},
		Desserts: []Item{
			item(NoDessert, 0),
			item("Matcha Bingsu", 12),
			item("Biscoff Bingsu", 12),
		},
	}
}

func item(name string, price int64) Item {
	return Item{Name: name, Price: decimal.NewFromInt(price)}
}

// MainDish looks up a main dish by name.
func (c *Catalog) MainDish(name string) (MainDish, bool) {
	for _, d := range c.MainDishes {
		if d.Name == name {
			return d, true
		}
	}
	return MainDish{}, false
}

// Drink looks up a drink by name. An empty name is "No Drink".
func (c *Catalog) Drink(name string) (Item, bool) {
	if name == "" {
		name = NoDrink
	}
	return find(c.Drinks, name)
}

// Dessert looks up a dessert by name. An empty name is "No Dessert".
func (c *Catalog) Dessert(name string) (Item, bool) {
	if name == "" {
		name = NoDessert
	}
	return find(c.Desserts, name)
}

// IsSide reports whether name is an offered side dish.
func (c *Catalog) IsSide(name string) bool {
	for _, s := range c.Sides {
		if s == name {
			return true
		}
	}
	return false
}

func find(items []Item, name string) (Item, bool) {
	for _, it := range items {
		if it.Name == name {
			return it, true
		}
	}
	return Item{}, false
}

// Total is (main + drink + dessert) × guests rounded to cents. Unknown
// items contribute nothing; callers validate the selection first.
func (c *Catalog) Total(mainDish, drink, dessert string, guests int) decimal.Decimal {
	if guests <= 0 {
		return decimal.Zero
	}

	perGuest := decimal.Zero
	if d, ok := c.MainDish(mainDish); ok {
		perGuest = perGuest.Add(d.Price)
	}
	if d, ok := c.Drink(drink); ok {
		perGuest = perGuest.Add(d.Price)
	}
	if d, ok := c.Dessert(dessert); ok {
		perGuest = perGuest.Add(d.Price)
	}

	return perGuest.Mul(decimal.NewFromInt(int64(guests))).Round(2)
}
