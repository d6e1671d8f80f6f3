// Package lunch is the illustrative flowline domain: free-text lunch orders
// are categorized into dishes by ordered substring matching.
package lunch

import (
	"strings"

	"github.com/google/uuid"
)

// Dish is a lunch category.
type Dish string

const (
	DishSoup     Dish = "soup"
	DishSalad    Dish = "salad"
	DishSandwich Dish = "sandwich"
	DishBurger   Dish = "burger"
	// DishSpecial is produced when no category matches the order text.
	DishSpecial Dish = "special"
)

// Order is a customer's free-text lunch order. Orders are plain values and
// carry no reference to shared state, so they transfer cleanly between
// pipeline workers.
type Order struct {
	ID   uuid.UUID
	Text string
}

// NewOrder creates an order with a fresh ID.
func NewOrder(text string) Order {
	return Order{ID: uuid.New(), Text: text}
}

// Lunch is a categorized order.
type Lunch struct {
	Order uuid.UUID
	Dish  Dish
}

// matchOrder fixes the category matching order. Matching order is
// significant: an order like "soup and salad" satisfies several patterns and
// resolves to the first entry that matches.
var matchOrder = []struct {
	substr string
	dish   Dish
}{
	{"soup", DishSoup},
	{"salad", DishSalad},
	{"sandwich", DishSandwich},
	{"burger", DishBurger},
}

// Categorize maps an order to a lunch: the first category whose substring
// occurs in the order text wins, case-insensitively; orders matching no
// category become DishSpecial.
func Categorize(o Order) Lunch {
	text := strings.ToLower(o.Text)
	for _, m := range matchOrder {
		if strings.Contains(text, m.substr) {
			return Lunch{Order: o.ID, Dish: m.dish}
		}
	}
	return Lunch{Order: o.ID, Dish: DishSpecial}
}
