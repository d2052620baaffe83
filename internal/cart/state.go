// Package cart holds a shopper's favorites and cart lines between requests.
// Mutations apply immediately; nothing is confirmed with the catalog until checkout.
package cart

import (
	"github.com/google/uuid"

	"github.com/phenrril/newmobile/internal/domain"
)

const (
	maxLineQty = 99
	// The state travels in one signed cookie, which browsers cap at 4 KB.
	MaxLines     = 20
	MaxFavorites = 30
)

type Line struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity"`
}

// State keeps lines and favorites in the order they were first added.
type State struct {
	Lines     []Line      `json:"lines"`
	Favorites []uuid.UUID `json:"favorites"`
}

func (s *State) index(id uuid.UUID) int {
	for i, l := range s.Lines {
		if l.ProductID == id {
			return i
		}
	}
	return -1
}

// ToggleFavorite flips the favorite flag and reports the new value.
// Adding beyond MaxFavorites fails and leaves the state unchanged.
func (s *State) ToggleFavorite(id uuid.UUID) (bool, error) {
	for i, f := range s.Favorites {
		if f == id {
			s.Favorites = append(s.Favorites[:i], s.Favorites[i+1:]...)
			return false, nil
		}
	}
	if len(s.Favorites) >= MaxFavorites {
		return false, domain.Validation("at most %d favorites", MaxFavorites)
	}
	s.Favorites = append(s.Favorites, id)
	return true, nil
}

func (s *State) IsFavorite(id uuid.UUID) bool {
	for _, f := range s.Favorites {
		if f == id {
			return true
		}
	}
	return false
}

// Add increases the quantity of a line, creating it at the end of the cart if needed.
func (s *State) Add(id uuid.UUID, qty int) error {
	if id == uuid.Nil {
		return domain.Validation("product id is required")
	}
	if qty <= 0 {
		return domain.Validation("quantity must be greater than 0")
	}
	if i := s.index(id); i >= 0 {
		return s.SetQuantity(id, s.Lines[i].Quantity+qty)
	}
	return s.SetQuantity(id, qty)
}

// SetQuantity replaces the quantity of a line. Zero removes it.
func (s *State) SetQuantity(id uuid.UUID, qty int) error {
	if id == uuid.Nil {
		return domain.Validation("product id is required")
	}
	if qty < 0 {
		return domain.Validation("quantity must not be negative")
	}
	if qty > maxLineQty {
		return domain.Validation("quantity must be at most %d", maxLineQty)
	}
	i := s.index(id)
	switch {
	case qty == 0 && i >= 0:
		s.Lines = append(s.Lines[:i], s.Lines[i+1:]...)
	case qty == 0:
	case i >= 0:
		s.Lines[i].Quantity = qty
	case len(s.Lines) >= MaxLines:
		return domain.Validation("cart holds at most %d products", MaxLines)
	default:
		s.Lines = append(s.Lines, Line{ProductID: id, Quantity: qty})
	}
	return nil
}

func (s *State) Remove(id uuid.UUID) {
	_ = s.SetQuantity(id, 0)
}

func (s *State) Count() int {
	n := 0
	for _, l := range s.Lines {
		n += l.Quantity
	}
	return n
}

// Stage returns a copy of the cart for checkout. An empty cart cannot be staged.
func (s *State) Stage() ([]Line, error) {
	if len(s.Lines) == 0 {
		return nil, domain.Validation("cart is empty")
	}
	return append([]Line(nil), s.Lines...), nil
}

// Clear empties the cart after a recorded purchase. Favorites stay.
func (s *State) Clear() {
	s.Lines = nil
}
