package pet

import (
	"fmt"
	"strings"
)

// Buy spends quantity*unitPrice points and adds quantity units of item.
// Nothing changes unless the whole purchase succeeds.
func (s *State) Buy(item Item, quantity, unitPrice int) error {
	if quantity <= 0 || unitPrice <= 0 {
		return fmt.Errorf("%w: quantity %d at price %d", ErrInvalidPurchase, quantity, unitPrice)
	}
	if !s.known(item) {
		return fmt.Errorf("%w: %s", ErrUnknownItem, item)
	}
	total := quantity * unitPrice
	if total/quantity != unitPrice || total > s.Points {
		return fmt.Errorf("%w: need %d, have %d", ErrInsufficientFunds, total, s.Points)
	}

	s.Points -= total
	switch item.Category {
	case CategoryFood:
		if s.Food == nil {
			s.Food = map[FoodKind]int{}
		}
		s.Food[item.Food] += quantity
	case CategoryToy:
		if s.Toys == nil {
			s.Toys = map[ToyKind]int{}
		}
		s.Toys[item.Toy] += quantity
	}
	return nil
}

// Stock reports how many units of item are owned.
func (s *State) Stock(item Item) int {
	if item.Category == CategoryFood {
		return s.Food[item.Food]
	}
	return s.Toys[item.Toy]
}

// Rename trims name and stores it. Blank names are rejected.
func (s *State) Rename(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ErrInvalidName
	}
	s.Name = trimmed
	return nil
}

func (s *State) known(item Item) bool {
	switch item.Category {
	case CategoryFood:
		_, ok := foodDeltas[item.Food]
		return ok
	case CategoryToy:
		_, ok := toyDeltas[item.Toy]
		return ok
	}
	return false
}
