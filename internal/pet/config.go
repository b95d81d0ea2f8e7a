package pet

import "fmt"

// MaxPurchaseQuantity caps a single shop purchase.
const MaxPurchaseQuantity = 999

// Catalog is the shop price list in pet points per unit.
type Catalog struct {
	Food map[FoodKind]int
	Toys map[ToyKind]int
}

func DefaultCatalog() Catalog {
	return Catalog{
		Food: map[FoodKind]int{Kibble: 10, Treat: 20, Fruit: 40},
		Toys: map[ToyKind]int{Ball: 10, Rope: 20, SqueakyToy: 40},
	}
}

// Price returns the unit price of item, or false when the catalog does not
// list it.
func (c Catalog) Price(item Item) (int, bool) {
	var (
		p  int
		ok bool
	)
	switch item.Category {
	case CategoryFood:
		p, ok = c.Food[item.Food]
	case CategoryToy:
		p, ok = c.Toys[item.Toy]
	}
	return p, ok && p > 0
}

// Merge returns c with any positive prices from override applied on top.
func (c Catalog) Merge(override Catalog) Catalog {
	out := Catalog{Food: map[FoodKind]int{}, Toys: map[ToyKind]int{}}
	for k, v := range c.Food {
		out.Food[k] = v
	}
	for k, v := range c.Toys {
		out.Toys[k] = v
	}
	for k, v := range override.Food {
		if v > 0 {
			out.Food[k] = v
		}
	}
	for k, v := range override.Toys {
		if v > 0 {
			out.Toys[k] = v
		}
	}
	return out
}

// BuyFromCatalog buys quantity units of item at the catalog price.
func (s *State) BuyFromCatalog(c Catalog, item Item, quantity int) (int, error) {
	if quantity > MaxPurchaseQuantity {
		return 0, fmt.Errorf("%w: at most %d per purchase", ErrInvalidPurchase, MaxPurchaseQuantity)
	}
	price, ok := c.Price(item)
	if !ok {
		return 0, fmt.Errorf("%w: %s is not for sale", ErrUnknownItem, item)
	}
	if err := s.Buy(item, quantity, price); err != nil {
		return 0, err
	}
	return quantity * price, nil
}
