package pet

import (
	"fmt"
	"strings"
)

type FoodKind string

const (
	Kibble FoodKind = "kibble"
	Treat  FoodKind = "treat"
	Fruit  FoodKind = "fruit"
)

var FoodKinds = []FoodKind{Kibble, Treat, Fruit}

type ToyKind string

const (
	Ball       ToyKind = "ball"
	Rope       ToyKind = "rope"
	SqueakyToy ToyKind = "squeakyToy"
)

var ToyKinds = []ToyKind{Ball, Rope, SqueakyToy}

func (f FoodKind) Label() string {
	switch f {
	case Kibble:
		return "Kibble"
	case Treat:
		return "Treat"
	case Fruit:
		return "Fruit"
	}
	return string(f)
}

func (t ToyKind) Label() string {
	switch t {
	case Ball:
		return "Ball"
	case Rope:
		return "Rope"
	case SqueakyToy:
		return "Squeaky Toy"
	}
	return string(t)
}

type Category string

const (
	CategoryFood Category = "food"
	CategoryToy  Category = "toy"
)

// Item names one purchasable thing. Exactly one of Food or Toy is set,
// according to Category.
type Item struct {
	Category Category
	Food     FoodKind
	Toy      ToyKind
}

func FoodItem(f FoodKind) Item { return Item{Category: CategoryFood, Food: f} }
func ToyItem(t ToyKind) Item   { return Item{Category: CategoryToy, Toy: t} }

func (i Item) String() string {
	if i.Category == CategoryFood {
		return string(i.Food)
	}
	return string(i.Toy)
}

func (i Item) Label() string {
	if i.Category == CategoryFood {
		return i.Food.Label()
	}
	return i.Toy.Label()
}

// ParseItem accepts the canonical kind names as well as the display labels,
// case-insensitively, with spaces, dashes and underscores ignored.
func ParseItem(s string) (Item, error) {
	key := normalize(s)
	for _, f := range FoodKinds {
		if key == normalize(string(f)) {
			return FoodItem(f), nil
		}
	}
	for _, t := range ToyKinds {
		if key == normalize(string(t)) {
			return ToyItem(t), nil
		}
	}
	return Item{}, fmt.Errorf("unknown item %q", s)
}

func normalize(s string) string {
	r := strings.NewReplacer(" ", "", "-", "", "_", "")
	return strings.ToLower(r.Replace(strings.TrimSpace(s)))
}
