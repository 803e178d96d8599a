package factories

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/swoopdelivery/swoopsim/internal/models"
)

// menuEntry pairs a course menu item with its kitchen complexity and price.
type menuEntry struct {
	name       string
	complexity models.Complexity
	price      float64
}

var courseMenu = []menuEntry{
	{"Bottled Water", models.ComplexitySimple, 3.00},
	{"Domestic Beer", models.ComplexitySimple, 6.50},
	{"Craft IPA", models.ComplexitySimple, 8.00},
	{"Transfusion", models.ComplexityMedium, 9.50},
	{"Bloody Mary", models.ComplexityMedium, 11.00},
	{"Turkey Club", models.ComplexityMedium, 13.50},
	{"Hot Dog", models.ComplexityMedium, 7.00},
	{"Cheeseburger", models.ComplexityComplex, 14.50},
	{"Chicken Quesadilla", models.ComplexityComplex, 15.00},
	{"Fish Tacos", models.ComplexityComplex, 16.50},
}

type OrderFactory struct {
	rng     *rand.Rand
	counter int
}

// NewOrderFactory draws from the given RNG, which should be the run RNG so
// arrival contents reproduce with the seed.
func NewOrderFactory(rng *rand.Rand) *OrderFactory {
	return &OrderFactory{rng: rng}
}

// CreateOrder builds an order at the given hole with one to three random
// menu items. The sequential id keeps run logs easy to follow.
func (f *OrderFactory) CreateOrder(hole int, now time.Time) *models.Order {
	f.counter++

	itemCount := 1 + f.rng.Intn(3)
	items := make([]models.OrderItem, itemCount)
	for i := range items {
		entry := courseMenu[f.rng.Intn(len(courseMenu))]
		items[i] = models.OrderItem{
			Name:       entry.name,
			Quantity:   1 + f.rng.Intn(2),
			Complexity: entry.complexity,
			Price:      entry.price,
		}
	}

	return &models.Order{
		ID:         fmt.Sprintf("ORD%04d", f.counter),
		HoleNumber: hole,
		Status:     models.OrderStatusPending,
		Items:      items,
		TimeOfDay:  timeOfDay(now),
		PlacedAt:   now,
	}
}

func timeOfDay(t time.Time) models.TimeOfDay {
	switch hour := t.Hour(); {
	case hour < 11:
		return models.TimeOfDayMorning
	case hour < 14:
		return models.TimeOfDayNoon
	default:
		return models.TimeOfDayAfternoon
	}
}
