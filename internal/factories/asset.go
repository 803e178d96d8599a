// Package factories builds assets and orders for simulation runs. All
// randomness comes from the factory's seeded generator so a run's starting
// pool is reproducible.
package factories

import (
	"fmt"
	"math/rand"

	"github.com/jaswdr/faker"

	"github.com/swoopdelivery/swoopsim/internal/models"
)

type AssetFactory struct {
	fake faker.Faker
	rng  *rand.Rand
}

func NewAssetFactory(seed int64) *AssetFactory {
	return &AssetFactory{
		fake: faker.NewWithSeed(rand.NewSource(seed)),
		rng:  rand.New(rand.NewSource(seed)),
	}
}

// CreateBeverageCart builds the i-th cart, alternating loops so both halves
// of the course are covered, starting somewhere inside its loop.
func (f *AssetFactory) CreateBeverageCart(i int, cfg *models.Config) *models.DeliveryAsset {
	loop := models.LoopFront9
	lo, hi := cfg.FrontNine()
	if i%2 == 1 {
		loop = models.LoopBack9
		lo, hi = cfg.BackNine()
	}
	start := lo + f.rng.Intn(hi-lo+1)

	return &models.DeliveryAsset{
		ID:              fmt.Sprintf("cart-%d", i+1),
		Name:            fmt.Sprintf("Bev-Cart %d", i+1),
		Kind:            models.AssetKindBeverageCart,
		Loop:            loop,
		Status:          models.AssetStatusIdle,
		CurrentLocation: models.Hole(start),
	}
}

// CreateDeliveryStaff builds a staff member starting at the clubhouse.
func (f *AssetFactory) CreateDeliveryStaff(i int) *models.DeliveryAsset {
	return &models.DeliveryAsset{
		ID:              fmt.Sprintf("staff-%d", i+1),
		Name:            f.fake.Person().FirstName(),
		Kind:            models.AssetKindDeliveryStaff,
		Status:          models.AssetStatusIdle,
		CurrentLocation: models.Clubhouse(),
	}
}
