package dispatch

import "github.com/swoopdelivery/swoopsim/internal/models"

// GroupOrders clusters pending orders for batched delivery. Each group is
// seeded by the earliest unprocessed order and absorbs later orders within
// holeThreshold of the seed, up to maxPerBatch members, then sorts the group
// by hole number so the delivery run sweeps outward in one direction.
func GroupOrders(pending []*models.Order, holeThreshold, maxPerBatch int) [][]*models.Order {
	if len(pending) == 0 {
		return nil
	}
	if len(pending) == 1 {
		return [][]*models.Order{{pending[0]}}
	}

	var groups [][]*models.Order
	processed := make([]bool, len(pending))

	for i, seed := range pending {
		if processed[i] {
			continue
		}
		group := []*models.Order{seed}
		processed[i] = true

		for j := i + 1; j < len(pending); j++ {
			if processed[j] || len(group) >= maxPerBatch {
				continue
			}
			distance := seed.HoleNumber - pending[j].HoleNumber
			if distance < 0 {
				distance = -distance
			}
			if distance <= holeThreshold {
				group = append(group, pending[j])
				processed[j] = true
			}
		}

		sortByHole(group)
		groups = append(groups, group)
	}

	return groups
}

func sortByHole(orders []*models.Order) {
	// insertion sort keeps equal holes in arrival order
	for i := 1; i < len(orders); i++ {
		for j := i; j > 0 && orders[j].HoleNumber < orders[j-1].HoleNumber; j-- {
			orders[j], orders[j-1] = orders[j-1], orders[j]
		}
	}
}
