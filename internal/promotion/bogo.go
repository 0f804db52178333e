package promotion

import (
	"fmt"
	"sort"

	"github.com/dukerupert/sindri/internal/domain"
)

// bogoQuote implements buy-X-get-Y: for every full set of buy+get eligible
// units, get units are discounted at GetDiscountPercent (100 = free). The
// discount lands on the *cheapest* eligible units first — a deliberate
// customer-favoring tie-break, pinned by tests.
func bogoQuote(p domain.Promotion, elig []domain.CartLine) *Quote {
	spec := p.BOGO
	if spec == nil || spec.BuyQuantity <= 0 || spec.GetQuantity <= 0 {
		return &Quote{Reason: "This offer is not configured"}
	}

	n := totalQuantity(elig)
	setSize := spec.BuyQuantity + spec.GetQuantity
	setCount := n / setSize
	if setCount == 0 {
		remaining := setSize - n
		return &Quote{
			Reason: fmt.Sprintf("Add %d more eligible item(s) to unlock buy %d get %d", remaining, spec.BuyQuantity, spec.GetQuantity),
		}
	}

	freeUnits := setCount * spec.GetQuantity

	units := expandUnits(elig)
	sort.SliceStable(units, func(i, j int) bool {
		return units[i].priceCents < units[j].priceCents
	})

	discounted := units[:freeUnits]
	var discount int64
	for _, u := range discounted {
		discount += percentOf(u.priceCents, spec.GetDiscountPercent)
	}

	return &Quote{
		DiscountCents:   discount,
		Reason:          fmt.Sprintf("Buy %d get %d at %g%% off: %d unit(s) discounted", spec.BuyQuantity, spec.GetQuantity, spec.GetDiscountPercent, freeUnits),
		AffectedLineIDs: distinctLineIDs(discounted),
	}
}
