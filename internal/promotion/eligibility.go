package promotion

import (
	"time"

	"github.com/dukerupert/sindri/internal/domain"
	"github.com/google/uuid"
)

// Eligible decides whether a single cart line qualifies for a promotion.
// Pure: inactive promotions and promotions outside their activity window are
// never eligible, then the scope rules apply.
func Eligible(p domain.Promotion, line domain.CartLine, now time.Time) bool {
	if !p.InWindow(now) {
		return false
	}

	switch p.Scope.Kind {
	case domain.ScopeAll:
		return true
	case domain.ScopeProducts:
		return containsID(p.Scope.ProductIDs, line.ProductID)
	case domain.ScopeCategories:
		return matchesCategory(p.Scope, line)
	case domain.ScopePriceRange:
		return matchesPriceRange(p.Scope, line)
	case domain.ScopeCombined:
		return matchesCategory(p.Scope, line) && matchesPriceRange(p.Scope, line)
	default:
		return false
	}
}

// eligibleLines filters the cart down to lines the promotion may discount,
// preserving cart order.
func eligibleLines(p domain.Promotion, cart []domain.CartLine, now time.Time) []domain.CartLine {
	var out []domain.CartLine
	for _, line := range cart {
		if Eligible(p, line, now) {
			out = append(out, line)
		}
	}
	return out
}

// matchesCategory is false for lines that carry no category.
func matchesCategory(s domain.Scope, line domain.CartLine) bool {
	if line.CategoryID == nil {
		return false
	}
	return containsID(s.CategoryIDs, *line.CategoryID)
}

// matchesPriceRange treats a zero bound as unbounded on that side.
func matchesPriceRange(s domain.Scope, line domain.CartLine) bool {
	if s.MinPriceCents > 0 && line.UnitPriceCents < s.MinPriceCents {
		return false
	}
	if s.MaxPriceCents > 0 && line.UnitPriceCents > s.MaxPriceCents {
		return false
	}
	return true
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
