package entity

const (
	BadgeTrending = "Trending"
	BadgeFeatured = "Featured"
)

// ProtectedBadges are never replaced by the Trending escalation.
var ProtectedBadges = []string{BadgeTrending, BadgeFeatured}

// TrendingWishlistThreshold is the wishlist count that earns a Trending badge.
const TrendingWishlistThreshold = 3

type Vehicle struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
	Badge string `json:"badge,omitempty"`
}

// CanEscalateToTrending reports whether the current badge may be replaced.
func (v *Vehicle) CanEscalateToTrending() bool {
	for _, b := range ProtectedBadges {
		if v.Badge == b {
			return false
		}
	}
	return true
}
