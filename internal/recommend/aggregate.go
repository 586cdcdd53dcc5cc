package recommend

import "menu-recommender/internal/models"

// Aggregate sums the macros of every record. A nil or empty slice yields the
// zero vector. Records with missing macros contribute nothing.
func Aggregate[T models.MacroSource](records []T) models.MacroVector {
	var total models.MacroVector
	for _, r := range records {
		total = total.Add(r.Macros())
	}
	return total
}
