package catalog

import "github.com/pawonsalam/restosuite/internal/models"

// Filter returns the items visible under label. The bestseller label selects
// favourites; any other label is an exact category match.
func Filter(items []models.MenuItem, label string) []models.MenuItem {
	out := make([]models.MenuItem, 0, len(items))
	for _, item := range items {
		if label == models.CategoryBestseller {
			if item.IsFavorite {
				out = append(out, item)
			}
			continue
		}
		if item.Category == label {
			out = append(out, item)
		}
	}
	return out
}
