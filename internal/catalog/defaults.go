package catalog

import "github.com/pawonsalam/restosuite/internal/models"

const (
	PlaceholderImageURL   = "https://images.unsplash.com/photo-1546069901-ba9599a7e63c?auto=format&fit=crop&w=800&q=80"
	DefaultHeaderImageURL = "https://images.unsplash.com/photo-1572656631137-7935297eff55?auto=format&fit=crop&w=800&q=80"
)

func unsplash(photo string) string {
	return "https://images.unsplash.com/" + photo + "?auto=format&fit=crop&w=800&q=80"
}

func ptrFloat(v float64) *float64 { return &v }
func ptrInt(v int) *int           { return &v }

// DefaultMenuItems returns a fresh copy of the seed catalog.
func DefaultMenuItems() []models.MenuItem {
	return []models.MenuItem{
		{
			ID:          "1",
			Name:        "Nasi Goreng Spesial",
			Description: "Nasi goreng dengan bumbu rahasia warisan keluarga, disajikan dengan telur mata sapi, kerupuk udang, dan acar segar.",
			Price:       35000,
			ImageURL:    unsplash("photo-1603133872878-684f571d70f2"),
			IsFavorite:  true,
			Category:    models.CategoryMainCourse,
			Rating:      ptrFloat(4.8),
			PrepTime:    ptrInt(15),
			Calories:    ptrInt(450),
		},
		{
			ID:          "2",
			Name:        "Sate Ayam Madura",
			Description: "Sate ayam daging paha juicy dengan bumbu kacang yang gurih dan legit, lengkap dengan irisan bawang merah dan cabai rawit.",
			Price:       40000,
			ImageURL:    unsplash("photo-1555126634-323283e090fa"),
			IsFavorite:  true,
			Category:    models.CategoryMainCourse,
			Rating:      ptrFloat(4.9),
			PrepTime:    ptrInt(20),
			Calories:    ptrInt(380),
		},
		{
			ID:          "3",
			Name:        "Beef Burger Premium",
			Description: "Burger daging sapi Australia 150gr dengan keju cheddar leleh, selada organik, tomat, dan saus spesial buatan sendiri.",
			Price:       55000,
			ImageURL:    unsplash("photo-1568901346375-23c9450c58cd"),
			Category:    models.CategoryMainCourse,
			Rating:      ptrFloat(4.5),
			PrepTime:    ptrInt(15),
			Calories:    ptrInt(620),
		},
		{
			ID:          "4",
			Name:        "Spaghetti Bolognese",
			Description: "Pasta spaghetti al dente dengan saus daging sapi cincang tomat klasik bertabur keju parmesan asli.",
			Price:       45000,
			ImageURL:    unsplash("photo-1622973536968-3ead9e780960"),
			Category:    models.CategoryMainCourse,
			Rating:      ptrFloat(4.6),
			PrepTime:    ptrInt(18),
			Calories:    ptrInt(410),
		},
		{
			ID:          "5",
			Name:        "Es Teh Manis",
			Description: "Teh melati pilihan diseduh dengan suhu pas, disajikan dingin menyegarkan dahaga.",
			Price:       8000,
			ImageURL:    unsplash("photo-1556679343-c7306c1976bc"),
			Category:    models.CategoryDrinks,
			Rating:      ptrFloat(4.5),
			PrepTime:    ptrInt(5),
			Calories:    ptrInt(90),
		},
		{
			ID:          "6",
			Name:        "Kopi Susu Gula Aren",
			Description: "Kopi espresso robusta dicampur dengan susu segar creamy dan gula aren organik asli.",
			Price:       18000,
			ImageURL:    unsplash("photo-1541167760496-1628856ab772"),
			IsFavorite:  true,
			Category:    models.CategoryDrinks,
			Rating:      ptrFloat(4.9),
			PrepTime:    ptrInt(5),
			Calories:    ptrInt(180),
		},
	}
}

func DefaultCategories() []string {
	return []string{
		models.CategoryBestseller,
		models.CategoryNew,
		models.CategoryPackageTwo,
		models.CategoryPackageFour,
		models.CategoryFamily,
		models.CategoryMainCourse,
		models.CategoryDrinks,
		models.CategorySnack,
		models.CategorySouvenir,
	}
}

// seedImageURL is the remote image a committed item falls back to once its
// inline image has moved into the asset store.
func seedImageURL(id string) string {
	for _, item := range DefaultMenuItems() {
		if item.ID == id {
			return item.ImageURL
		}
	}
	return PlaceholderImageURL
}
