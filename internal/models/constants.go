package models

const (
	CategoryBestseller  = "Terlaris"
	CategoryNew         = "Menu Baru"
	CategoryPackageTwo  = "Menu Paket 2 Orang"
	CategoryPackageFour = "Paket 4 Orang"
	CategoryFamily      = "Paket Keluarga"
	CategoryMainCourse  = "Makanan Utama"
	CategoryDrinks      = "Minuman"
	CategorySnack       = "Snack"
	CategorySouvenir    = "Oleh-oleh"

	OrderStatusPending   = "pending"
	OrderStatusCompleted = "completed"

	EventOrderPlaced    = "OrderPlaced"
	EventOrderCompleted = "OrderCompleted"
	EventMenuCommitted  = "MenuCommitted"
)

// ShortcutCategories are pinned in the customer and admin views.
var ShortcutCategories = []string{CategoryBestseller, CategoryNew, CategoryFamily}
