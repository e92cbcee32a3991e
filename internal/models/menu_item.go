package models

import "time"

type MenuItem struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Price       int64      `json:"price"` // smallest currency unit (rupiah)
	ImageURL    string     `json:"imageUrl"`
	IsFavorite  bool       `json:"isFavorite,omitempty"`
	Category    string     `json:"category"`
	Rating      *float64   `json:"rating,omitempty"`
	PrepTime    *int       `json:"prepTime,omitempty"` // minutes
	Calories    *int       `json:"calories,omitempty"` // kcal
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

// MenuItemPatch carries the fields an admin edit may change. Nil fields are left untouched.
type MenuItemPatch struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Price       *int64   `json:"price,omitempty"`
	ImageURL    *string  `json:"imageUrl,omitempty"`
	Category    *string  `json:"category,omitempty"`
	IsFavorite  *bool    `json:"isFavorite,omitempty"`
	Rating      *float64 `json:"rating,omitempty"`
	PrepTime    *int     `json:"prepTime,omitempty"`
	Calories    *int     `json:"calories,omitempty"`
}

// Apply returns a copy of item with the patch fields set.
func (p MenuItemPatch) Apply(item MenuItem) MenuItem {
	if p.Name != nil {
		item.Name = *p.Name
	}
	if p.Description != nil {
		item.Description = *p.Description
	}
	if p.Price != nil {
		item.Price = *p.Price
	}
	if p.ImageURL != nil {
		item.ImageURL = *p.ImageURL
	}
	if p.Category != nil {
		item.Category = *p.Category
	}
	if p.IsFavorite != nil {
		item.IsFavorite = *p.IsFavorite
	}
	if p.Rating != nil {
		v := *p.Rating
		item.Rating = &v
	}
	if p.PrepTime != nil {
		v := *p.PrepTime
		item.PrepTime = &v
	}
	if p.Calories != nil {
		v := *p.Calories
		item.Calories = &v
	}
	return item
}
