package models

import "time"

// Restaurant is a branch employees can be assigned to.
type Restaurant struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// RestaurantRef is the branch summary embedded in user responses.
type RestaurantRef struct {
	Name string `json:"name"`
}
