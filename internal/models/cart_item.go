package models

type CartItem struct {
	MenuItem
	Quantity int    `json:"quantity"`
	Notes    string `json:"notes"`
}

type Cart struct {
	Items      []CartItem `json:"items"`
	TotalItems int        `json:"totalItems"`
	TotalPrice int64      `json:"totalPrice"`
}
