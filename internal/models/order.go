package models

type OrderItem struct {
	MenuName string `json:"menuName"`
	Quantity int    `json:"quantity"`
	Price    int64  `json:"price"`
	Notes    string `json:"notes,omitempty"`
}

type Order struct {
	ID          string      `json:"id"`
	TableNumber string      `json:"tableNumber"`
	Status      string      `json:"status"` // "pending" or "completed"
	Timestamp   int64       `json:"timestamp"`
	Items       []OrderItem `json:"items"`
}

// Total sums price×quantity across the order lines.
func (o Order) Total() int64 {
	var total int64
	for _, item := range o.Items {
		total += item.Price * int64(item.Quantity)
	}
	return total
}

type OrderEvent struct {
	Type      string `json:"type"`
	Order     Order  `json:"order"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

type MenuEvent struct {
	Type      string `json:"type"`
	Version   uint64 `json:"version"`
	ItemCount int    `json:"item_count"`
	Timestamp int64  `json:"timestamp"`
}
