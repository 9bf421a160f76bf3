package menu

import "time"

// Item is a purchasable canteen item. Price is authoritative; the
// transaction engine never trusts a client-supplied price.
type Item struct {
	ID        string    `json:"id" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	Category  string    `json:"category" bson:"category"`
	Price     int64     `json:"price" bson:"price"` // Minor units
	Available bool      `json:"available" bson:"available"`
	Active    bool      `json:"active" bson:"active"` // Soft-delete flag
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// Purchasable reports whether the item may appear on a cart line
func (i *Item) Purchasable() bool {
	return i.Active && i.Available
}
