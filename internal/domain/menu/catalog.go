package menu

import "context"

// Catalog is the authoritative price and availability lookup.
type Catalog interface {
	// ResolveItems maps the requested ids to purchasable items. Ids that
	// are unknown, inactive, or unavailable are absent from the result;
	// callers must treat a missing id as invalid input and never
	// substitute a default price.
	ResolveItems(ctx context.Context, itemIDs []string) (map[string]*Item, error)

	ListAvailable(ctx context.Context) ([]*Item, error)
	Upsert(ctx context.Context, item *Item) error
	SetAvailability(ctx context.Context, itemID string, available bool) error
}

// ErrItemUnavailable indicates a cart line references an item the
// catalog would not sell
type ErrItemUnavailable struct {
	ItemID string
}

func (e ErrItemUnavailable) Error() string {
	return "item unavailable: " + e.ItemID
}

// ErrItemNotFound indicates no such item exists at all
type ErrItemNotFound struct {
	ItemID string
}

func (e ErrItemNotFound) Error() string {
	return "menu item not found: " + e.ItemID
}
