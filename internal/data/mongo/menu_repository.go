// Package mongo provides the MongoDB implementation of the menu catalog.
// The menu is read-mostly: staff edit items rarely, terminals resolve prices
// on every cart mutation.
package mongo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/campus-canteen-ledger/internal/domain/menu"
)

const (
	// MenuCollectionName is the name of the menu items collection
	MenuCollectionName = "menu_items"
)

// MenuRepository implements the menu.Catalog interface for MongoDB
type MenuRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewMenuRepository creates a new MongoDB menu catalog
func NewMenuRepository(logger *slog.Logger, db *mongo.Database) menu.Catalog {
	return &MenuRepository{
		db:     db,
		logger: logger,
	}
}

// ResolveItems maps the requested ids to purchasable items. Ids that are
// unknown, inactive, or unavailable are absent from the result map.
func (r *MenuRepository) ResolveItems(ctx context.Context, itemIDs []string) (map[string]*menu.Item, error) {
	resolved := make(map[string]*menu.Item, len(itemIDs))
	if len(itemIDs) == 0 {
		return resolved, nil
	}

	collection := r.db.Collection(MenuCollectionName)

	filter := bson.M{
		"_id":       bson.M{"$in": itemIDs},
		"active":    true,
		"available": true,
	}

	cursor, err := collection.Find(ctx, filter)
	if err != nil {
		r.logger.Error("Failed to resolve menu items", "error", err)
		return nil, fmt.Errorf("failed to resolve menu items: %w", err)
	}
	defer cursor.Close(ctx)

	var items []*menu.Item
	if err := cursor.All(ctx, &items); err != nil {
		r.logger.Error("Failed to decode menu items", "error", err)
		return nil, fmt.Errorf("failed to decode menu items: %w", err)
	}

	for _, item := range items {
		resolved[item.ID] = item
	}

	return resolved, nil
}

// ListAvailable retrieves all purchasable items sorted by category and name
func (r *MenuRepository) ListAvailable(ctx context.Context) ([]*menu.Item, error) {
	collection := r.db.Collection(MenuCollectionName)

	filter := bson.M{"active": true, "available": true}
	opts := options.Find().SetSort(bson.D{{Key: "category", Value: 1}, {Key: "name", Value: 1}})

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to list menu items", "error", err)
		return nil, fmt.Errorf("failed to list menu items: %w", err)
	}
	defer cursor.Close(ctx)

	var items []*menu.Item
	if err := cursor.All(ctx, &items); err != nil {
		r.logger.Error("Failed to decode menu items", "error", err)
		return nil, fmt.Errorf("failed to decode menu items: %w", err)
	}

	return items, nil
}

// Upsert creates or replaces a menu item
func (r *MenuRepository) Upsert(ctx context.Context, item *menu.Item) error {
	collection := r.db.Collection(MenuCollectionName)

	item.UpdatedAt = time.Now()

	filter := bson.M{"_id": item.ID}
	opts := options.Replace().SetUpsert(true)

	_, err := collection.ReplaceOne(ctx, filter, item, opts)
	if err != nil {
		r.logger.Error("Failed to upsert menu item", "item_id", item.ID, "error", err)
		return fmt.Errorf("failed to upsert menu item: %w", err)
	}

	return nil
}

// SetAvailability flips the availability flag on an existing item.
// Returns ErrItemNotFound if the item doesn't exist or is soft-deleted.
func (r *MenuRepository) SetAvailability(ctx context.Context, itemID string, available bool) error {
	collection := r.db.Collection(MenuCollectionName)

	filter := bson.M{"_id": itemID, "active": true}
	update := bson.M{
		"$set": bson.M{
			"available":  available,
			"updated_at": time.Now(),
		},
	}

	result, err := collection.UpdateOne(ctx, filter, update)
	if err != nil {
		r.logger.Error("Failed to update menu item availability",
			"item_id", itemID,
			"available", available,
			"error", err)
		return fmt.Errorf("failed to update menu item availability: %w", err)
	}

	if result.MatchedCount == 0 {
		return menu.ErrItemNotFound{ItemID: itemID}
	}

	return nil
}
