package mongo

import (
	"testing"

	"log/slog"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestNewMenuRepository(t *testing.T) {
	db := &mongo.Database{}
	logger := slog.Default()

	repo := NewMenuRepository(logger, db)

	assert.NotNil(t, repo)
	assert.IsType(t, &MenuRepository{}, repo)
}

func TestMenuCollectionName(t *testing.T) {
	assert.Equal(t, "menu_items", MenuCollectionName)
}
