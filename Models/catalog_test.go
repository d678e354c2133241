package Models

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestDBCatalogLookup(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, Migrate(db))

	require.NoError(t, db.Create(&TreatmentCatalogItem{
		Code:         "D101",
		Name:         "Composite filling",
		Category:     "restorative",
		DefaultPrice: d("500.00"),
	}).Error)

	catalog := NewDBCatalog(db)

	entry, err := catalog.Lookup(context.Background(), "D101")
	require.NoError(t, err)
	assert.Equal(t, "Composite filling", entry.Name)
	assert.True(t, entry.DefaultPrice.Equal(d("500.00")))

	t.Run("Unknown Code", func(t *testing.T) {
		_, err := catalog.Lookup(context.Background(), "D999")
		assert.Equal(t, ErrUnknownTreatmentCode, KindOf(err))
	})

	t.Run("Cancelled Context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := catalog.Lookup(ctx, "D101")
		assert.Error(t, err)
	})
}

func TestErrorKinds(t *testing.T) {
	err := Errf(ErrConcurrentModification, "chart %d moved", 3)
	assert.Equal(t, ErrConcurrentModification, KindOf(err))
	assert.True(t, err.Retryable())
	assert.Equal(t, 409, err.HTTPStatus())

	assert.False(t, Errf(ErrValidation, "bad input").Retryable())
	assert.Equal(t, 404, Errf(ErrNotFound, "gone").HTTPStatus())
	assert.Equal(t, 503, Errf(ErrCatalogUnavailable, "down").HTTPStatus())
}
