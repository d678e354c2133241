package Models

import (
	"context"
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TreatmentCatalogItem is reference data: the clinic's price list. Recorded
// treatments snapshot code, name and price at recording time, so editing the
// catalog never rewrites history.
type TreatmentCatalogItem struct {
	gorm.Model
	Code         string          `gorm:"uniqueIndex;size:20;not null" json:"code"`
	Name         string          `gorm:"size:255;not null" json:"name"`
	Category     string          `gorm:"size:100" json:"category"`
	DefaultPrice decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"default_price"`
}

type CatalogEntry struct {
	Code         string          `json:"code"`
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	DefaultPrice decimal.Decimal `json:"default_price"`
}

// CatalogSource is the boundary to the treatment catalog. The ledger only
// consumes it; lookups must not hang the caller.
type CatalogSource interface {
	Lookup(ctx context.Context, code string) (CatalogEntry, error)
}

// Catalog is the source the treatment ledger resolves codes against. Wired to
// the database-backed catalog on startup; tests swap it out.
var Catalog CatalogSource

type DBCatalog struct {
	DB      *gorm.DB
	Timeout time.Duration
}

func NewDBCatalog(db *gorm.DB) *DBCatalog {
	timeout := 2000
	if ms, err := strconv.Atoi(os.Getenv("CATALOG_LOOKUP_TIMEOUT_MS")); err == nil && ms > 0 {
		timeout = ms
	}
	return &DBCatalog{DB: db, Timeout: time.Duration(timeout) * time.Millisecond}
}

func (cat *DBCatalog) Lookup(ctx context.Context, code string) (CatalogEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, cat.Timeout)
	defer cancel()

	var item TreatmentCatalogItem
	err := cat.DB.WithContext(ctx).Where("code = ?", code).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return CatalogEntry{}, Errf(ErrUnknownTreatmentCode, "no treatment with code %s", code)
		}
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return CatalogEntry{}, Errf(ErrCatalogUnavailable, "catalog lookup for %s timed out", code)
		}
		return CatalogEntry{}, err
	}

	return CatalogEntry{
		Code:         item.Code,
		Name:         item.Name,
		Category:     item.Category,
		DefaultPrice: item.DefaultPrice,
	}, nil
}
