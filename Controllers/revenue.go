package Controllers

import (
	"net/http"

	"DentaLedger/Models"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func committedInvoices(db *gorm.DB, dateFrom, dateTo string) ([]Models.Invoice, error) {
	statuses := []string{Models.InvoiceIssued, Models.InvoicePartiallyPaid, Models.InvoicePaid}
	query := db.Model(&Models.Invoice{}).Where("status IN ?", statuses)

	if (dateFrom == "") != (dateTo == "") {
		return nil, Models.Errf(Models.ErrValidation, "date_from and date_to must be provided together")
	}
	if dateFrom != "" && dateTo != "" {
		from, err := parseDate(dateFrom)
		if err != nil {
			return nil, err
		}
		to, err := parseDate(dateTo)
		if err != nil {
			return nil, err
		}
		// The range is inclusive of both end dates.
		query = query.Where("issued_date >= ? AND issued_date < ?", from, to.AddDate(0, 0, 1))
	}

	var invoices []Models.Invoice
	err := query.Order("issued_date").Preload("Payments").Find(&invoices).Error
	return invoices, err
}

// FetchRevenue sums committed, non-cancelled invoices over an optional issued
// date range. Draft and Cancelled invoices never count.
func FetchRevenue(c *gin.Context) {
	var input struct {
		DateFrom string `json:"date_from"`
		DateTo   string `json:"date_to"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	invoices, err := committedInvoices(Models.DB, input.DateFrom, input.DateTo)
	if err != nil {
		respondError(c, err)
		return
	}

	revenue := decimal.Zero
	collected := decimal.Zero
	for _, invoice := range invoices {
		revenue = revenue.Add(invoice.Total)
		collected = collected.Add(invoice.PaidAmount())
	}

	c.JSON(http.StatusOK, gin.H{
		"total_revenue":   revenue,
		"total_collected": collected,
		"invoice_count":   len(invoices),
		"invoices":        invoices,
	})
}
