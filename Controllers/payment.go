package Controllers

import (
	"net/http"
	"time"

	"DentaLedger/Models"
	"DentaLedger/SSE"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// RegisterPayment appends a payment against an open invoice and recomputes
// its status from the new balance. Payments and cancellation on one invoice
// are serialized; different invoices proceed in parallel.
func RegisterPayment(c *gin.Context) {
	var input struct {
		InvoiceID uint   `json:"invoice_id" binding:"required"`
		Amount    string `json:"amount" binding:"required"`
		Method    string `json:"method" binding:"required"`
		Date      string `json:"date"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	amount, err := parseMoney(input.Amount)
	if err != nil {
		respondError(c, err)
		return
	}
	if !amount.GreaterThan(decimal.Zero) {
		respondError(c, Models.Errf(Models.ErrValidation, "payment amount must be greater than zero"))
		return
	}
	if !Models.ValidPaymentMethod(input.Method) {
		respondError(c, Models.Errf(Models.ErrValidation, "unknown payment method %q", input.Method))
		return
	}

	paidDate := time.Now()
	if input.Date != "" {
		paidDate, err = parseDate(input.Date)
		if err != nil {
			respondError(c, err)
			return
		}
	}

	mu := Models.LockInvoice(input.InvoiceID)
	defer mu.Unlock()

	tx := Models.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	invoice, err := Models.GetInvoice(tx, input.InvoiceID)
	if err != nil {
		tx.Rollback()
		respondError(c, err)
		return
	}

	if !invoice.Payable() {
		tx.Rollback()
		respondError(c, Models.Errf(Models.ErrInvoiceNotPayable, "invoice %s is %s and cannot accept payments", invoice.InvoiceNo, invoice.Status))
		return
	}

	amount = Models.RoundMoney(amount)
	paid := invoice.PaidAmount()
	if paid.Add(amount).GreaterThan(invoice.Total) {
		tx.Rollback()
		respondError(c, Models.Errf(Models.ErrOverpaymentRejected, "payment of %s would exceed the remaining balance of %s", amount, invoice.Total.Sub(paid)))
		return
	}

	payment := Models.Payment{
		InvoiceID: invoice.ID,
		Amount:    amount,
		Method:    input.Method,
		PaidDate:  paidDate,
	}
	if err := tx.Create(&payment).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status := Models.SettleStatus(invoice.Total, paid.Add(amount))
	if err := tx.Model(&Models.Invoice{}).Where("id = ?", invoice.ID).Update("status", status).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit transaction"})
		return
	}

	updated, err := Models.GetInvoice(Models.DB, invoice.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	SSE.Broadcaster.Publish(SSE.Event{Entity: "invoice", ID: invoice.ID, Action: "payment"})
	c.JSON(http.StatusOK, gin.H{
		"invoice":     updated,
		"paid_amount": updated.PaidAmount(),
		"balance_due": updated.BalanceDue(),
	})
}

// CancelInvoice reverses an invoice's financial effect without deleting
// history: the invoice and its lines stay, the claimed treatment entries are
// released so they can be billed again. Fully paid invoices need a refund
// workflow instead.
func CancelInvoice(c *gin.Context) {
	var input struct {
		InvoiceID uint   `json:"invoice_id" binding:"required"`
		Reason    string `json:"reason"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.Reason == "" {
		respondError(c, Models.Errf(Models.ErrValidation, "a cancellation reason is required"))
		return
	}

	mu := Models.LockInvoice(input.InvoiceID)
	defer mu.Unlock()

	tx := Models.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	invoice, err := Models.GetInvoice(tx, input.InvoiceID)
	if err != nil {
		tx.Rollback()
		respondError(c, err)
		return
	}

	switch invoice.Status {
	case Models.InvoiceCancelled:
		tx.Rollback()
		respondError(c, Models.Errf(Models.ErrAlreadyCancelled, "invoice %s is already cancelled", invoice.InvoiceNo))
		return
	case Models.InvoicePaid:
		tx.Rollback()
		respondError(c, Models.Errf(Models.ErrAlreadyPaid, "invoice %s is fully paid; use the refund workflow", invoice.InvoiceNo))
		return
	case Models.InvoiceDraft:
		tx.Rollback()
		respondError(c, Models.Errf(Models.ErrInvalidState, "invoice %s was never issued", invoice.InvoiceNo))
		return
	}

	updates := map[string]interface{}{
		"status":              Models.InvoiceCancelled,
		"cancellation_reason": input.Reason,
	}
	if err := tx.Model(&Models.Invoice{}).Where("id = ?", invoice.ID).Updates(updates).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := Models.ReleaseTreatments(tx, invoice.ID); err != nil {
		tx.Rollback()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit transaction"})
		return
	}

	updated, err := Models.GetInvoice(Models.DB, invoice.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	SSE.Broadcaster.Publish(SSE.Event{Entity: "invoice", ID: invoice.ID, Action: "cancelled"})
	c.JSON(http.StatusOK, updated)
}
