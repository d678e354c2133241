package Models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ToothTreatment is one ledger entry: a planned or completed clinical act,
// tied to a single tooth or to the whole mouth (ToothRecordID nil). Code,
// name, price and doctor name are snapshots taken when the entry is recorded.
// Once InvoiceID is set the entry is immutable.
type ToothTreatment struct {
	gorm.Model
	OdontogramID  uint            `gorm:"not null;index" json:"odontogram_id"`
	ToothRecordID *uint           `gorm:"index" json:"tooth_record_id,omitempty"`
	TreatmentCode string          `gorm:"size:20;not null" json:"treatment_code"`
	TreatmentName string          `gorm:"size:255;not null" json:"treatment_name"`
	DoctorID      uint            `gorm:"not null" json:"doctor_id"`
	DoctorName    string          `gorm:"size:255" json:"doctor_name"`
	PerformedDate time.Time       `json:"performed_date"`
	Price         decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	IsCompleted   bool            `gorm:"not null;default:false" json:"is_completed"`
	InvoiceID     *uint           `gorm:"index" json:"invoice_id,omitempty"`

	IsGlobal bool `gorm:"-" json:"is_global_treatment"`
}

func (t *ToothTreatment) IsGlobalTreatment() bool {
	return t.ToothRecordID == nil
}

func (t *ToothTreatment) AfterFind(tx *gorm.DB) error {
	t.IsGlobal = t.IsGlobalTreatment()
	return nil
}

// EligibleTreatments lists the completed, unclaimed entries for a chart: the
// preview set for the invoice generator.
func EligibleTreatments(db *gorm.DB, odontogramID uint) ([]ToothTreatment, error) {
	var treatments []ToothTreatment
	err := db.Where("odontogram_id = ? AND is_completed = ? AND invoice_id IS NULL", odontogramID, true).
		Order("id").
		Find(&treatments).Error
	return treatments, err
}

// ClaimTreatment associates one treatment entry with an invoice. The claim is
// a single conditional update: it succeeds only if the entry is still
// completed and unclaimed at the instant of the update, so two concurrent
// commits can never both take the same entry.
func ClaimTreatment(tx *gorm.DB, treatmentID uint, invoiceID uint) error {
	res := tx.Model(&ToothTreatment{}).
		Where("id = ? AND invoice_id IS NULL AND is_completed = ?", treatmentID, true).
		Update("invoice_id", invoiceID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return Errf(ErrStaleLine, "treatment %d is no longer billable, re-run the preview", treatmentID)
	}
	return nil
}

// ReleaseTreatments undoes the claims of a cancelled invoice so its source
// entries become billable again. The invoice lines stay behind as history.
func ReleaseTreatments(tx *gorm.DB, invoiceID uint) error {
	return tx.Model(&ToothTreatment{}).
		Where("invoice_id = ?", invoiceID).
		Update("invoice_id", nil).Error
}
