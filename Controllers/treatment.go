package Controllers

import (
	"net/http"

	"DentaLedger/Models"
	"DentaLedger/SSE"

	"github.com/gin-gonic/gin"
)

// AddTreatment records a clinical act against a tooth of the chart, or as a
// whole-mouth entry. Name and price come from the catalog at call time and
// are stored as copies; later catalog edits do not touch this record.
func AddTreatment(c *gin.Context) {
	var input struct {
		OdontogramID  uint    `json:"odontogram_id" binding:"required"`
		ToothRecordID *uint   `json:"tooth_record_id"`
		IsGlobal      bool    `json:"is_global_treatment"`
		TreatmentCode string  `json:"treatment_code" binding:"required"`
		DoctorID      uint    `json:"doctor_id" binding:"required"`
		Price         *string `json:"price"`
		PerformedDate string  `json:"performed_date" binding:"required"`
		IsCompleted   bool    `json:"is_completed"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Tooth-specific and whole-mouth are mutually exclusive targets.
	if input.IsGlobal == (input.ToothRecordID != nil) {
		respondError(c, Models.Errf(Models.ErrValidation, "exactly one of tooth_record_id or is_global_treatment must be set"))
		return
	}

	performedDate, err := parseDate(input.PerformedDate)
	if err != nil {
		respondError(c, err)
		return
	}

	var chart Models.Odontogram
	if err := Models.DB.First(&chart, input.OdontogramID).Error; err != nil {
		respondError(c, Models.Errf(Models.ErrNotFound, "odontogram %d not found", input.OdontogramID))
		return
	}

	if input.ToothRecordID != nil {
		var tooth Models.ToothRecord
		if err := Models.DB.First(&tooth, *input.ToothRecordID).Error; err != nil || tooth.OdontogramID != chart.ID {
			respondError(c, Models.Errf(Models.ErrInvalidTooth, "tooth record %d does not belong to odontogram %d", *input.ToothRecordID, chart.ID))
			return
		}
	}

	entry, err := Models.Catalog.Lookup(c.Request.Context(), input.TreatmentCode)
	if err != nil {
		respondError(c, err)
		return
	}

	doctor, err := Models.GetDoctorByID(input.DoctorID)
	if err != nil {
		respondError(c, err)
		return
	}

	price := entry.DefaultPrice
	if input.Price != nil {
		price, err = parseMoney(*input.Price)
		if err != nil {
			respondError(c, err)
			return
		}
	}
	if price.IsNegative() {
		respondError(c, Models.Errf(Models.ErrValidation, "price must not be negative"))
		return
	}

	treatment := Models.ToothTreatment{
		OdontogramID:  chart.ID,
		ToothRecordID: input.ToothRecordID,
		TreatmentCode: entry.Code,
		TreatmentName: entry.Name,
		DoctorID:      doctor.ID,
		DoctorName:    doctor.Name,
		PerformedDate: performedDate,
		Price:         Models.RoundMoney(price),
		IsCompleted:   input.IsCompleted,
	}
	if err := Models.DB.Create(&treatment).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	treatment.IsGlobal = treatment.IsGlobalTreatment()
	SSE.Broadcaster.Publish(SSE.Event{Entity: "treatment", ID: treatment.ID, Action: "created"})
	c.JSON(http.StatusOK, treatment)
}

// MarkTreatmentCompleted moves a planned entry into the billable-pending
// state. Invoiced entries are immutable.
func MarkTreatmentCompleted(c *gin.Context) {
	var input struct {
		TreatmentID uint `json:"treatment_id" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var treatment Models.ToothTreatment
	if err := Models.DB.First(&treatment, input.TreatmentID).Error; err != nil {
		respondError(c, Models.Errf(Models.ErrNotFound, "treatment %d not found", input.TreatmentID))
		return
	}

	if treatment.InvoiceID != nil {
		respondError(c, Models.Errf(Models.ErrInvalidState, "treatment %d is invoiced and immutable", treatment.ID))
		return
	}

	if err := Models.DB.Model(&treatment).Update("is_completed", true).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	treatment.IsCompleted = true
	SSE.Broadcaster.Publish(SSE.Event{Entity: "treatment", ID: treatment.ID, Action: "completed"})
	c.JSON(http.StatusOK, treatment)
}

// DeleteTreatment retracts a plan. Completed or invoiced history may not be
// deleted.
func DeleteTreatment(c *gin.Context) {
	var input struct {
		TreatmentID uint `json:"treatment_id" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var treatment Models.ToothTreatment
	if err := Models.DB.First(&treatment, input.TreatmentID).Error; err != nil {
		respondError(c, Models.Errf(Models.ErrNotFound, "treatment %d not found", input.TreatmentID))
		return
	}

	if treatment.InvoiceID != nil || treatment.IsCompleted {
		respondError(c, Models.Errf(Models.ErrInvalidState, "treatment %d is part of clinical history and cannot be deleted", treatment.ID))
		return
	}

	if err := Models.DB.Delete(&treatment).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	SSE.Broadcaster.Publish(SSE.Event{Entity: "treatment", ID: treatment.ID, Action: "deleted"})
	c.JSON(http.StatusOK, gin.H{"message": "Treatment Deleted Successfully"})
}

func FetchTreatments(c *gin.Context) {
	var input struct {
		OdontogramID uint `json:"odontogram_id" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var treatments []Models.ToothTreatment
	if err := Models.DB.Where("odontogram_id = ?", input.OdontogramID).Order("id").Find(&treatments).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, treatments)
}
