package Controllers

import (
	"log"
	"net/http"
	"time"

	"DentaLedger/Models"
	"DentaLedger/SSE"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CreateOdontogram opens a chart for a patient. A patient has at most one
// current chart; pass reopen to supersede it with a fresh one (the old chart
// stays behind as immutable history).
func CreateOdontogram(c *gin.Context) {
	var input struct {
		PatientID uint `json:"patient_id" binding:"required"`
		Reopen    bool `json:"reopen"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	exists, err := Models.PatientExists(Models.DB, input.PatientID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !exists {
		respondError(c, Models.Errf(Models.ErrNotFound, "patient %d not found", input.PatientID))
		return
	}

	tx := Models.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var current Models.Odontogram
	err = tx.Where("patient_id = ? AND is_current = ?", input.PatientID, true).First(&current).Error
	switch {
	case err == nil && !input.Reopen:
		tx.Rollback()
		respondError(c, Models.Errf(Models.ErrDuplicateActiveOdontogram, "patient %d already has a current odontogram", input.PatientID))
		return
	case err == nil && input.Reopen:
		now := time.Now()
		if err := tx.Model(&current).Updates(map[string]interface{}{"is_current": false, "superseded_at": now}).Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	case err != gorm.ErrRecordNotFound:
		tx.Rollback()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	chart := Models.NewOdontogram(input.PatientID)
	if err := tx.Create(&chart).Error; err != nil {
		tx.Rollback()
		// The unique index over current charts catches a concurrent create
		// that slipped past the read above.
		var existing Models.Odontogram
		if Models.DB.Where("patient_id = ? AND is_current = ?", input.PatientID, true).First(&existing).Error == nil {
			respondError(c, Models.Errf(Models.ErrDuplicateActiveOdontogram, "patient %d already has a current odontogram", input.PatientID))
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit transaction"})
		return
	}

	SSE.Broadcaster.Publish(SSE.Event{Entity: "odontogram", ID: chart.ID, Action: "created"})
	c.JSON(http.StatusOK, chart)
}

func FetchCurrentOdontogram(c *gin.Context) {
	var input struct {
		PatientID uint `json:"patient_id" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var chart Models.Odontogram
	err := Models.DB.Where("patient_id = ? AND is_current = ?", input.PatientID, true).
		Preload("Teeth", func(db *gorm.DB) *gorm.DB { return db.Order("tooth_number") }).
		Preload("Teeth.Surfaces").
		First(&chart).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			respondError(c, Models.Errf(Models.ErrNotFound, "patient %d has no current odontogram", input.PatientID))
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, chart)
}

func FetchOdontogramHistory(c *gin.Context) {
	var input struct {
		PatientID uint `json:"patient_id" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var charts []Models.Odontogram
	err := Models.DB.Where("patient_id = ?", input.PatientID).
		Order("created_at desc").
		Preload("Teeth", func(db *gorm.DB) *gorm.DB { return db.Order("tooth_number") }).
		Preload("Teeth.Surfaces").
		Find(&charts).Error
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, charts)
}

// UpdateTooth changes a tooth's whole-tooth condition. The caller supplies
// the chart version it last saw; a mismatch means someone else charted in
// between and the request is rejected instead of silently overwriting.
func UpdateTooth(c *gin.Context) {
	var input struct {
		ToothRecordID uint   `json:"tooth_record_id" binding:"required"`
		Condition     string `json:"condition" binding:"required"`
		Version       uint   `json:"version" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !Models.ValidCondition(input.Condition) {
		respondError(c, Models.Errf(Models.ErrValidation, "unknown condition %q", input.Condition))
		return
	}

	tx := Models.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var tooth Models.ToothRecord
	if err := tx.First(&tooth, input.ToothRecordID).Error; err != nil {
		tx.Rollback()
		respondError(c, Models.Errf(Models.ErrNotFound, "tooth record %d not found", input.ToothRecordID))
		return
	}

	var owner Models.Odontogram
	if err := tx.First(&owner, tooth.OdontogramID).Error; err != nil {
		tx.Rollback()
		respondError(c, Models.Errf(Models.ErrNotFound, "odontogram %d not found", tooth.OdontogramID))
		return
	}
	// Superseded charts are historical snapshots.
	if !owner.IsCurrent {
		tx.Rollback()
		respondError(c, Models.Errf(Models.ErrInvalidState, "odontogram %d is superseded and read-only", owner.ID))
		return
	}

	// A no-op write of the same condition is allowed even on terminal teeth.
	if tooth.IsTerminal() && input.Condition != tooth.Condition {
		tx.Rollback()
		respondError(c, Models.Errf(Models.ErrInvalidState, "tooth %d is %s and accepts no further changes", tooth.ToothNumber, tooth.Condition))
		return
	}

	if err := Models.BumpOdontogramVersion(tx, tooth.OdontogramID, input.Version); err != nil {
		tx.Rollback()
		respondError(c, err)
		return
	}

	if err := tx.Model(&tooth).Update("condition", input.Condition).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit transaction"})
		return
	}

	var chart Models.Odontogram
	if err := Models.DB.Preload("Teeth", func(db *gorm.DB) *gorm.DB { return db.Order("tooth_number") }).
		Preload("Teeth.Surfaces").
		First(&chart, tooth.OdontogramID).Error; err != nil {
		log.Println(err)
	}
	SSE.Broadcaster.Publish(SSE.Event{Entity: "odontogram", ID: tooth.OdontogramID, Action: "updated"})
	c.JSON(http.StatusOK, chart)
}

// AddToothSurface records a condition on one surface of a tooth. Re-charting
// a surface that already carries an active condition requires an explicit
// supersede, which closes the old row rather than rewriting it.
func AddToothSurface(c *gin.Context) {
	var input struct {
		ToothRecordID uint   `json:"tooth_record_id" binding:"required"`
		Surface       string `json:"surface" binding:"required"`
		Condition     string `json:"condition" binding:"required"`
		Supersede     bool   `json:"supersede"`
		Version       uint   `json:"version" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !Models.ValidSurface(input.Surface) {
		respondError(c, Models.Errf(Models.ErrValidation, "unknown surface %q", input.Surface))
		return
	}
	if !Models.ValidCondition(input.Condition) {
		respondError(c, Models.Errf(Models.ErrValidation, "unknown condition %q", input.Condition))
		return
	}

	tx := Models.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var tooth Models.ToothRecord
	if err := tx.First(&tooth, input.ToothRecordID).Error; err != nil {
		tx.Rollback()
		respondError(c, Models.Errf(Models.ErrNotFound, "tooth record %d not found", input.ToothRecordID))
		return
	}

	var owner Models.Odontogram
	if err := tx.First(&owner, tooth.OdontogramID).Error; err != nil {
		tx.Rollback()
		respondError(c, Models.Errf(Models.ErrNotFound, "odontogram %d not found", tooth.OdontogramID))
		return
	}
	if !owner.IsCurrent {
		tx.Rollback()
		respondError(c, Models.Errf(Models.ErrInvalidState, "odontogram %d is superseded and read-only", owner.ID))
		return
	}

	if tooth.IsTerminal() {
		tx.Rollback()
		respondError(c, Models.Errf(Models.ErrInvalidState, "tooth %d is %s and accepts no surface changes", tooth.ToothNumber, tooth.Condition))
		return
	}

	active, err := Models.ActiveSurface(tx, tooth.ID, input.Surface)
	if err != nil {
		tx.Rollback()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if active != nil && active.Condition != Models.ConditionHealthy && !input.Supersede {
		tx.Rollback()
		respondError(c, Models.Errf(Models.ErrDuplicateSurface, "surface %s of tooth %d already has condition %s", input.Surface, tooth.ToothNumber, active.Condition))
		return
	}

	if err := Models.BumpOdontogramVersion(tx, tooth.OdontogramID, input.Version); err != nil {
		tx.Rollback()
		respondError(c, err)
		return
	}

	if active != nil {
		now := time.Now()
		if err := tx.Model(active).Update("superseded_at", now).Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	surface := Models.ToothSurface{
		ToothRecordID: tooth.ID,
		Surface:       input.Surface,
		Condition:     input.Condition,
	}
	if err := tx.Create(&surface).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit transaction"})
		return
	}

	var updated Models.ToothRecord
	if err := Models.DB.Preload("Surfaces").First(&updated, tooth.ID).Error; err != nil {
		log.Println(err)
	}
	SSE.Broadcaster.Publish(SSE.Event{Entity: "odontogram", ID: tooth.OdontogramID, Action: "updated"})
	c.JSON(http.StatusOK, updated)
}
