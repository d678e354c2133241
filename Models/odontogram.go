package Models

import (
	"time"

	"gorm.io/gorm"
)

const (
	ToothTypeIncisor  = "incisor"
	ToothTypeCanine   = "canine"
	ToothTypePremolar = "premolar"
	ToothTypeMolar    = "molar"
)

const (
	ConditionHealthy   = "healthy"
	ConditionCaries    = "caries"
	ConditionFilled    = "filled"
	ConditionCrowned   = "crowned"
	ConditionMissing   = "missing"
	ConditionRootCanal = "root-canal"
	ConditionExtracted = "extracted"
	ConditionImplant   = "implant"
	ConditionFractured = "fractured"
)

const (
	SurfaceMesial   = "mesial"
	SurfaceDistal   = "distal"
	SurfaceBuccal   = "buccal"
	SurfaceLingual  = "lingual"
	SurfaceOcclusal = "occlusal"
)

// Odontogram is a full-mouth chart: exactly 32 tooth records, one per
// universal tooth number. A patient has at most one current chart; superseded
// charts stay behind as read-only history. Version is the optimistic
// concurrency token; every mutation of the chart or its teeth bumps it.
type Odontogram struct {
	gorm.Model
	PatientID    uint          `gorm:"not null;index" json:"patient_id"`
	IsCurrent    bool          `gorm:"not null;default:true" json:"is_current"`
	Version      uint          `gorm:"not null;default:1" json:"version"`
	SupersededAt *time.Time    `json:"superseded_at,omitempty"`
	Teeth        []ToothRecord `gorm:"constraint:OnDelete:CASCADE;" json:"teeth,omitempty"`
}

type ToothRecord struct {
	gorm.Model
	OdontogramID uint           `gorm:"not null;uniqueIndex:idx_chart_tooth" json:"odontogram_id"`
	ToothNumber  int            `gorm:"not null;uniqueIndex:idx_chart_tooth" json:"tooth_number"`
	ToothType    string         `gorm:"size:20;not null" json:"tooth_type"`
	Condition    string         `gorm:"size:20;not null;default:'healthy'" json:"condition"`
	Surfaces     []ToothSurface `gorm:"constraint:OnDelete:CASCADE;" json:"surfaces,omitempty"`
}

// ToothSurface rows are append-only: superseding a surface condition closes
// the old row with SupersededAt and inserts a new one, keeping per-surface
// history.
type ToothSurface struct {
	gorm.Model
	ToothRecordID uint       `gorm:"not null;index" json:"tooth_record_id"`
	Surface       string     `gorm:"size:20;not null" json:"surface"`
	Condition     string     `gorm:"size:20;not null" json:"condition"`
	SupersededAt  *time.Time `json:"superseded_at,omitempty"`
}

// ToothTypeForNumber maps universal numbering (1-32) to tooth type.
func ToothTypeForNumber(n int) string {
	switch {
	case n >= 1 && n <= 3, n >= 14 && n <= 19, n >= 30 && n <= 32:
		return ToothTypeMolar
	case n == 4, n == 5, n == 12, n == 13, n == 20, n == 21, n == 28, n == 29:
		return ToothTypePremolar
	case n == 6, n == 11, n == 22, n == 27:
		return ToothTypeCanine
	default:
		return ToothTypeIncisor
	}
}

func ValidCondition(condition string) bool {
	switch condition {
	case ConditionHealthy, ConditionCaries, ConditionFilled, ConditionCrowned,
		ConditionMissing, ConditionRootCanal, ConditionExtracted,
		ConditionImplant, ConditionFractured:
		return true
	}
	return false
}

func ValidSurface(surface string) bool {
	switch surface {
	case SurfaceMesial, SurfaceDistal, SurfaceBuccal, SurfaceLingual, SurfaceOcclusal:
		return true
	}
	return false
}

// NewOdontogram builds a current chart with its 32 healthy teeth. The teeth
// are created together with the chart and never individually deleted.
func NewOdontogram(patientID uint) Odontogram {
	chart := Odontogram{PatientID: patientID, IsCurrent: true, Version: 1}
	for n := 1; n <= 32; n++ {
		chart.Teeth = append(chart.Teeth, ToothRecord{
			ToothNumber: n,
			ToothType:   ToothTypeForNumber(n),
			Condition:   ConditionHealthy,
		})
	}
	return chart
}

// IsTerminal reports whether the tooth accepts no further mutation.
func (t *ToothRecord) IsTerminal() bool {
	return t.Condition == ConditionMissing || t.Condition == ConditionExtracted
}

// ActiveSurface returns the open (non-superseded) row for the given surface,
// if any.
func ActiveSurface(db *gorm.DB, toothRecordID uint, surface string) (*ToothSurface, error) {
	var rows []ToothSurface
	err := db.Where("tooth_record_id = ? AND surface = ? AND superseded_at IS NULL", toothRecordID, surface).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// BumpOdontogramVersion is the optimistic concurrency gate. It increments the
// chart version only if the caller's last-known version still matches;
// otherwise the caller lost a race and must re-fetch.
func BumpOdontogramVersion(tx *gorm.DB, odontogramID uint, version uint) error {
	res := tx.Model(&Odontogram{}).
		Where("id = ? AND version = ?", odontogramID, version).
		Update("version", gorm.Expr("version + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := tx.Model(&Odontogram{}).Where("id = ?", odontogramID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return Errf(ErrNotFound, "odontogram %d not found", odontogramID)
		}
		return Errf(ErrConcurrentModification, "odontogram %d was modified concurrently, re-fetch and retry", odontogramID)
	}
	return nil
}
