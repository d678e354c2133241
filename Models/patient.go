package Models

import (
	"gorm.io/gorm"
)

type Patient struct {
	gorm.Model
	Name        string       `json:"name"`
	Phone       string       `json:"phone"`
	Gender      string       `json:"gender"`
	Age         int          `json:"age"`
	Notes       string       `json:"notes"`
	Odontograms []Odontogram `json:"odontograms,omitempty"`
	Invoices    []Invoice    `json:"invoices,omitempty"`
}

func PatientExists(db *gorm.DB, id uint) (bool, error) {
	var count int64
	err := db.Model(&Patient{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
