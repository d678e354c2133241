package Controllers

import (
	"net/http"

	"DentaLedger/Models"

	"github.com/gin-gonic/gin"
)

func FetchTreatmentCatalog(c *gin.Context) {
	var items []Models.TreatmentCatalogItem
	if err := Models.DB.Model(&Models.TreatmentCatalogItem{}).Order("code").Find(&items).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, items)
}

func AddCatalogTreatment(c *gin.Context) {
	var input Models.TreatmentCatalogItem
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Code == "" || input.Name == "" {
		respondError(c, Models.Errf(Models.ErrValidation, "code and name are required"))
		return
	}
	if input.DefaultPrice.IsNegative() {
		respondError(c, Models.Errf(Models.ErrValidation, "default price must not be negative"))
		return
	}
	if err := Models.DB.Create(&input).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, input)
}

// EditCatalogTreatment changes the price list for future recordings only;
// already-recorded treatments keep their snapshots.
func EditCatalogTreatment(c *gin.Context) {
	var input Models.TreatmentCatalogItem
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.ID == 0 {
		respondError(c, Models.Errf(Models.ErrValidation, "catalog item id is required"))
		return
	}
	if input.DefaultPrice.IsNegative() {
		respondError(c, Models.Errf(Models.ErrValidation, "default price must not be negative"))
		return
	}
	if err := Models.DB.Save(&input).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, input)
}

func DeleteCatalogTreatment(c *gin.Context) {
	var input struct {
		ID uint `json:"id"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := Models.DB.Delete(&Models.TreatmentCatalogItem{}, "id = ?", input.ID).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Catalog Item Deleted Successfully"})
}
