package Controllers

import (
	"errors"
	"net/http"
	"time"

	"DentaLedger/Models"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

func parseDate(value string) (time.Time, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, Models.Errf(Models.ErrValidation, "bad date %q, expected YYYY-MM-DD", value)
	}
	return t, nil
}

func parseMoney(value string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, Models.Errf(Models.ErrValidation, "bad amount %q", value)
	}
	return amount, nil
}

// respondError maps domain error kinds onto HTTP statuses and keeps the kind
// in the payload so clients can tell retryable conflicts from terminal input
// errors.
func respondError(c *gin.Context, err error) {
	var derr *Models.DomainError
	if errors.As(err, &derr) {
		c.JSON(derr.Kind.HTTPStatus(), gin.H{
			"error":     derr.Message,
			"code":      string(derr.Kind),
			"retryable": derr.Kind.Retryable(),
		})
		return
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "code": string(Models.ErrNotFound), "retryable": false})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
