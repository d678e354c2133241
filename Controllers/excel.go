package Controllers

import (
	"fmt"
	"log"
	"net/http"

	"DentaLedger/Models"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/gin-gonic/gin"
)

// ExportRevenueTable writes the committed-invoice rows for a date range into
// a spreadsheet and serves the file.
func ExportRevenueTable(c *gin.Context) {
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

	headers := map[string]string{
		"A1": "Issued Date",
		"B1": "Invoice No",
		"C1": "Patient ID",
		"D1": "Status",
		"E1": "Subtotal",
		"F1": "Tax",
		"G1": "Total",
		"H1": "Paid",
	}
	file := excelize.NewFile()
	sheet := "Revenue"
	file.NewSheet(sheet)
	file.DeleteSheet("Sheet1")
	for k, v := range headers {
		file.SetCellValue(sheet, k, v)
	}

	for i := 0; i < len(invoices); i++ {
		appendRowRevenue(sheet, file, i, invoices)
	}
	var filename string = "./Revenue.xlsx"
	if err := file.SaveAs(filename); err != nil {
		log.Println(err)
	}
	c.File(filename)
}

func appendRowRevenue(sheet string, file *excelize.File, index int, rows []Models.Invoice) (fileWriter *excelize.File) {
	rowCount := index + 2
	invoice := rows[index]
	file.SetCellValue(sheet, fmt.Sprintf("A%v", rowCount), invoice.IssuedDate.Format(dateLayout))
	file.SetCellValue(sheet, fmt.Sprintf("B%v", rowCount), invoice.InvoiceNo)
	file.SetCellValue(sheet, fmt.Sprintf("C%v", rowCount), invoice.PatientID)
	file.SetCellValue(sheet, fmt.Sprintf("D%v", rowCount), invoice.Status)
	file.SetCellValue(sheet, fmt.Sprintf("E%v", rowCount), invoice.Subtotal.String())
	file.SetCellValue(sheet, fmt.Sprintf("F%v", rowCount), invoice.Tax.String())
	file.SetCellValue(sheet, fmt.Sprintf("G%v", rowCount), invoice.Total.String())
	file.SetCellValue(sheet, fmt.Sprintf("H%v", rowCount), invoice.PaidAmount().String())
	return file
}
