package Controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"DentaLedger/Models"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	// Each sqlite :memory: connection is its own database; pin the pool to
	// one connection so every query sees the migrated schema.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, Models.Migrate(db))

	Models.DB = db
	Models.Catalog = Models.NewDBCatalog(db)
	return db
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	router.POST("/CreatePatient", CreatePatient)
	router.POST("/CreateOdontogram", CreateOdontogram)
	router.POST("/FetchCurrentOdontogram", FetchCurrentOdontogram)
	router.POST("/FetchOdontogramHistory", FetchOdontogramHistory)
	router.POST("/UpdateTooth", UpdateTooth)
	router.POST("/AddToothSurface", AddToothSurface)
	router.POST("/AddTreatment", AddTreatment)
	router.POST("/MarkTreatmentCompleted", MarkTreatmentCompleted)
	router.POST("/DeleteTreatment", DeleteTreatment)
	router.POST("/FetchTreatments", FetchTreatments)
	router.POST("/PreviewInvoice", PreviewInvoice)
	router.POST("/CommitInvoice", CommitInvoice)
	router.POST("/FetchInvoice", FetchInvoice)
	router.POST("/FetchPatientInvoices", FetchPatientInvoices)
	router.POST("/RegisterPayment", RegisterPayment)
	router.POST("/CancelInvoice", CancelInvoice)
	router.POST("/FetchRevenue", FetchRevenue)
	router.GET("/FetchTreatmentCatalog", FetchTreatmentCatalog)
	router.POST("/AddCatalogTreatment", AddCatalogTreatment)
	router.POST("/EditCatalogTreatment", EditCatalogTreatment)

	return router
}

func doPost(t *testing.T, router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	w := httptest.NewRecorder()
	req, err := http.NewRequest("POST", path, bytes.NewBuffer(payload))
	require.NoError(t, err)
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Code string `json:"code"`
	}
	decodeBody(t, w, &body)
	return body.Code
}

type clinicFixture struct {
	Patient Models.Patient
	Doctor  Models.Doctor
	Chart   Models.Odontogram
}

// seedClinic creates a patient with a current chart, a doctor and the two
// catalog entries most tests bill against.
func seedClinic(t *testing.T, db *gorm.DB) clinicFixture {
	t.Helper()

	patient := Models.Patient{Name: "Maria Fernanda", Phone: "555-0101", Gender: "female", Age: 34}
	require.NoError(t, db.Create(&patient).Error)

	doctor := Models.Doctor{Name: "Dr. Galvez", Phone: "555-0102", Specialty: "endodontics"}
	require.NoError(t, db.Create(&doctor).Error)

	items := []Models.TreatmentCatalogItem{
		{Code: "D101", Name: "Composite filling", Category: "restorative", DefaultPrice: decimal.RequireFromString("500.00")},
		{Code: "D900", Name: "Full mouth cleaning", Category: "preventive", DefaultPrice: decimal.RequireFromString("200.00")},
	}
	for i := range items {
		require.NoError(t, db.Create(&items[i]).Error)
	}

	chart := Models.NewOdontogram(patient.ID)
	require.NoError(t, db.Create(&chart).Error)

	return clinicFixture{Patient: patient, Doctor: doctor, Chart: chart}
}

// toothByNumber finds one of the fixture chart's teeth.
func toothByNumber(t *testing.T, db *gorm.DB, chartID uint, number int) Models.ToothRecord {
	t.Helper()
	var tooth Models.ToothRecord
	require.NoError(t, db.Where("odontogram_id = ? AND tooth_number = ?", chartID, number).First(&tooth).Error)
	return tooth
}

// addCompletedTreatment records and completes a billable entry directly.
func addCompletedTreatment(t *testing.T, db *gorm.DB, fix clinicFixture, toothID *uint, code, name, price string) Models.ToothTreatment {
	t.Helper()
	treatment := Models.ToothTreatment{
		OdontogramID:  fix.Chart.ID,
		ToothRecordID: toothID,
		TreatmentCode: code,
		TreatmentName: name,
		DoctorID:      fix.Doctor.ID,
		DoctorName:    fix.Doctor.Name,
		Price:         decimal.RequireFromString(price),
		IsCompleted:   true,
	}
	require.NoError(t, db.Create(&treatment).Error)
	return treatment
}
