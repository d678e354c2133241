package Controllers

import (
	"net/http"
	"testing"

	"DentaLedger/Models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOdontogram(t *testing.T) {
	db := setupTestDB(t)
	router := newTestRouter()

	patient := Models.Patient{Name: "Jorge Luna"}
	require.NoError(t, db.Create(&patient).Error)

	w := doPost(t, router, "/CreateOdontogram", map[string]interface{}{"patient_id": patient.ID})
	require.Equal(t, http.StatusOK, w.Code)

	var chart Models.Odontogram
	decodeBody(t, w, &chart)
	require.Len(t, chart.Teeth, 32)

	seen := map[int]bool{}
	for _, tooth := range chart.Teeth {
		assert.False(t, seen[tooth.ToothNumber], "tooth number %d appears twice", tooth.ToothNumber)
		seen[tooth.ToothNumber] = true
		assert.GreaterOrEqual(t, tooth.ToothNumber, 1)
		assert.LessOrEqual(t, tooth.ToothNumber, 32)
		assert.Equal(t, Models.ConditionHealthy, tooth.Condition)
		assert.Equal(t, Models.ToothTypeForNumber(tooth.ToothNumber), tooth.ToothType)
	}

	t.Run("Second Chart Rejected", func(t *testing.T) {
		w := doPost(t, router, "/CreateOdontogram", map[string]interface{}{"patient_id": patient.ID})
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, string(Models.ErrDuplicateActiveOdontogram), errorCode(t, w))
	})

	t.Run("Reopen Supersedes", func(t *testing.T) {
		w := doPost(t, router, "/CreateOdontogram", map[string]interface{}{"patient_id": patient.ID, "reopen": true})
		require.Equal(t, http.StatusOK, w.Code)

		var old Models.Odontogram
		require.NoError(t, db.First(&old, chart.ID).Error)
		assert.False(t, old.IsCurrent)
		assert.NotNil(t, old.SupersededAt)

		var currentCount int64
		require.NoError(t, db.Model(&Models.Odontogram{}).Where("patient_id = ? AND is_current = ?", patient.ID, true).Count(&currentCount).Error)
		assert.EqualValues(t, 1, currentCount)
	})

	t.Run("Store Enforces One Current Chart", func(t *testing.T) {
		// Writing a second current chart directly must trip the unique
		// index, whatever the handler has already checked.
		dup := Models.NewOdontogram(patient.ID)
		assert.Error(t, db.Create(&dup).Error)
	})

	t.Run("Unknown Patient", func(t *testing.T) {
		w := doPost(t, router, "/CreateOdontogram", map[string]interface{}{"patient_id": 9999})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestUpdateTooth(t *testing.T) {
	db := setupTestDB(t)
	router := newTestRouter()
	fix := seedClinic(t, db)
	tooth := toothByNumber(t, db, fix.Chart.ID, 8)

	w := doPost(t, router, "/UpdateTooth", map[string]interface{}{
		"tooth_record_id": tooth.ID,
		"condition":       Models.ConditionCaries,
		"version":         fix.Chart.Version,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var updated Models.ToothRecord
	require.NoError(t, db.First(&updated, tooth.ID).Error)
	assert.Equal(t, Models.ConditionCaries, updated.Condition)

	var chart Models.Odontogram
	require.NoError(t, db.First(&chart, fix.Chart.ID).Error)
	assert.Equal(t, fix.Chart.Version+1, chart.Version)

	t.Run("Stale Version Rejected", func(t *testing.T) {
		w := doPost(t, router, "/UpdateTooth", map[string]interface{}{
			"tooth_record_id": tooth.ID,
			"condition":       Models.ConditionFilled,
			"version":         fix.Chart.Version, // already bumped above
		})
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, string(Models.ErrConcurrentModification), errorCode(t, w))

		var body struct {
			Retryable bool `json:"retryable"`
		}
		decodeBody(t, w, &body)
		assert.True(t, body.Retryable)
	})

	t.Run("Unknown Condition Rejected", func(t *testing.T) {
		w := doPost(t, router, "/UpdateTooth", map[string]interface{}{
			"tooth_record_id": tooth.ID,
			"condition":       "glittery",
			"version":         chart.Version,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, string(Models.ErrValidation), errorCode(t, w))
	})
}

func TestUpdateToothTerminalStates(t *testing.T) {
	db := setupTestDB(t)
	router := newTestRouter()
	fix := seedClinic(t, db)
	tooth := toothByNumber(t, db, fix.Chart.ID, 1)

	w := doPost(t, router, "/UpdateTooth", map[string]interface{}{
		"tooth_record_id": tooth.ID,
		"condition":       Models.ConditionExtracted,
		"version":         1,
	})
	require.Equal(t, http.StatusOK, w.Code)

	t.Run("Extracted Tooth Frozen", func(t *testing.T) {
		w := doPost(t, router, "/UpdateTooth", map[string]interface{}{
			"tooth_record_id": tooth.ID,
			"condition":       Models.ConditionCaries,
			"version":         2,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, string(Models.ErrInvalidState), errorCode(t, w))
	})

	t.Run("Same Condition Is A NoOp", func(t *testing.T) {
		w := doPost(t, router, "/UpdateTooth", map[string]interface{}{
			"tooth_record_id": tooth.ID,
			"condition":       Models.ConditionExtracted,
			"version":         2,
		})
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("No Surface Changes Either", func(t *testing.T) {
		w := doPost(t, router, "/AddToothSurface", map[string]interface{}{
			"tooth_record_id": tooth.ID,
			"surface":         Models.SurfaceMesial,
			"condition":       Models.ConditionCaries,
			"version":         3,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, string(Models.ErrInvalidState), errorCode(t, w))
	})
}

func TestAddToothSurface(t *testing.T) {
	db := setupTestDB(t)
	router := newTestRouter()
	fix := seedClinic(t, db)
	tooth := toothByNumber(t, db, fix.Chart.ID, 14)

	w := doPost(t, router, "/AddToothSurface", map[string]interface{}{
		"tooth_record_id": tooth.ID,
		"surface":         Models.SurfaceOcclusal,
		"condition":       Models.ConditionCaries,
		"version":         1,
	})
	require.Equal(t, http.StatusOK, w.Code)

	t.Run("Duplicate Active Surface Rejected", func(t *testing.T) {
		w := doPost(t, router, "/AddToothSurface", map[string]interface{}{
			"tooth_record_id": tooth.ID,
			"surface":         Models.SurfaceOcclusal,
			"condition":       Models.ConditionFilled,
			"version":         2,
		})
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, string(Models.ErrDuplicateSurface), errorCode(t, w))
	})

	t.Run("Supersede Keeps History", func(t *testing.T) {
		w := doPost(t, router, "/AddToothSurface", map[string]interface{}{
			"tooth_record_id": tooth.ID,
			"surface":         Models.SurfaceOcclusal,
			"condition":       Models.ConditionFilled,
			"supersede":       true,
			"version":         2,
		})
		require.Equal(t, http.StatusOK, w.Code)

		var rows []Models.ToothSurface
		require.NoError(t, db.Where("tooth_record_id = ? AND surface = ?", tooth.ID, Models.SurfaceOcclusal).Order("id").Find(&rows).Error)
		require.Len(t, rows, 2)
		assert.NotNil(t, rows[0].SupersededAt)
		assert.Equal(t, Models.ConditionCaries, rows[0].Condition)
		assert.Nil(t, rows[1].SupersededAt)
		assert.Equal(t, Models.ConditionFilled, rows[1].Condition)
	})

	t.Run("Unknown Surface Rejected", func(t *testing.T) {
		w := doPost(t, router, "/AddToothSurface", map[string]interface{}{
			"tooth_record_id": tooth.ID,
			"surface":         "sideways",
			"condition":       Models.ConditionCaries,
			"version":         3,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, string(Models.ErrValidation), errorCode(t, w))
	})
}

// A superseded chart is a historical snapshot: neither its teeth nor their
// surfaces accept changes, even with the right version token.
func TestSupersededChartIsReadOnly(t *testing.T) {
	db := setupTestDB(t)
	router := newTestRouter()
	fix := seedClinic(t, db)

	w := doPost(t, router, "/CreateOdontogram", map[string]interface{}{"patient_id": fix.Patient.ID, "reopen": true})
	require.Equal(t, http.StatusOK, w.Code)

	var old Models.Odontogram
	require.NoError(t, db.First(&old, fix.Chart.ID).Error)
	require.False(t, old.IsCurrent)

	tooth := toothByNumber(t, db, fix.Chart.ID, 9)

	t.Run("Condition Frozen", func(t *testing.T) {
		w := doPost(t, router, "/UpdateTooth", map[string]interface{}{
			"tooth_record_id": tooth.ID,
			"condition":       Models.ConditionCaries,
			"version":         old.Version,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, string(Models.ErrInvalidState), errorCode(t, w))

		var unchanged Models.ToothRecord
		require.NoError(t, db.First(&unchanged, tooth.ID).Error)
		assert.Equal(t, Models.ConditionHealthy, unchanged.Condition)
	})

	t.Run("Surfaces Frozen", func(t *testing.T) {
		w := doPost(t, router, "/AddToothSurface", map[string]interface{}{
			"tooth_record_id": tooth.ID,
			"surface":         Models.SurfaceMesial,
			"condition":       Models.ConditionCaries,
			"version":         old.Version,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, string(Models.ErrInvalidState), errorCode(t, w))

		var count int64
		require.NoError(t, db.Model(&Models.ToothSurface{}).Where("tooth_record_id = ?", tooth.ID).Count(&count).Error)
		assert.Zero(t, count)
	})
}
