package Routes

import (
	"DentaLedger/Controllers"
	"DentaLedger/Middleware"
	"DentaLedger/SSE"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
)

func ConfigRoutes(router *gin.Engine) {
	// Gzip Compression
	router.Use(gzip.Gzip(gzip.BestSpeed))

	// Public routes
	public := router.Group("/api")
	{
		public.POST("/login", Controllers.Login)
		public.POST("/register", Controllers.Register)
	}

	// Authorized routes
	authorized := router.Group("/api/protected")
	authorized.Use(Middleware.JwtAuthMiddleware())
	{
		// User-related routes
		authorized.GET("/user", Controllers.CurrentUser)
		authorized.GET("/GetDoctors", Controllers.GetDoctors)

		// Patient-related routes
		authorized.GET("/FetchPatients", Controllers.FetchPatients)
		authorized.POST("/CreatePatient", Controllers.CreatePatient)
		authorized.POST("/UpdatePatient", Controllers.UpdatePatient)
		authorized.POST("/DeletePatient", Controllers.DeletePatient)

		// Treatment catalog routes
		authorized.GET("/FetchTreatmentCatalog", Controllers.FetchTreatmentCatalog)
		authorized.POST("/AddCatalogTreatment", Middleware.PermissionCheckAdmin(), Controllers.AddCatalogTreatment)
		authorized.POST("/EditCatalogTreatment", Middleware.PermissionCheckAdmin(), Controllers.EditCatalogTreatment)
		authorized.POST("/DeleteCatalogTreatment", Middleware.PermissionCheckAdmin(), Controllers.DeleteCatalogTreatment)

		// Odontogram routes
		authorized.POST("/CreateOdontogram", Controllers.CreateOdontogram)
		authorized.POST("/FetchCurrentOdontogram", Controllers.FetchCurrentOdontogram)
		authorized.POST("/FetchOdontogramHistory", Controllers.FetchOdontogramHistory)
		authorized.POST("/UpdateTooth", Controllers.UpdateTooth)
		authorized.POST("/AddToothSurface", Controllers.AddToothSurface)

		// Treatment ledger routes
		authorized.POST("/AddTreatment", Controllers.AddTreatment)
		authorized.POST("/MarkTreatmentCompleted", Controllers.MarkTreatmentCompleted)
		authorized.POST("/DeleteTreatment", Controllers.DeleteTreatment)
		authorized.POST("/FetchTreatments", Controllers.FetchTreatments)

		// Invoice routes
		authorized.POST("/PreviewInvoice", Controllers.PreviewInvoice)
		authorized.POST("/CommitInvoice", Controllers.CommitInvoice)
		authorized.POST("/FetchInvoice", Controllers.FetchInvoice)
		authorized.POST("/FetchPatientInvoices", Controllers.FetchPatientInvoices)

		// Payment routes
		authorized.POST("/RegisterPayment", Controllers.RegisterPayment)
		authorized.POST("/CancelInvoice", Controllers.CancelInvoice)

		// Revenue routes
		authorized.POST("/FetchRevenue", Controllers.FetchRevenue)
		authorized.POST("/ExportRevenueTable", Controllers.ExportRevenueTable)

		// SSE (Server-Sent Events) route
		authorized.GET("/RequestSSE", SSE.RequestSSE)
	}
}
