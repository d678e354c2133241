package Models

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDataBase() {

	err := godotenv.Load(".env")

	if err != nil {
		log.Fatalf("Error loading .env file")
	}

	DbHost := os.Getenv("DB_HOST")
	DbUser := os.Getenv("DB_USER")
	DbPassword := os.Getenv("DB_PASSWORD")
	DbName := os.Getenv("DB_NAME")
	DbPort := os.Getenv("DB_PORT")

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable", DbHost, DbUser, DbPassword, DbName, DbPort)
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})

	if err != nil {
		fmt.Println("Cannot connect to database ")
		log.Fatal("connection error:", err)
	} else {
		fmt.Println("We are connected to the database ")
	}

	if err := Migrate(DB); err != nil {
		log.Fatal("migration error:", err)
	}

	Catalog = NewDBCatalog(DB)
}

// Migrate runs AutoMigrate in dependency order. Tests reuse it against an
// in-memory sqlite database.
func Migrate(db *gorm.DB) error {
	// First migrate models with no dependencies
	if err := db.AutoMigrate(&User{}, &Doctor{}, &Patient{}, &TreatmentCatalogItem{}); err != nil {
		return err
	}

	// Then the odontogram aggregate, parent before children
	if err := db.AutoMigrate(&Odontogram{}, &ToothRecord{}, &ToothSurface{}); err != nil {
		return err
	}

	// Finally the billing side, which references all of the above
	if err := db.AutoMigrate(&ToothTreatment{}, &Invoice{}, &InvoiceLine{}, &Payment{}); err != nil {
		return err
	}

	// At most one current chart per patient, enforced in the store itself so
	// concurrent creates cannot both slip past the handler's read. Partial
	// indexes have the same syntax on postgres and sqlite.
	return db.Exec(
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_one_current_odontogram ON odontograms (patient_id) WHERE is_current AND deleted_at IS NULL",
	).Error
}
