package database

import (
	"log"
	"os"
	"time"

	"campuslink/backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"
)

var DB *gorm.DB

// Connect initializes the database connection and runs migrations.
// replicaDSNs, when non-empty, are registered as read replicas; reads that do
// not need the freshest state are routed there.
func Connect(dsn string, replicaDSNs []string) {
	var err error

	// Configure GORM logger
	customLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags), // io writer
		logger.Config{
			SlowThreshold:             200 * time.Millisecond, // Slow SQL threshold
			LogLevel:                  logger.Warn,            // Log level
			IgnoreRecordNotFoundError: true,                   // Ignore ErrRecordNotFound error for logger
			Colorful:                  true,                   // Enable color
		},
	)

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         customLogger,
		TranslateError: true,
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if len(replicaDSNs) > 0 {
		replicas := make([]gorm.Dialector, 0, len(replicaDSNs))
		for _, r := range replicaDSNs {
			replicas = append(replicas, postgres.Open(r))
		}
		err = DB.Use(dbresolver.Register(dbresolver.Config{
			Replicas: replicas,
			Policy:   dbresolver.RandomPolicy{},
		}))
		if err != nil {
			log.Fatalf("Failed to register read replicas: %v", err)
		}
	}

	log.Println("Database connection established.")

	if err := Migrate(DB); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	log.Println("Database migrated successfully.")
}

// Migrate runs the schema migrations for all models.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Connection{},
		&models.Post{},
		&models.PostLike{},
		&models.PostComment{},
		&models.PasswordResetToken{},
	)
}
