package db

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Egles-vieira/fernandes-surgical-crm-sub005/internal/auth"
	"github.com/Egles-vieira/fernandes-surgical-crm-sub005/pkg/models"
)

// NewDatabase creates a new database connection
func NewDatabase() (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_SSLMODE"),
		os.Getenv("DB_TIMEZONE"),
	)

	config := &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Error),
		DisableForeignKeyConstraintWhenMigrating: false,
	}

	db, err := gorm.Open(postgres.Open(dsn), config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

// AutoMigrate runs database migrations using GORM
func AutoMigrate(db *gorm.DB) error {
	log.Info().Msg("Running GORM AutoMigrate...")

	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		log.Warn().Err(err).Msg("Could not create uuid-ossp extension")
	}

	if err := db.AutoMigrate(models.GetAllModels()...); err != nil {
		return fmt.Errorf("failed to run GORM AutoMigrate: %w", err)
	}

	if err := createCustomIndexes(db); err != nil {
		log.Warn().Err(err).Msg("Failed to create some custom indexes")
	}

	log.Info().Msg("GORM AutoMigrate completed")
	return nil
}

// createCustomIndexes creates indexes GORM does not handle, notably the
// Portuguese full-text search column on products.
func createCustomIndexes(db *gorm.DB) error {
	indexes := []string{
		`ALTER TABLE products ADD COLUMN IF NOT EXISTS search_vector tsvector`,

		// search_vector is maintained by trigger so catalog imports stay fast
		`CREATE OR REPLACE FUNCTION products_search_vector_update() RETURNS trigger AS $$
		BEGIN
			NEW.search_vector := to_tsvector('portuguese',
				coalesce(NEW.name, '') || ' ' ||
				coalesce(NEW.description, '') || ' ' ||
				coalesce(NEW.brand, '') || ' ' ||
				coalesce(NEW.tags, ''));
			RETURN NEW;
		END;
		$$ LANGUAGE plpgsql;`,

		`DROP TRIGGER IF EXISTS trg_products_search_vector ON products`,
		`CREATE TRIGGER trg_products_search_vector
			BEFORE INSERT OR UPDATE OF name, description, brand, tags ON products
			FOR EACH ROW EXECUTE FUNCTION products_search_vector_update()`,

		`CREATE INDEX IF NOT EXISTS idx_products_search ON products USING gin(search_vector)`,

		// One active cart per conversation
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_carts_conversation_active ON carts(conversation_id) WHERE status = 'active'`,

		// Memory expiry sweeps scan by expires_at
		`CREATE INDEX IF NOT EXISTS idx_agent_memories_expires ON agent_memories(expires_at)`,

		`CREATE INDEX IF NOT EXISTS idx_interaction_logs_conversation ON interaction_logs(conversation_id, created_at)`,

		`CREATE INDEX IF NOT EXISTS idx_messages_conversation_created ON messages(conversation_id, created_at)`,
	}

	for _, idx := range indexes {
		if err := db.Exec(idx).Error; err != nil {
			log.Warn().Err(err).Str("index", idx).Msg("Failed to create index")
		}
	}

	return nil
}

// SeedInitialData creates initial system data
func SeedInitialData(db *gorm.DB) error {
	var userCount int64
	if err := db.Model(&models.User{}).Where("role = ?", "admin").Count(&userCount).Error; err != nil {
		return fmt.Errorf("failed to check existing users: %w", err)
	}

	if userCount == 0 {
		password := os.Getenv("ADMIN_INITIAL_PASSWORD")
		if password == "" {
			password = "admin123"
		}
		hash, err := auth.HashPassword(password)
		if err != nil {
			return fmt.Errorf("failed to hash admin password: %w", err)
		}

		adminUser := models.User{
			Email:    "admin@fernandescirurgica.com.br",
			Password: hash,
			Name:     "Administrador",
			Role:     "admin",
			IsActive: true,
		}
		if err := db.Create(&adminUser).Error; err != nil {
			return fmt.Errorf("failed to create admin user: %w", err)
		}
		log.Info().Msg("Admin user created")
	}

	return nil
}

// PurgeExpiredMemories removes memory rows past their expiry. Vector points
// are left to collection-level TTL handling.
func PurgeExpiredMemories(db *gorm.DB) error {
	result := db.Exec(`DELETE FROM agent_memories WHERE expires_at < NOW()`)
	if result.Error != nil {
		return fmt.Errorf("failed to purge expired memories: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		log.Info().Int64("count", result.RowsAffected).Msg("Purged expired agent memories")
	}
	return nil
}

// RunMigrations is the main migration function called from main.go
func RunMigrations(db *gorm.DB) error {
	log.Info().Msg("Starting database migrations...")

	if err := AutoMigrate(db); err != nil {
		return fmt.Errorf("AutoMigrate failed: %w", err)
	}

	if err := SeedInitialData(db); err != nil {
		return fmt.Errorf("initial data seeding failed: %w", err)
	}

	log.Info().Msg("All migrations completed")
	return nil
}
