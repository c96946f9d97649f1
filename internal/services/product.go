package services

import (
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/Egles-vieira/fernandes-surgical-crm-sub005/pkg/models"
)

// ProductService searches the surgical supplies catalog
type ProductService struct {
	db *gorm.DB
}

// NewProductService creates a product service
func NewProductService(db *gorm.DB) *ProductService {
	return &ProductService{db: db}
}

// SearchProducts looks up in-stock products for a free-text query. Postgres
// full-text search (Portuguese) first; exact-name match, then broad LIKE as
// fallbacks when FTS finds nothing.
func (s *ProductService) SearchProducts(query string, limit int) ([]models.Product, error) {
	var products []models.Product

	searchQuery := strings.TrimSpace(query)
	if searchQuery == "" {
		err := s.db.Where("stock_quantity > 0").
			Order("stock_quantity DESC, name ASC").
			Limit(limit).
			Find(&products).Error
		return products, err
	}

	tsquery := strings.ReplaceAll(searchQuery, " ", " & ")

	ftsQuery := s.db.Where("stock_quantity > 0").
		Where("search_vector @@ to_tsquery('portuguese', ?)", tsquery)

	var ftsCount int64
	ftsQuery.Model(&models.Product{}).Count(&ftsCount)

	var dbQuery *gorm.DB
	switch {
	case ftsCount > 0:
		dbQuery = ftsQuery.
			Select("*, ts_rank(search_vector, to_tsquery('portuguese', ?)) as rank", tsquery).
			Order("rank DESC, stock_quantity DESC, name ASC")
	default:
		exactQuery := s.db.Where("stock_quantity > 0").
			Where("LOWER(name) LIKE LOWER(?)", "%"+searchQuery+"%")

		var exactCount int64
		exactQuery.Model(&models.Product{}).Count(&exactCount)

		if exactCount > 0 {
			dbQuery = exactQuery.Order("stock_quantity DESC, name ASC")
		} else {
			pattern := "%" + strings.ToLower(searchQuery) + "%"
			dbQuery = s.db.Where("stock_quantity > 0").
				Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(brand) LIKE ? OR LOWER(tags) LIKE ? OR LOWER(sku) LIKE ?",
					pattern, pattern, pattern, pattern, pattern).
				Order("stock_quantity DESC, name ASC")
		}
	}

	if limit > 0 {
		dbQuery = dbQuery.Limit(limit)
	}

	err := dbQuery.Find(&products).Error
	if err != nil {
		log.Error().Err(err).Str("query", searchQuery).Msg("Product search failed")
	}
	return products, err
}

// GetProductByID returns a single product
func (s *ProductService) GetProductByID(productID uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := s.db.Where("id = ?", productID).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}
