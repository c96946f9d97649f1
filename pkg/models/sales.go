package models

import (
	"time"

	"github.com/google/uuid"
)

// Customer represents a buyer (hospital, clinic or individual professional)
type Customer struct {
	BaseModel
	Phone    string `gorm:"uniqueIndex;not null" json:"phone" validate:"required,numeric"` // only digits
	Name     string `json:"name"`
	Email    string `json:"email"`
	Document string `json:"document"` // CPF/CNPJ
	Segment  string `json:"segment"`  // hospital, clinica, consultorio, distribuidor
	Notes    string `json:"notes"`
	IsActive bool   `gorm:"default:true" json:"is_active"`
}

// Product represents an item in the surgical supplies catalog
type Product struct {
	BaseModel
	Name              string `gorm:"not null" json:"name" validate:"required"`
	Description       string `json:"description"`
	Price             string `gorm:"not null" json:"price" validate:"required"`
	SalePrice         string `json:"sale_price"`
	SKU               string `gorm:"uniqueIndex;not null" json:"sku"`
	Barcode           string `json:"barcode"`
	Brand             string `json:"brand"`
	AnvisaCode        string `json:"anvisa_code"` // registro ANVISA
	Unit              string `gorm:"default:'un'" json:"unit"` // un, cx, kit
	Tags              string `json:"tags"`
	StockQuantity     int    `gorm:"default:0" json:"stock_quantity"`
	LowStockThreshold int    `gorm:"default:5" json:"low_stock_threshold"`
	// search_vector is a tsvector column created by migration and maintained
	// by trigger; GORM never reads or writes it
	SearchVector string `gorm:"-" json:"-"`
}

// Cart holds the candidate products attached to a conversation while the
// agent is still qualifying the buyer
type Cart struct {
	BaseModel
	CustomerID     uuid.UUID  `gorm:"type:uuid;not null;constraint:OnDelete:RESTRICT" json:"customer_id"`
	ConversationID *uuid.UUID `gorm:"type:uuid;constraint:OnDelete:SET NULL" json:"conversation_id"`
	Status         string     `gorm:"default:'active'" json:"status"` // active, proposed, abandoned
	TotalAmount    string     `gorm:"default:'0'" json:"total_amount"`
	ItemsCount     int        `gorm:"default:0" json:"items_count"`

	// Relations
	Customer *Customer  `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Items    []CartItem `gorm:"foreignKey:CartID" json:"items,omitempty"`
}

// CartItem represents a candidate product in a cart
type CartItem struct {
	BaseModel
	CartID    uuid.UUID  `gorm:"type:uuid;not null;constraint:OnDelete:RESTRICT" json:"cart_id"`
	ProductID *uuid.UUID `gorm:"type:uuid;constraint:OnDelete:SET NULL" json:"product_id"`
	Quantity  int        `gorm:"not null;default:1" json:"quantity" validate:"min=1"`
	Price     string     `gorm:"not null" json:"price"`

	// Historical product data for cart integrity
	ProductName *string `json:"product_name"`
	ProductSKU  *string `json:"product_sku"`

	// Relations
	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// Proposal represents a commercial proposal assembled from a cart
type Proposal struct {
	BaseModel
	CustomerID     uuid.UUID  `gorm:"type:uuid;not null;constraint:OnDelete:RESTRICT" json:"customer_id"`
	ConversationID *uuid.UUID `gorm:"type:uuid;constraint:OnDelete:SET NULL" json:"conversation_id"`
	Number         string     `gorm:"uniqueIndex;not null" json:"number"`
	Status         string     `gorm:"default:'rascunho'" json:"status"` // rascunho, enviada, aprovada, recusada, expirada
	TotalAmount    string     `gorm:"default:'0'" json:"total_amount"`
	DiscountAmount string     `gorm:"default:'0'" json:"discount_amount"`
	Currency       string     `gorm:"default:'BRL'" json:"currency"`
	ValidUntil     *time.Time `json:"valid_until"`
	Notes          string     `json:"notes"`

	// Historical customer data for proposal integrity
	CustomerName  *string `json:"customer_name"`
	CustomerPhone *string `json:"customer_phone"`

	// Relations
	Customer *Customer      `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Items    []ProposalItem `gorm:"foreignKey:ProposalID" json:"items,omitempty"`
}

// ProposalItem represents a line in a proposal
type ProposalItem struct {
	BaseModel
	ProposalID uuid.UUID  `gorm:"type:uuid;not null;constraint:OnDelete:RESTRICT" json:"proposal_id"`
	ProductID  *uuid.UUID `gorm:"type:uuid;constraint:OnDelete:SET NULL" json:"product_id"`
	Quantity   int        `gorm:"not null" json:"quantity"`
	Price      string     `gorm:"not null" json:"price"`
	Total      string     `gorm:"not null" json:"total"`

	// Historical product data
	ProductName *string `json:"product_name"`
	ProductSKU  *string `json:"product_sku"`
}
