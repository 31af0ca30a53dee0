// internal/domain/rating/entity.go
package rating

import (
	"time"

	"github.com/shopspring/decimal"
)

// PendingRating is a placed order the customer has not rated or dismissed yet
type PendingRating struct {
	ID          uint            `json:"-" gorm:"primaryKey"`
	OrderID     string          `json:"order_id" gorm:"uniqueIndex;size:64;not null"`
	UserID      string          `json:"user_id" gorm:"index;size:64;not null"`
	VendorID    string          `json:"vendor_id" gorm:"size:64"`
	Total       decimal.Decimal `json:"total" gorm:"type:numeric(14,2);not null;default:0"`
	PlacedAt    time.Time       `json:"placed_at" gorm:"not null"`
	DismissedAt *time.Time      `json:"dismissed_at,omitempty" gorm:"index"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// TableName returns the table name for PendingRating
func (PendingRating) TableName() string {
	return "pending_ratings"
}
