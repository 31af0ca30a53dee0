// internal/domain/rating/service.go
package rating

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/foodcart-backend/internal/domain/order"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrRatingNotFound = errors.New("pending rating not found")

// Service keeps the post-order rating prompts
type Service struct {
	db     *gorm.DB
	logger *logrus.Entry
}

// NewService creates a new rating service
func NewService(db *gorm.DB, logger *logrus.Entry) *Service {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Service{
		db:     db,
		logger: logger.WithField("component", "rating"),
	}
}

// RecordPlaced stores a rating prompt for a placed order. Recording the same
// order twice is a no-op.
func (s *Service) RecordPlaced(ctx context.Context, conf order.OrderConfirmation) error {
	if conf.OrderID == "" {
		return fmt.Errorf("orderID is empty")
	}
	if conf.UserID == "" {
		return fmt.Errorf("userID is empty")
	}

	placedAt := conf.PlacedAt
	if placedAt.IsZero() {
		placedAt = time.Now().UTC()
	}

	prompt := PendingRating{
		OrderID:  conf.OrderID,
		UserID:   conf.UserID,
		VendorID: conf.VendorID,
		Total:    conf.Total,
		PlacedAt: placedAt,
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "order_id"}}, DoNothing: true}).
		Create(&prompt).Error
	if err != nil {
		return fmt.Errorf("failed to record rating prompt: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"order_id": conf.OrderID,
		"user_id":  conf.UserID,
	}).Debug("Rating prompt recorded")
	return nil
}

// Pending returns the prompts the user has not dismissed, newest first
func (s *Service) Pending(ctx context.Context, userID string) ([]PendingRating, error) {
	if userID == "" {
		return nil, fmt.Errorf("userID is empty")
	}

	var prompts []PendingRating
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND dismissed_at IS NULL", userID).
		Order("placed_at DESC").
		Find(&prompts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get pending ratings: %w", err)
	}
	return prompts, nil
}

// Dismiss hides the prompt of one of the user's orders
func (s *Service) Dismiss(ctx context.Context, userID, orderID string) error {
	result := s.db.WithContext(ctx).
		Model(&PendingRating{}).
		Where("user_id = ? AND order_id = ? AND dismissed_at IS NULL", userID, orderID).
		Update("dismissed_at", time.Now().UTC())
	if result.Error != nil {
		return fmt.Errorf("failed to dismiss rating prompt: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRatingNotFound
	}
	return nil
}
