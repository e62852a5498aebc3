package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chocobliss/storefront-backend/pkg/db/models"
	"github.com/chocobliss/storefront-backend/pkg/enums"
	"github.com/chocobliss/storefront-backend/pkg/pagination"
)

// Repository defines persistence operations for the order tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, filters ListFilters, params pagination.Params) ([]models.Order, *string, error)
	UpdateFulfillmentStatus(ctx context.Context, id uuid.UUID, status enums.FulfillmentStatus) error
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status enums.PaymentStatus, paymentID *string) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// List returns one page ordered newest-first plus the cursor for the next
// page, if any.
func (r *repository) List(ctx context.Context, filters ListFilters, params pagination.Params) ([]models.Order, *string, error) {
	marker, err := pagination.Decode(params.Cursor)
	if err != nil {
		return nil, nil, err
	}
	limit := pagination.PageSize(params.Limit)

	query := r.db.WithContext(ctx).
		Preload("Items").
		Order("created_at DESC, id DESC").
		Limit(pagination.FetchSize(params.Limit))

	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}
	if marker != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			marker.CreatedAt, marker.CreatedAt, marker.ID,
		)
	}

	var rows []models.Order
	if err := query.Find(&rows).Error; err != nil {
		return nil, nil, err
	}

	var nextCursor *string
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		token := pagination.Marker{CreatedAt: last.CreatedAt, ID: last.ID}.Token()
		nextCursor = &token
	}
	return rows, nextCursor, nil
}

func (r *repository) UpdateFulfillmentStatus(ctx context.Context, id uuid.UUID, status enums.FulfillmentStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Update("fulfillment_status", status).Error
}

func (r *repository) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status enums.PaymentStatus, paymentID *string) error {
	updates := map[string]any{"payment_status": status}
	if paymentID != nil {
		updates["payment_id"] = *paymentID
	}
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Updates(updates).Error
}
