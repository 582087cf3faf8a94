package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/clinicfin/backend/internal/domain/payment"
	"github.com/clinicfin/backend/internal/domain/shared"
	"github.com/clinicfin/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPaymentRepository implements payment.Repository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByID finds a payment by ID
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*payment.Payment, error) {
	return r.first(r.db.WithContext(ctx), "id = ?", id)
}

// FindByReference finds a payment by its external reference
func (r *GormPaymentRepository) FindByReference(ctx context.Context, ref string) (*payment.Payment, error) {
	return r.first(r.db.WithContext(ctx), "external_reference = ?", ref)
}

// LockByID selects the payment FOR UPDATE.
// The lock is held until the surrounding transaction ends.
func (r *GormPaymentRepository) LockByID(ctx context.Context, id uuid.UUID) (*payment.Payment, error) {
	return r.first(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), "id = ?", id)
}

// UpdateStatus writes the transition only while the stored status still equals from
func (r *GormPaymentRepository) UpdateStatus(ctx context.Context, p *payment.Payment, from payment.Status) error {
	var providerTxID *string
	if p.ProviderTransactionID != "" {
		providerTxID = &p.ProviderTransactionID
	}
	result := r.db.WithContext(ctx).
		Model(&models.PaymentModel{}).
		Where("id = ? AND status = ?", p.ID, string(from)).
		Updates(map[string]interface{}{
			"status":                  string(p.Status),
			"provider_transaction_id": providerTxID,
			"approved_at":             p.ApprovedAt,
			"updated_at":              p.UpdatedAt.UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return payment.ErrConcurrentUpdate
	}
	return nil
}

// Create inserts a new payment
func (r *GormPaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	model := &models.PaymentModel{}
	model.FromDomain(p)
	err := r.db.WithContext(ctx).Create(model).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.ErrAlreadyExists
	}
	return err
}

func (r *GormPaymentRepository) first(db *gorm.DB, query string, args ...interface{}) (*payment.Payment, error) {
	var model models.PaymentModel
	if err := db.Where(query, args...).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// GormWebhookDeliveryRepository implements payment.DeliveryRepository using GORM
type GormWebhookDeliveryRepository struct {
	db *gorm.DB
}

// NewGormWebhookDeliveryRepository creates a new GormWebhookDeliveryRepository
func NewGormWebhookDeliveryRepository(db *gorm.DB) *GormWebhookDeliveryRepository {
	return &GormWebhookDeliveryRepository{db: db}
}

// FindByEventID finds a delivery by provider event id
func (r *GormWebhookDeliveryRepository) FindByEventID(ctx context.Context, eventID string) (*payment.Delivery, error) {
	var model models.WebhookDeliveryModel
	if err := r.db.WithContext(ctx).First(&model, "event_id = ?", eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Record inserts the delivery with one attempt, or bumps the attempts of an existing one
func (r *GormWebhookDeliveryRepository) Record(ctx context.Context, eventID string, paymentID *uuid.UUID, now time.Time) (*payment.Delivery, error) {
	now = now.UTC()
	model := &models.WebhookDeliveryModel{
		EventID:     eventID,
		PaymentID:   paymentID,
		Attempts:    1,
		FirstSeenAt: now,
		LastSeenAt:  now,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "event_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"attempts":     gorm.Expr("webhook_deliveries.attempts + 1"),
			"last_seen_at": now,
			"payment_id":   gorm.Expr("COALESCE(excluded.payment_id, webhook_deliveries.payment_id)"),
		}),
	}).Create(model).Error
	if err != nil {
		return nil, err
	}
	return r.FindByEventID(ctx, eventID)
}

// GormFulfillmentRepository implements payment.FulfillmentRepository using GORM
type GormFulfillmentRepository struct {
	db *gorm.DB
}

// NewGormFulfillmentRepository creates a new GormFulfillmentRepository
func NewGormFulfillmentRepository(db *gorm.DB) *GormFulfillmentRepository {
	return &GormFulfillmentRepository{db: db}
}

// CreateIfAbsent stores the request unless one already exists for the order
func (r *GormFulfillmentRepository) CreateIfAbsent(ctx context.Context, req *payment.FulfillmentRequest) (bool, error) {
	model := &models.FulfillmentRequestModel{
		ID:        req.ID,
		ClinicID:  req.ClinicID,
		OrderID:   req.OrderID,
		PaymentID: req.PaymentID,
		CreatedAt: req.CreatedAt.UTC(),
	}
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "order_id"}},
		DoNothing: true,
	}).Create(model)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// GormBillingTargetRepository implements payment.TargetRepository using GORM
type GormBillingTargetRepository struct {
	db *gorm.DB
}

// NewGormBillingTargetRepository creates a new GormBillingTargetRepository
func NewGormBillingTargetRepository(db *gorm.DB) *GormBillingTargetRepository {
	return &GormBillingTargetRepository{db: db}
}

// SetBudgetStatus updates a budget's status, stamping paid_at when it becomes paid
func (r *GormBillingTargetRepository) SetBudgetStatus(ctx context.Context, budgetID uuid.UUID, status string, at time.Time) error {
	return r.setStatus(ctx, &models.BudgetModel{}, budgetID, status, at)
}

// SetOrderStatus updates an order's status, stamping paid_at when it becomes paid
func (r *GormBillingTargetRepository) SetOrderStatus(ctx context.Context, orderID uuid.UUID, status string, at time.Time) error {
	return r.setStatus(ctx, &models.OrderModel{}, orderID, status, at)
}

func (r *GormBillingTargetRepository) setStatus(ctx context.Context, model interface{}, id uuid.UUID, status string, at time.Time) error {
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": at.UTC(),
	}
	if status == payment.TargetStatusPaid {
		updates["paid_at"] = at.UTC()
	}
	result := r.db.WithContext(ctx).Model(model).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var (
	_ payment.Repository            = (*GormPaymentRepository)(nil)
	_ payment.DeliveryRepository    = (*GormWebhookDeliveryRepository)(nil)
	_ payment.FulfillmentRepository = (*GormFulfillmentRepository)(nil)
	_ payment.TargetRepository      = (*GormBillingTargetRepository)(nil)
)
