package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/cncideas/storefront/internal/domain"
	apperrors "github.com/cncideas/storefront/pkg/errors"
	"github.com/cncideas/storefront/pkg/database"
)

// CheckoutRepository implements repository.CheckoutRepository using
// PostgreSQL. Billing, shipping, and payment details are stored as JSONB.
type CheckoutRepository struct {
	pool database.DBTX
}

// NewCheckoutRepository creates a new PostgreSQL-backed checkout repository.
func NewCheckoutRepository(pool database.DBTX) *CheckoutRepository {
	return &CheckoutRepository{pool: pool}
}

// Create inserts a new checkout session.
func (r *CheckoutRepository) Create(ctx context.Context, session *domain.Checkout) error {
	billingJSON, shippingJSON, paymentJSON, err := marshalDetails(session)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO checkout_sessions (
			id, shopper_id, step, status,
			billing, shipping, payment, notes,
			expires_at, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7, $8,
			$9, $10, $11
		)`

	_, err = r.pool.Exec(ctx, query,
		session.ID,
		session.ShopperID,
		session.Step,
		session.Status,
		billingJSON,
		shippingJSON,
		paymentJSON,
		session.Notes,
		session.ExpiresAt,
		session.CreatedAt,
		session.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert checkout session: %w", err)
	}

	return nil
}

// GetByID retrieves a checkout session by its ID.
func (r *CheckoutRepository) GetByID(ctx context.Context, id string) (*domain.Checkout, error) {
	query := selectColumns + ` WHERE id = $1`
	return r.scanSession(ctx, query, id)
}

// GetActiveByShopperID retrieves the shopper's most recent active session.
func (r *CheckoutRepository) GetActiveByShopperID(ctx context.Context, shopperID string) (*domain.Checkout, error) {
	query := selectColumns + `
		WHERE shopper_id = $1 AND status = 'active'
		ORDER BY created_at DESC
		LIMIT 1`
	return r.scanSession(ctx, query, shopperID)
}

// Update modifies an existing checkout session.
func (r *CheckoutRepository) Update(ctx context.Context, session *domain.Checkout) error {
	billingJSON, shippingJSON, paymentJSON, err := marshalDetails(session)
	if err != nil {
		return err
	}

	session.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE checkout_sessions
		SET step = $1, status = $2,
			billing = $3, shipping = $4, payment = $5, notes = $6,
			expires_at = $7, updated_at = $8
		WHERE id = $9`

	ct, err := r.pool.Exec(ctx, query,
		session.Step,
		session.Status,
		billingJSON,
		shippingJSON,
		paymentJSON,
		session.Notes,
		session.ExpiresAt,
		session.UpdatedAt,
		session.ID,
	)
	if err != nil {
		return fmt.Errorf("update checkout session: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("checkout_session", session.ID)
	}

	return nil
}

const selectColumns = `
	SELECT id, shopper_id, step, status,
		billing, shipping, payment, notes,
		expires_at, created_at, updated_at
	FROM checkout_sessions`

// scanSession executes a query expected to return a single session row.
func (r *CheckoutRepository) scanSession(ctx context.Context, query string, args ...any) (*domain.Checkout, error) {
	var (
		session      domain.Checkout
		billingJSON  []byte
		shippingJSON []byte
		paymentJSON  []byte
	)

	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&session.ID,
		&session.ShopperID,
		&session.Step,
		&session.Status,
		&billingJSON,
		&shippingJSON,
		&paymentJSON,
		&session.Notes,
		&session.ExpiresAt,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan checkout session: %w", err)
	}

	if err := unmarshalJSONB(billingJSON, &session.Billing); err != nil {
		return nil, fmt.Errorf("unmarshal billing: %w", err)
	}
	if err := unmarshalJSONB(shippingJSON, &session.Shipping); err != nil {
		return nil, fmt.Errorf("unmarshal shipping: %w", err)
	}
	if err := unmarshalJSONB(paymentJSON, &session.Payment); err != nil {
		return nil, fmt.Errorf("unmarshal payment: %w", err)
	}

	return &session, nil
}

func marshalDetails(session *domain.Checkout) (billing, shipping, payment []byte, err error) {
	billing, err = json.Marshal(session.Billing)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("marshal billing: %w", err)
	}
	shipping, err = json.Marshal(session.Shipping)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("marshal shipping: %w", err)
	}
	payment, err = json.Marshal(session.Payment)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("marshal payment: %w", err)
	}
	return billing, shipping, payment, nil
}

func unmarshalJSONB(data []byte, target any) error {
	if data == nil || string(data) == "null" {
		return nil
	}
	return json.Unmarshal(data, target)
}
