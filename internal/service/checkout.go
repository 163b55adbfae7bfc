package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/cncideas/storefront/internal/domain"
	"github.com/cncideas/storefront/internal/repository"
	apperrors "github.com/cncideas/storefront/pkg/errors"
	"github.com/cncideas/storefront/pkg/validator"
)

// DefaultCheckoutTTL is how long an abandoned checkout session stays resumable.
const DefaultCheckoutTTL = 24 * time.Hour

// ShippingPolicy holds the threshold shipping rule in cents.
type ShippingPolicy struct {
	FreeShippingThreshold int64
	FlatShippingFee       int64
}

// OrderSubmitter posts a consolidated order to the backend intake.
type OrderSubmitter interface {
	SubmitOrder(ctx context.Context, order *domain.Order) (string, error)
}

// OrderEventPublisher publishes order domain events to the message broker.
type OrderEventPublisher interface {
	PublishOrderSubmitted(ctx context.Context, order *domain.Order) error
}

// CheckoutService drives the 4-step checkout wizard over the shopper's cart.
// Sessions are durable so an interrupted checkout resumes where it left off.
type CheckoutService struct {
	repo     repository.CheckoutRepository
	carts    *CartService
	orders   OrderSubmitter
	producer OrderEventPublisher
	policy   ShippingPolicy
	ttl      time.Duration
	logger   *slog.Logger
}

// NewCheckoutService creates a new checkout service. A non-positive ttl falls
// back to the default.
func NewCheckoutService(
	repo repository.CheckoutRepository,
	carts *CartService,
	orders OrderSubmitter,
	producer OrderEventPublisher,
	policy ShippingPolicy,
	ttl time.Duration,
	logger *slog.Logger,
) *CheckoutService {
	if ttl <= 0 {
		ttl = DefaultCheckoutTTL
	}
	return &CheckoutService{
		repo:     repo,
		carts:    carts,
		orders:   orders,
		producer: producer,
		policy:   policy,
		ttl:      ttl,
		logger:   logger,
	}
}

// StartCheckout returns the shopper's active session, creating one on the
// billing step when none exists. An expired leftover session is marked
// expired and replaced.
func (s *CheckoutService) StartCheckout(ctx context.Context, shopperID string) (*domain.Checkout, error) {
	if shopperID == "" {
		return nil, apperrors.Validation("shopper id is required")
	}

	existing, err := s.repo.GetActiveByShopperID(ctx, shopperID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("load active checkout: %w", err)
	}
	if existing != nil {
		if !existing.Expired(time.Now().UTC()) {
			return existing, nil
		}
		existing.Status = domain.CheckoutStatusExpired
		if updateErr := s.repo.Update(ctx, existing); updateErr != nil {
			s.logger.WarnContext(ctx, "failed to expire stale checkout session",
				slog.String("session_id", existing.ID),
				slog.String("error", updateErr.Error()),
			)
		}
	}

	now := time.Now().UTC()
	session := &domain.Checkout{
		ID:        uuid.New().String(),
		ShopperID: shopperID,
		Step:      domain.StepBilling,
		Status:    domain.CheckoutStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.repo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}

	s.logger.InfoContext(ctx, "checkout session started",
		slog.String("session_id", session.ID),
		slog.String("shopper_id", shopperID),
	)

	return session, nil
}

// GetSession retrieves a checkout session by ID.
func (s *CheckoutService) GetSession(ctx context.Context, sessionID string) (*domain.Checkout, error) {
	if sessionID == "" {
		return nil, apperrors.Validation("session id is required")
	}
	return s.repo.GetByID(ctx, sessionID)
}

// SaveBilling validates and stores the billing step data.
func (s *CheckoutService) SaveBilling(ctx context.Context, sessionID string, billing domain.BillingDetails) (*domain.Checkout, error) {
	return s.saveStep(ctx, sessionID, billing, func(session *domain.Checkout) {
		session.Billing = billing
	})
}

// SaveShipping validates and stores the shipping step data. With
// "same as billing" set the address fields may stay empty.
func (s *CheckoutService) SaveShipping(ctx context.Context, sessionID string, shipping domain.ShippingDetails) (*domain.Checkout, error) {
	return s.saveStep(ctx, sessionID, shipping, func(session *domain.Checkout) {
		session.Shipping = shipping
	})
}

// SavePayment validates and stores the payment method selection.
func (s *CheckoutService) SavePayment(ctx context.Context, sessionID string, payment domain.PaymentDetails) (*domain.Checkout, error) {
	return s.saveStep(ctx, sessionID, payment, func(session *domain.Checkout) {
		session.Payment = payment
	})
}

// SetNotes stores the free-form order notes entered on the review step.
func (s *CheckoutService) SetNotes(ctx context.Context, sessionID, notes string) (*domain.Checkout, error) {
	if len(notes) > 5000 {
		return nil, apperrors.Validation("notes must be at most 5000 characters")
	}
	return s.saveStep(ctx, sessionID, nil, func(session *domain.Checkout) {
		session.Notes = notes
	})
}

// GoToStep moves the wizard to the target step. Backward moves are always
// allowed; forward moves require every earlier step to be complete. A
// rejected transition leaves the session unchanged.
func (s *CheckoutService) GoToStep(ctx context.Context, sessionID, target string) (*domain.Checkout, error) {
	if !domain.IsValidStep(target) {
		return nil, apperrors.Validation(fmt.Sprintf("unknown checkout step %q", target))
	}

	session, err := s.activeSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if !session.CanTransition(target) {
		return nil, apperrors.Validation(fmt.Sprintf("cannot move to step %q before completing the earlier steps", target))
	}

	session.Step = target
	session.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("update checkout session: %w", err)
	}

	return session, nil
}

// Totals computes the order amounts for the shopper's current cart under the
// threshold shipping rule.
func (s *CheckoutService) Totals(ctx context.Context, shopperID string) (domain.Totals, error) {
	if shopperID == "" {
		return domain.Totals{}, apperrors.Validation("shopper id is required")
	}
	cart := s.carts.loadCart(ctx, shopperID)
	return domain.ComputeTotals(cart.Items, s.policy.FreeShippingThreshold, s.policy.FlatShippingFee), nil
}

// SubmitOrder posts the consolidated order to the backend. On success the
// cart is cleared and the session completed; on failure both stay intact so
// the shopper can retry.
func (s *CheckoutService) SubmitOrder(ctx context.Context, sessionID string) (*domain.Order, error) {
	session, err := s.activeSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.ReadyToSubmit() {
		return nil, apperrors.Validation("billing, shipping and payment must be complete before submitting")
	}

	cart := s.carts.loadCart(ctx, session.ShopperID)
	if len(cart.Items) == 0 {
		return nil, apperrors.Validation("cannot submit an order with an empty cart")
	}

	totals := domain.ComputeTotals(cart.Items, s.policy.FreeShippingThreshold, s.policy.FlatShippingFee)
	order := domain.BuildOrder(cart, session, totals)

	orderID, err := s.orders.SubmitOrder(ctx, order)
	if err != nil {
		return nil, err
	}
	order.ID = orderID

	session.Status = domain.CheckoutStatusCompleted
	session.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, session); err != nil {
		s.logger.WarnContext(ctx, "failed to complete checkout session",
			slog.String("session_id", session.ID),
			slog.String("error", err.Error()),
		)
	}

	if err := s.carts.ClearCart(ctx, session.ShopperID); err != nil {
		s.logger.WarnContext(ctx, "failed to clear cart after order submission",
			slog.String("shopper_id", session.ShopperID),
			slog.String("error", err.Error()),
		)
	}

	if err := s.producer.PublishOrderSubmitted(ctx, order); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.submitted event",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "order submitted",
		slog.String("order_id", order.ID),
		slog.String("shopper_id", session.ShopperID),
		slog.Int64("total", order.Total),
	)

	return order, nil
}

// saveStep loads the active session, validates the step payload when one is
// given, applies the mutation and persists it.
func (s *CheckoutService) saveStep(ctx context.Context, sessionID string, payload any, apply func(*domain.Checkout)) (*domain.Checkout, error) {
	if payload != nil {
		if err := validator.Validate(payload); err != nil {
			return nil, err
		}
	}

	session, err := s.activeSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	apply(session)
	session.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("update checkout session: %w", err)
	}

	return session, nil
}

// activeSession loads a session and rejects completed or expired ones.
func (s *CheckoutService) activeSession(ctx context.Context, sessionID string) (*domain.Checkout, error) {
	if sessionID == "" {
		return nil, apperrors.Validation("session id is required")
	}

	session, err := s.repo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != domain.CheckoutStatusActive {
		return nil, apperrors.Conflict(fmt.Sprintf("checkout session is %s", session.Status))
	}
	if session.Expired(time.Now().UTC()) {
		session.Status = domain.CheckoutStatusExpired
		if updateErr := s.repo.Update(ctx, session); updateErr != nil {
			s.logger.WarnContext(ctx, "failed to expire checkout session",
				slog.String("session_id", session.ID),
				slog.String("error", updateErr.Error()),
			)
		}
		return nil, apperrors.Conflict("checkout session has expired")
	}
	return session, nil
}
