package backend

import (
	"context"
	"net/http"

	"github.com/cncideas/storefront/internal/domain"
)

// orderReceipt is the backend's confirmation of an accepted order.
type orderReceipt struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

// SubmitOrder posts the consolidated order to the intake endpoint and returns
// the backend-assigned order ID.
func (c *Client) SubmitOrder(ctx context.Context, order *domain.Order) (string, error) {
	var env entityEnvelope[orderReceipt]
	if err := c.sendJSON(ctx, http.MethodPost, "/orders", order, &env); err != nil {
		return "", err
	}
	if env.Data.OrderID != "" {
		return env.Data.OrderID, nil
	}
	return order.ID, nil
}

// SendContact relays a contact message to the backend.
func (c *Client) SendContact(ctx context.Context, msg domain.ContactMessage) error {
	return c.sendJSON(ctx, http.MethodPost, "/contact", msg, nil)
}
