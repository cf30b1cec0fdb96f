package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/globaledutech/payments/internal/clock"
	"github.com/globaledutech/payments/internal/gateway"
	"github.com/globaledutech/payments/internal/payment/domain"
	"gorm.io/datatypes"
)

// StatusChecker fetches and normalizes the current gateway state for one
// external identifier.
type StatusChecker interface {
	Check(ctx context.Context, externalID string) (Resolution, error)
}

// Checker dispatches on the identifier's lexical form: a plink_ prefix means
// one payment-link fetch, anything else means an order fetch plus its
// payments sub-resource.
type Checker struct {
	gw    *gateway.Client
	clock clock.Clock
}

func NewChecker(gw *gateway.Client, clk clock.Clock) *Checker {
	return &Checker{gw: gw, clock: clk}
}

func (c *Checker) Check(ctx context.Context, externalID string) (Resolution, error) {
	if strings.HasPrefix(externalID, domain.LinkIDPrefix) {
		return c.checkPaymentLink(ctx, externalID)
	}
	return c.checkOrder(ctx, externalID)
}

func (c *Checker) checkPaymentLink(ctx context.Context, linkID string) (Resolution, error) {
	raw, err := c.gw.GetJSON(ctx, "/v1/payment_links/"+linkID)
	if err != nil {
		return Resolution{}, fmt.Errorf("fetch payment link %s: %w", linkID, err)
	}

	status := ResolvePaymentLink(raw)
	return c.resolution(status, datatypes.JSON(raw)), nil
}

type paymentsWrapper struct {
	Items []json.RawMessage `json:"items"`
}

func (c *Checker) checkOrder(ctx context.Context, orderID string) (Resolution, error) {
	order, err := c.gw.GetJSON(ctx, "/v1/orders/"+orderID)
	if err != nil {
		return Resolution{}, fmt.Errorf("fetch order %s: %w", orderID, err)
	}

	paymentsRaw, err := c.gw.GetJSON(ctx, "/v1/orders/"+orderID+"/payments")
	if err != nil {
		return Resolution{}, fmt.Errorf("fetch order payments %s: %w", orderID, err)
	}

	var wrapper paymentsWrapper
	_ = json.Unmarshal(paymentsRaw, &wrapper)

	status := ResolveOrder(order, wrapper.Items)

	combined, err := json.Marshal(map[string]json.RawMessage{
		"order":    order,
		"payments": itemsArray(wrapper.Items),
	})
	if err != nil {
		return Resolution{}, fmt.Errorf("combine order payload %s: %w", orderID, err)
	}
	return c.resolution(status, datatypes.JSON(combined)), nil
}

func itemsArray(items []json.RawMessage) json.RawMessage {
	if items == nil {
		return json.RawMessage("[]")
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return json.RawMessage("[]")
	}
	return raw
}

func (c *Checker) resolution(status domain.Status, raw datatypes.JSON) Resolution {
	res := Resolution{Status: status, Raw: raw}
	if status == domain.StatusPaid {
		now := c.clock.Now()
		res.PaidAt = &now
	}
	return res
}
