package resolver

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/globaledutech/payments/internal/payment/domain"
	"gorm.io/datatypes"
)

// Resolution is the outcome of normalizing one raw gateway payload. PaidAt is
// set iff this resolution decided paid; persisting it first-paid-wins is the
// caller's job.
type Resolution struct {
	Status domain.Status
	Raw    datatypes.JSON
	PaidAt *time.Time
}

type paymentEntry struct {
	Status string `json:"status"`
}

type linkResource struct {
	Status        string         `json:"status"`
	PaymentStatus string         `json:"payment_status"`
	Payments      []paymentEntry `json:"payments"`
}

type orderResource struct {
	Status string `json:"status"`
}

func capturedOrPaid(entries []paymentEntry) bool {
	for _, entry := range entries {
		switch strings.ToLower(entry.Status) {
		case "captured", "paid":
			return true
		}
	}
	return false
}

// ResolvePaymentLink normalizes a link-kind payload. The top-level status
// wins when it is already paid; otherwise any captured/paid entry in the
// payments list overrides; otherwise the top-level status passes through.
func ResolvePaymentLink(raw json.RawMessage) domain.Status {
	var link linkResource
	if err := json.Unmarshal(raw, &link); err != nil {
		return domain.StatusUnknown
	}

	top := link.Status
	if top == "" {
		top = link.PaymentStatus
	}
	if strings.EqualFold(top, "paid") {
		return domain.StatusPaid
	}
	if capturedOrPaid(link.Payments) {
		return domain.StatusPaid
	}
	return passthrough(top)
}

// ResolveOrder normalizes an order-kind payload together with its separately
// fetched payments sub-resource.
func ResolveOrder(order json.RawMessage, payments []json.RawMessage) domain.Status {
	var ord orderResource
	if err := json.Unmarshal(order, &ord); err != nil {
		return domain.StatusUnknown
	}

	if strings.EqualFold(ord.Status, "paid") {
		return domain.StatusPaid
	}

	entries := make([]paymentEntry, 0, len(payments))
	for _, raw := range payments {
		var entry paymentEntry
		if err := json.Unmarshal(raw, &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	if capturedOrPaid(entries) {
		return domain.StatusPaid
	}
	return passthrough(ord.Status)
}

func passthrough(status string) domain.Status {
	status = strings.ToLower(strings.TrimSpace(status))
	if status == "" {
		return domain.StatusUnknown
	}
	return domain.Status(status)
}
