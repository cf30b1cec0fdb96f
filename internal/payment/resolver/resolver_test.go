package resolver

import (
	"encoding/json"
	"testing"

	"github.com/globaledutech/payments/internal/payment/domain"
	"github.com/stretchr/testify/require"
)

func TestResolvePaymentLink(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    domain.Status
	}{
		{
			name:    "top level paid",
			payload: `{"status":"paid"}`,
			want:    domain.StatusPaid,
		},
		{
			name:    "top level paid mixed case",
			payload: `{"status":"Paid"}`,
			want:    domain.StatusPaid,
		},
		{
			name:    "payment_status fallback",
			payload: `{"payment_status":"paid"}`,
			want:    domain.StatusPaid,
		},
		{
			name:    "captured entry overrides active",
			payload: `{"status":"active","payments":[{"status":"failed"},{"status":"captured"}]}`,
			want:    domain.StatusPaid,
		},
		{
			name:    "paid entry overrides created",
			payload: `{"status":"created","payments":[{"status":"paid"}]}`,
			want:    domain.StatusPaid,
		},
		{
			name:    "passthrough active",
			payload: `{"status":"active","payments":[{"status":"failed"}]}`,
			want:    domain.StatusActive,
		},
		{
			name:    "missing status defaults unknown",
			payload: `{"payments":[]}`,
			want:    domain.StatusUnknown,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ResolvePaymentLink(json.RawMessage(tc.payload))
			require.Equal(t, tc.want, got)
		})
	}
}

func TestResolveOrder(t *testing.T) {
	tests := []struct {
		name     string
		order    string
		payments []string
		want     domain.Status
	}{
		{
			name:  "order status paid",
			order: `{"status":"paid"}`,
			want:  domain.StatusPaid,
		},
		{
			name:     "captured payment overrides attempted",
			order:    `{"status":"attempted"}`,
			payments: []string{`{"status":"failed"}`, `{"status":"captured"}`},
			want:     domain.StatusPaid,
		},
		{
			name:     "created with empty payments passes through",
			order:    `{"status":"created"}`,
			payments: nil,
			want:     domain.StatusCreated,
		},
		{
			name:  "missing status defaults unknown",
			order: `{}`,
			want:  domain.StatusUnknown,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var payments []json.RawMessage
			for _, p := range tc.payments {
				payments = append(payments, json.RawMessage(p))
			}
			got := ResolveOrder(json.RawMessage(tc.order), payments)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestResolveDeterministic(t *testing.T) {
	payload := json.RawMessage(`{"status":"active","payments":[{"status":"captured"}]}`)
	first := ResolvePaymentLink(payload)
	for i := 0; i < 10; i++ {
		require.Equal(t, first, ResolvePaymentLink(payload))
	}
	require.Equal(t, domain.StatusPaid, first)
}
