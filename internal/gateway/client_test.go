package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{
		BaseURL:   srv.URL,
		KeyID:     "rzp_test_key",
		KeySecret: "secret",
	}, zap.NewNop())
}

func TestGetJSONSendsBasicAuth(t *testing.T) {
	var gotUser, gotPass string
	var gotOK bool
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, gotPass, gotOK = r.BasicAuth()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"created"}`))
	}))

	raw, err := client.GetJSON(context.Background(), "/v1/orders/order_1")
	require.NoError(t, err)
	require.JSONEq(t, `{"status":"created"}`, string(raw))
	require.True(t, gotOK)
	require.Equal(t, "rzp_test_key", gotUser)
	require.Equal(t, "secret", gotPass)
}

func TestGetJSONNon2xxCarriesStatusAndBody(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"description":"invalid id"}}`))
	}))

	_, err := client.GetJSON(context.Background(), "/v1/orders/bogus")
	require.Error(t, err)

	gwErr, ok := AsError(err)
	require.True(t, ok)
	require.Equal(t, ErrorKindHTTP, gwErr.Kind)
	require.Equal(t, http.StatusBadRequest, gwErr.StatusCode)
	require.Contains(t, gwErr.Body, "invalid id")
}

func TestGetJSONInvalidBodyIsDecodeError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))

	_, err := client.GetJSON(context.Background(), "/v1/payment_links/plink_1")
	require.Error(t, err)

	gwErr, ok := AsError(err)
	require.True(t, ok)
	require.Equal(t, ErrorKindDecode, gwErr.Kind)
}

func TestPostJSONSendsBody(t *testing.T) {
	var gotContentType string
	var gotBody []byte
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		buf := make([]byte, r.ContentLength)
		r.Body.Read(buf)
		gotBody = buf
		w.Write([]byte(`{"id":"plink_1"}`))
	}))

	raw, err := client.PostJSON(context.Background(), "/v1/payment_links", map[string]any{"amount": 19900})
	require.NoError(t, err)
	require.JSONEq(t, `{"id":"plink_1"}`, string(raw))
	require.Equal(t, "application/json", gotContentType)
	require.JSONEq(t, `{"amount":19900}`, string(gotBody))
}

func TestMissingCredentials(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://localhost:0"}, zap.NewNop())

	_, err := client.GetJSON(context.Background(), "/v1/orders/order_1")
	require.ErrorIs(t, err, ErrMissingCredentials)
}

func TestTransportErrorWraps(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := NewClient(Config{BaseURL: url, KeyID: "k", KeySecret: "s"}, zap.NewNop())
	_, err := client.GetJSON(context.Background(), "/v1/orders/order_1")
	require.Error(t, err)

	gwErr, ok := AsError(err)
	require.True(t, ok)
	require.Equal(t, ErrorKindTransport, gwErr.Kind)
}
