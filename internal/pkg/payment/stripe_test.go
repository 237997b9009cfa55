package payment

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
)

const testWebhookSecret = "whsec_test_secret"

func newTestGateway(t *testing.T, handler http.HandlerFunc) *StripeGateway {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	backends := &stripe.Backends{
		API: stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
			URL:               stripe.String(srv.URL),
			MaxNetworkRetries: stripe.Int64(0),
			LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelNull},
		}),
	}
	return NewStripeGateway("sk_test_123", testWebhookSecret, backends)
}

func signedPayload(t *testing.T, payload string, secret string) string {
	t.Helper()
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   []byte(payload),
		Secret:    secret,
		Timestamp: time.Now(),
	})
	return signed.Header
}

func TestStripeGateway_CreateCheckoutSession(t *testing.T) {
	var form map[string]string
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasSuffix(r.URL.Path, "/checkout/sessions"))
		require.NoError(t, r.ParseForm())
		form = map[string]string{}
		for k, v := range r.PostForm {
			form[k] = v[0]
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"cs_test_1","object":"checkout.session","url":"https://checkout.stripe.com/c/pay/cs_test_1"}`)
	})

	session, err := gw.CreateCheckoutSession(context.Background(), &CheckoutRequest{
		Currency: "usd",
		LineItems: []LineItem{
			{Name: "Whey Protein", UnitAmount: decimal.RequireFromString("10.00"), Quantity: 2},
		},
		Metadata:   map[string]string{MetaKind: KindOrder, MetaUserID: "1"},
		SuccessURL: "http://localhost/success",
		CancelURL:  "http://localhost/cancel",
	})
	require.NoError(t, err)
	assert.Equal(t, "cs_test_1", session.ID)
	assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_test_1", session.URL)

	assert.Equal(t, "payment", form["mode"])
	assert.Equal(t, "1000", form["line_items[0][price_data][unit_amount]"])
	assert.Equal(t, "2", form["line_items[0][quantity]"])
	assert.Equal(t, "usd", form["line_items[0][price_data][currency]"])
	assert.Equal(t, "Whey Protein", form["line_items[0][price_data][product_data][name]"])
	assert.Equal(t, "order", form["metadata[kind]"])
	assert.Equal(t, "order", form["payment_intent_data[metadata][kind]"])
}

func TestStripeGateway_CreateCheckoutSession_ProviderError(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":{"type":"invalid_request_error","message":"bad currency"}}`)
	})

	_, err := gw.CreateCheckoutSession(context.Background(), &CheckoutRequest{Currency: "xxx"})
	assert.ErrorIs(t, err, ErrProvider)
}

const completedEvent = `{
  "id": "evt_1",
  "object": "event",
  "type": "checkout.session.completed",
  "data": {"object": {
    "id": "cs_test_1",
    "object": "checkout.session",
    "payment_intent": "pi_123",
    "payment_status": "paid",
    "metadata": {"kind": "subscription", "user_id": "5", "plan_id": "2", "plan_price": "9.99"}
  }}
}`

func TestStripeGateway_ParseWebhook(t *testing.T) {
	gw := NewStripeGateway("sk_test_123", testWebhookSecret, nil)
	header := signedPayload(t, completedEvent, testWebhookSecret)

	ev, err := gw.ParseWebhook([]byte(completedEvent), header)
	require.NoError(t, err)
	assert.Equal(t, "evt_1", ev.ID)
	assert.Equal(t, EventCheckoutCompleted, ev.Type)
	assert.Equal(t, "cs_test_1", ev.SessionID)
	assert.Equal(t, "pi_123", ev.PaymentIntentID)
	assert.Equal(t, "paid", ev.PaymentStatus)
	assert.Equal(t, "2", ev.Metadata[MetaPlanID])
}

func TestStripeGateway_ParseWebhook_BadSignature(t *testing.T) {
	gw := NewStripeGateway("sk_test_123", testWebhookSecret, nil)

	_, err := gw.ParseWebhook([]byte(completedEvent), signedPayload(t, completedEvent, "whsec_other"))
	assert.ErrorIs(t, err, ErrInvalidSignature)

	_, err = gw.ParseWebhook([]byte(completedEvent), "")
	assert.ErrorIs(t, err, ErrInvalidSignature)

	// 篡改内容
	header := signedPayload(t, completedEvent, testWebhookSecret)
	tampered := strings.Replace(completedEvent, "pi_123", "pi_999", 1)
	_, err = gw.ParseWebhook([]byte(tampered), header)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestStripeGateway_ParseWebhook_OtherEvent(t *testing.T) {
	gw := NewStripeGateway("sk_test_123", testWebhookSecret, nil)
	payload := `{"id":"evt_2","object":"event","type":"payment_intent.created","data":{"object":{"id":"pi_1","object":"payment_intent"}}}`

	ev, err := gw.ParseWebhook([]byte(payload), signedPayload(t, payload, testWebhookSecret))
	require.NoError(t, err)
	assert.Equal(t, "payment_intent.created", ev.Type)
	assert.Empty(t, ev.PaymentIntentID)
}
