package email

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/qs3c/fitness_go_server/config"
)

type fakeDialer struct {
	failures int
	calls    int
	sent     []*gomail.Message
}

func (d *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	d.calls++
	if d.calls <= d.failures {
		return errors.New("smtp unavailable")
	}
	d.sent = append(d.sent, m...)
	return nil
}

func newTestService(d *fakeDialer, attempts uint) *Service {
	return &Service{
		cfg: &config.EmailConfig{
			From:       "no-reply@example.com",
			FromName:   "Fitness",
			OperatorTo: []string{"ops@example.com"},
		},
		dialer:      d,
		newBackOff:  func() backoff.BackOff { return backoff.NewConstantBackOff(time.Millisecond) },
		maxAttempts: attempts,
	}
}

func render(t *testing.T, m *gomail.Message) string {
	t.Helper()
	var buf bytes.Buffer
	_, err := m.WriteTo(&buf)
	require.NoError(t, err)
	return buf.String()
}

func TestSendOrderReceipt(t *testing.T) {
	d := &fakeDialer{}
	s := newTestService(d, 3)

	err := s.SendOrderReceipt(context.Background(), "amy@example.com", "amy", &OrderReceipt{
		OrderID: 12,
		Total:   "25.00",
		Lines:   []ReceiptLine{{Name: "Whey", Quantity: 2, Price: "10.00"}},
	})
	require.NoError(t, err)
	require.Len(t, d.sent, 1)

	assert.Equal(t, []string{"amy@example.com"}, d.sent[0].GetHeader("To"))
	assert.Equal(t, []string{"Your order #12"}, d.sent[0].GetHeader("Subject"))
	assert.Contains(t, render(t, d.sent[0]), "Total: 25.00")
}

func TestSend_RetriesThenSucceeds(t *testing.T) {
	d := &fakeDialer{failures: 2}
	s := newTestService(d, 3)

	err := s.SendSubscriptionConfirmation(context.Background(), "bo@example.com", "bo", "Pro", time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 3, d.calls)
	assert.Len(t, d.sent, 1)
}

func TestSend_GivesUp(t *testing.T) {
	d := &fakeDialer{failures: 10}
	s := newTestService(d, 2)

	err := s.SendFulfillmentAlert(context.Background(), &FulfillmentAlert{
		EventID: "evt_1", PaymentRef: "pi_1", Kind: "order", Reason: "product 9 not found", OccurredAt: time.Now(),
	})
	assert.Error(t, err)
	assert.Equal(t, 2, d.calls)
}

func TestSendFulfillmentAlert_NoOperators(t *testing.T) {
	d := &fakeDialer{}
	s := newTestService(d, 1)
	s.cfg.OperatorTo = nil

	require.NoError(t, s.SendFulfillmentAlert(context.Background(), &FulfillmentAlert{}))
	assert.Equal(t, 0, d.calls)
}
