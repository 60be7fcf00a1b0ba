package mail

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/orders/backend/internal/infrastructure/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type captured struct {
	addr string
	auth smtp.Auth
	from string
	to   []string
	msg  string
}

func newTestMailer(t *testing.T, fail error) (*SMTPMailer, *captured) {
	t.Helper()
	m := NewSMTPMailer(config.MailConfig{
		Enabled:  true,
		Host:     "smtp.example.com",
		Port:     587,
		Username: "robot",
		Password: "secret",
		From:     "orders@example.com",
	})
	m.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	c := &captured{}
	m.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		c.addr, c.auth, c.from, c.to, c.msg = addr, a, from, to, string(msg)
		return fail
	}
	return m, c
}

func TestSMTPMailer_Send(t *testing.T) {
	m, c := newTestMailer(t, nil)

	err := m.Send(context.Background(), Message{To: "buyer@example.com", Subject: "Заказ #5", HTMLBody: "<p>hi</p>"})
	require.NoError(t, err)

	assert.Equal(t, "smtp.example.com:587", c.addr)
	assert.NotNil(t, c.auth)
	assert.Equal(t, "orders@example.com", c.from)
	assert.Equal(t, []string{"buyer@example.com"}, c.to)

	head, body, ok := strings.Cut(c.msg, "\r\n\r\n")
	require.True(t, ok)
	assert.Equal(t, "<p>hi</p>", body)
	assert.Contains(t, head, "From: orders@example.com\r\n")
	assert.Contains(t, head, "To: buyer@example.com\r\n")
	assert.Contains(t, head, "Subject: =?utf-8?q?")
	assert.Contains(t, head, "Date: Fri, 02 Jan 2026 03:04:05 +0000\r\n")
	assert.Contains(t, head, "@smtp.example.com>")
	assert.Contains(t, head, `Content-Type: text/html; charset="UTF-8"`)
}

func TestSMTPMailer_SendErrors(t *testing.T) {
	m, _ := newTestMailer(t, errors.New("connection refused"))

	err := m.Send(context.Background(), Message{To: "buyer@example.com"})
	assert.ErrorContains(t, err, "connection refused")

	err = m.Send(context.Background(), Message{})
	assert.ErrorContains(t, err, "recipient is required")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = m.Send(ctx, Message{To: "buyer@example.com"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNew_DisabledLogs(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	sender := New(config.MailConfig{Enabled: false}, zap.New(core))

	_, ok := sender.(*LogMailer)
	require.True(t, ok)
	require.NoError(t, sender.Send(context.Background(), Message{To: "a@b.c", Subject: "s"}))
	assert.Equal(t, 1, logs.FilterField(zap.String("to", "a@b.c")).Len())

	_, ok = New(config.MailConfig{Enabled: true, Host: "h", Port: 25}, zap.NewNop()).(*SMTPMailer)
	assert.True(t, ok)
}

func TestFormatMoney(t *testing.T) {
	assert.Contains(t, FormatMoney(decimal.NewFromInt(175000)), "175 000,00")
	assert.Contains(t, FormatMoney(decimal.RequireFromString("65000.5")), "65 000,50")
	assert.Contains(t, FormatMoney(decimal.Zero), "₽")
}

func TestTemplates(t *testing.T) {
	msg, err := ConfirmEmail("buyer@example.com", "Ivan", "tok123")
	require.NoError(t, err)
	assert.Equal(t, "buyer@example.com", msg.To)
	assert.Equal(t, "Confirm your email", msg.Subject)
	assert.Contains(t, msg.HTMLBody, "tok123")
	assert.Contains(t, msg.HTMLBody, "Hello, Ivan!")

	msg, err = PasswordReset("buyer@example.com", "reset42")
	require.NoError(t, err)
	assert.Contains(t, msg.HTMLBody, "reset42")

	view := OrderView{
		ID:      5,
		State:   "new",
		Address: "Москва, Тверская 1",
		Lines: []OrderLineView{
			{Name: "iPhone <XS>", Model: "apple/iphone/xs-max", Shop: "Связной", Quantity: 1,
				Price: decimal.NewFromInt(110000), Amount: decimal.NewFromInt(110000)},
			{Name: "iPhone XR", Shop: "Связной", Quantity: 1,
				Price: decimal.NewFromInt(65000), Amount: decimal.NewFromInt(65000)},
		},
		Total: decimal.NewFromInt(175000),
	}
	msg, err = OrderPlaced("buyer@example.com", view)
	require.NoError(t, err)
	assert.Equal(t, "Order #5 placed", msg.Subject)
	assert.Contains(t, msg.HTMLBody, "has been placed")
	assert.Contains(t, msg.HTMLBody, "iPhone &lt;XS&gt;")
	assert.Contains(t, msg.HTMLBody, "175 000,00")

	view.Previous, view.State = "new", "confirmed"
	msg, err = OrderStatusChanged("buyer@example.com", view)
	require.NoError(t, err)
	assert.Equal(t, "Order #5 is now confirmed", msg.Subject)
	assert.Contains(t, msg.HTMLBody, "changed from <b>new</b> to <b>confirmed</b>")
}
