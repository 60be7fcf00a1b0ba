package mail

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/leekchan/accounting"
	"github.com/shopspring/decimal"
)

var money = accounting.Accounting{
	Symbol:    "₽",
	Precision: 2,
	Thousand:  " ",
	Decimal:   ",",
	Format:    "%v %s",
}

// FormatMoney renders an amount the way order mails show it, e.g. "175 000,00 ₽"
func FormatMoney(amount decimal.Decimal) string {
	return money.FormatMoney(amount.InexactFloat64())
}

// OrderLineView is one row of an order mail
type OrderLineView struct {
	Name     string
	Model    string
	Shop     string
	Quantity int
	Price    decimal.Decimal
	Amount   decimal.Decimal
}

// OrderView is the order summary rendered into mails
type OrderView struct {
	ID       uint64
	State    string
	Previous string
	Address  string
	Lines    []OrderLineView
	Total    decimal.Decimal
}

const layout = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body style="font-family: Arial, sans-serif; color: #333;">
<h2>{{.Title}}</h2>
{{template "content" .}}
<p style="font-size: 0.8em; color: #777;">This message was sent automatically, please do not reply.</p>
</body>
</html>`

const confirmContent = `{{define "content"}}
<p>Hello{{with .Data.Name}}, {{.}}{{end}}!</p>
<p>Use this code to confirm your email address {{.Data.Email}}:</p>
<p style="font-size: 1.6em; font-weight: bold;">{{.Data.Token}}</p>
{{end}}`

const resetContent = `{{define "content"}}
<p>We received a request to reset the password of {{.Data.Email}}.</p>
<p>Use this code to set a new password:</p>
<p style="font-size: 1.6em; font-weight: bold;">{{.Data.Token}}</p>
<p>If you did not ask for a reset, ignore this message.</p>
{{end}}`

const orderContent = `{{define "content"}}
{{with .Data}}
{{if .Previous}}<p>Order #{{.ID}} changed from <b>{{.Previous}}</b> to <b>{{.State}}</b>.</p>
{{else}}<p>Order #{{.ID}} has been placed and is now <b>{{.State}}</b>.</p>
{{end}}
{{if .Address}}<p>Delivery address: {{.Address}}</p>{{end}}
<table cellpadding="4" style="border-collapse: collapse;">
<tr><th align="left">Product</th><th align="left">Shop</th><th>Qty</th><th align="right">Price</th><th align="right">Amount</th></tr>
{{range .Lines}}<tr><td>{{.Name}}{{with .Model}} ({{.}}){{end}}</td><td>{{.Shop}}</td><td align="center">{{.Quantity}}</td><td align="right">{{money .Price}}</td><td align="right">{{money .Amount}}</td></tr>
{{end}}
<tr><td colspan="4" align="right"><b>Total</b></td><td align="right"><b>{{money .Total}}</b></td></tr>
</table>
{{end}}
{{end}}`

var funcs = template.FuncMap{"money": FormatMoney}

var (
	confirmTemplate = template.Must(template.Must(template.New("layout").Funcs(funcs).Parse(layout)).Parse(confirmContent))
	resetTemplate   = template.Must(template.Must(template.New("layout").Funcs(funcs).Parse(layout)).Parse(resetContent))
	orderTemplate   = template.Must(template.Must(template.New("layout").Funcs(funcs).Parse(layout)).Parse(orderContent))
)

type page struct {
	Title string
	Data  any
}

func render(t *template.Template, to, title string, data any) (Message, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, page{Title: title, Data: data}); err != nil {
		return Message{}, fmt.Errorf("failed to render %q mail: %w", title, err)
	}
	return Message{To: to, Subject: title, HTMLBody: buf.String()}, nil
}

// ConfirmEmail renders the registration confirmation mail
func ConfirmEmail(to, name, token string) (Message, error) {
	data := struct{ Name, Email, Token string }{name, to, token}
	return render(confirmTemplate, to, "Confirm your email", data)
}

// PasswordReset renders the password reset mail
func PasswordReset(to, token string) (Message, error) {
	data := struct{ Email, Token string }{to, token}
	return render(resetTemplate, to, "Password reset", data)
}

// OrderPlaced renders the buyer's order confirmation
func OrderPlaced(to string, view OrderView) (Message, error) {
	return render(orderTemplate, to, fmt.Sprintf("Order #%d placed", view.ID), view)
}

// OrderStatusChanged renders the buyer's status update
func OrderStatusChanged(to string, view OrderView) (Message, error) {
	return render(orderTemplate, to, fmt.Sprintf("Order #%d is now %s", view.ID, view.State), view)
}
