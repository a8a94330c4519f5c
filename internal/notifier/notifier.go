// Package notifier renders and delivers the quote and sale-confirmation emails.
// Delivery is best-effort: failures are logged and reported as false.
package notifier

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Message is a rendered email ready for a Mailer
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// Mailer delivers one rendered message
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

type QuoteEmail struct {
	To          string
	ClientName  string
	CompanyName string
	QuoteNumber string
	Total       decimal.Decimal
	Link        string
}

type SaleEmail struct {
	To                 string
	ClientName         string
	SaleNumber         string
	Total              decimal.Decimal
	Commission         decimal.Decimal
	RepresentativeName string
}

type Notifier struct {
	mailer   Mailer
	linkBase string
	printer  *message.Printer
}

// New returns a Notifier; a nil mailer falls back to logging the messages.
func New(mailer Mailer, linkBase string) *Notifier {
	if mailer == nil {
		mailer = LogMailer{}
	}
	return &Notifier{
		mailer:   mailer,
		linkBase: linkBase,
		printer:  message.NewPrinter(language.BrazilianPortuguese),
	}
}

// QuoteLink builds the public link for a quote id.
func (n *Notifier) QuoteLink(id string) string {
	return n.linkBase + "/" + id
}

// FormatBRL renders an amount the way pt-BR readers expect, e.g. R$ 1.234,56.
func (n *Notifier) FormatBRL(v decimal.Decimal) string {
	return n.printer.Sprintf("R$ %.2f", v.InexactFloat64())
}

func (n *Notifier) SendQuote(ctx context.Context, data QuoteEmail) bool {
	body, err := n.render(quoteTemplate, map[string]interface{}{
		"ClientName":  data.ClientName,
		"CompanyName": data.CompanyName,
		"QuoteNumber": data.QuoteNumber,
		"Total":       n.FormatBRL(data.Total),
		"Link":        data.Link,
	})
	if err != nil {
		log.Printf("[Email] failed to render quote %s: %v", data.QuoteNumber, err)
		return false
	}
	msg := Message{
		To:      data.To,
		Subject: fmt.Sprintf("Orçamento %s - %s", data.QuoteNumber, data.CompanyName),
		HTML:    body,
	}
	return n.deliver(ctx, msg, "quote "+data.QuoteNumber)
}

func (n *Notifier) SendSaleConfirmation(ctx context.Context, data SaleEmail) bool {
	body, err := n.render(saleTemplate, map[string]interface{}{
		"ClientName":         data.ClientName,
		"SaleNumber":         data.SaleNumber,
		"Total":              n.FormatBRL(data.Total),
		"Commission":         n.FormatBRL(data.Commission),
		"RepresentativeName": data.RepresentativeName,
	})
	if err != nil {
		log.Printf("[Email] failed to render sale %s: %v", data.SaleNumber, err)
		return false
	}
	msg := Message{
		To:      data.To,
		Subject: fmt.Sprintf("Confirmação de Venda %s", data.SaleNumber),
		HTML:    body,
	}
	return n.deliver(ctx, msg, "sale "+data.SaleNumber)
}

func (n *Notifier) render(tmpl *template.Template, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (n *Notifier) deliver(ctx context.Context, msg Message, what string) bool {
	if msg.To == "" {
		log.Printf("[Email] %s has no recipient, skipping", what)
		return false
	}
	if err := n.mailer.Send(ctx, msg); err != nil {
		log.Printf("[Email] failed to send %s to %s: %v", what, msg.To, err)
		return false
	}
	log.Printf("[Email] %s sent to %s", what, msg.To)
	return true
}

// LogMailer only logs; used when neither SMTP nor AMQP is configured.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, msg Message) error {
	log.Printf("[Email] (log only) to=%s subject=%q", msg.To, msg.Subject)
	return nil
}
