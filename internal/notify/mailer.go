package notify

import (
	"context"
	"fmt"
	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"
	"kusina-service/internal/config"
	"kusina-service/internal/entity"
	"os"
	"strings"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "notify").Logger()

// MailSender delivers messages; *gomail.Dialer implements it.
type MailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

// SettingsSource supplies the current store settings.
type SettingsSource interface {
	Current(ctx context.Context) entity.Settings
}

// Mailer sends order emails to customers and, for new orders, to the store.
type Mailer struct {
	sender   MailSender
	from     string
	settings SettingsSource
}

// NewMailer returns a mailer that skips sending when SMTP is not configured.
func NewMailer(cfg config.SMTP, settings SettingsSource) *Mailer {
	m := &Mailer{from: cfg.From, settings: settings}
	if !cfg.Configured() {
		logger.Warn().Msg("Email credentials not configured. Emails will not be sent.")
		return m
	}
	if m.from == "" {
		m.from = cfg.User
	}
	m.sender = gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Pass)
	return m
}

func NewMailerWithSender(sender MailSender, from string, settings SettingsSource) *Mailer {
	return &Mailer{sender: sender, from: from, settings: settings}
}

func (m *Mailer) OrderCreated(ctx context.Context, order *entity.Order) error {
	settings := m.settings.Current(ctx)

	var msgs []*gomail.Message
	if settings.EmailNotifications && order.Customer.Email != "" {
		msgs = append(msgs, m.message(settings, order.Customer.Email,
			fmt.Sprintf("Order Confirmation #%s", order.ID.Hex()),
			confirmationBody(settings, order)))
	}
	if settings.OrderNotifications && settings.StoreEmail != "" {
		msgs = append(msgs, m.message(settings, settings.StoreEmail,
			fmt.Sprintf("New Order #%s", order.ID.Hex()),
			storeAlertBody(order)))
	}
	return m.send(msgs...)
}

func (m *Mailer) OrderStatusChanged(ctx context.Context, order *entity.Order) error {
	settings := m.settings.Current(ctx)
	if !settings.EmailNotifications || order.Customer.Email == "" {
		return nil
	}
	return m.send(m.message(settings, order.Customer.Email,
		fmt.Sprintf("Order Status Update #%s", order.ID.Hex()),
		statusBody(settings, order)))
}

func (m *Mailer) send(msgs ...*gomail.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	if m.sender == nil {
		logger.Info().Msg("Email service not configured. Skipping email notification.")
		return nil
	}
	if err := m.sender.DialAndSend(msgs...); err != nil {
		return fmt.Errorf("sending email: %w", err)
	}
	logger.Info().Msgf("Sent %d email(s)", len(msgs))
	return nil
}

func (m *Mailer) message(settings entity.Settings, to, subject, body string) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.from, settings.StoreName)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)
	return msg
}

func itemLines(order *entity.Order) string {
	var b strings.Builder
	for _, item := range order.Items {
		fmt.Fprintf(&b, "%s x %d - ₱%.2f\n", item.Name, item.Quantity, item.Price)
		for _, a := range item.Addons {
			fmt.Fprintf(&b, "  + %s - ₱%.2f\n", a.Name, a.Price)
		}
	}
	return b.String()
}

func confirmationBody(settings entity.Settings, order *entity.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Thank you for your order!\n\nOrder Details:\n%s\n", itemLines(order))
	fmt.Fprintf(&b, "Total Amount: ₱%.2f\n", order.Total)
	fmt.Fprintf(&b, "Payment Method: %s\n\n", order.PaymentMethod.Label())
	if order.PaymentMethod == entity.PaymentGCash {
		b.WriteString("Please complete your GCash payment to process your order.\n\n")
	} else {
		b.WriteString("Please prepare the exact amount when picking up your order.\n\n")
	}
	fmt.Fprintf(&b, "Thank you for choosing %s!\n", settings.StoreName)
	return b.String()
}

func statusBody(settings entity.Settings, order *entity.Order) string {
	var b strings.Builder
	name := order.Customer.Name
	if name == "" {
		name = "there"
	}
	fmt.Fprintf(&b, "Hello %s,\n\n", name)
	fmt.Fprintf(&b, "Your order status has been updated to: %s\n\n", strings.ToUpper(string(order.OrderStatus)))
	fmt.Fprintf(&b, "%s\n\n", order.OrderStatus.Message())
	fmt.Fprintf(&b, "Order Details:\n%s\n", itemLines(order))
	fmt.Fprintf(&b, "Total Amount: ₱%.2f\n\n", order.Total)
	b.WriteString("If you have any questions, please contact us")
	if settings.StoreEmail != "" {
		fmt.Fprintf(&b, " at %s", settings.StoreEmail)
	}
	if settings.StorePhone != "" {
		fmt.Fprintf(&b, " or %s", settings.StorePhone)
	}
	fmt.Fprintf(&b, ".\n\nThank you for choosing %s!\n", settings.StoreName)
	return b.String()
}

func storeAlertBody(order *entity.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "New order from %s <%s>\n\n", order.Customer.Name, order.Customer.Email)
	b.WriteString(itemLines(order))
	fmt.Fprintf(&b, "\nTotal Amount: ₱%.2f\n", order.Total)
	fmt.Fprintf(&b, "Payment Method: %s\n", order.PaymentMethod.Label())
	if d := order.DeliveryInfo; d != nil {
		fmt.Fprintf(&b, "Deliver to: %s (%s)\n", d.Address, d.Contact)
		if d.Instructions != "" {
			fmt.Fprintf(&b, "Instructions: %s\n", d.Instructions)
		}
	}
	return b.String()
}
