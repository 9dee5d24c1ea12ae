package services

import (
	"fmt"
	"html"
	"math"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/example/flashpizza/internal/models"
)

// Sender is the part of the bot API the service needs.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramService handles sending order alerts to the admin Telegram chat.
type TelegramService struct {
	bot         Sender
	adminChatID int64
	log         *zap.Logger
}

// NewTelegramService connects the bot. Without a token or chat id the
// service is disabled and every send is a no-op.
func NewTelegramService(botToken, adminChatID string, log *zap.Logger) (*TelegramService, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("telegram")
	if botToken == "" || adminChatID == "" {
		log.Info("telegram alerts disabled")
		return &TelegramService{log: log}, nil
	}

	chatID, err := strconv.ParseInt(adminChatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid TELEGRAM_ADMIN_CHAT_ID %q: %w", adminChatID, err)
	}
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("connect telegram bot: %w", err)
	}
	log.Info("telegram alerts enabled", zap.String("bot", bot.Self.UserName))
	return NewTelegramServiceWithSender(bot, chatID, log), nil
}

// NewTelegramServiceWithSender builds an enabled service around an existing sender.
func NewTelegramServiceWithSender(bot Sender, adminChatID int64, log *zap.Logger) *TelegramService {
	if log == nil {
		log = zap.NewNop()
	}
	return &TelegramService{bot: bot, adminChatID: adminChatID, log: log}
}

// Enabled reports whether messages are actually sent.
func (s *TelegramService) Enabled() bool {
	return s != nil && s.bot != nil
}

// SendToAdmin sends an HTML message to the admin chat.
func (s *TelegramService) SendToAdmin(text string) error {
	if !s.Enabled() {
		return nil
	}
	msg := tgbotapi.NewMessage(s.adminChatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if _, err := s.bot.Send(msg); err != nil {
		s.log.Warn("failed to send message", zap.Error(err))
		return err
	}
	return nil
}

// NotifyNewOrder sends the new order alert to the admin chat.
func (s *TelegramService) NotifyNewOrder(order models.Order) error {
	if !s.Enabled() {
		return nil
	}
	return s.SendToAdmin(FormatNewOrder(order))
}

// NotifyStatusChange tells the admin chat an order moved to status.
func (s *TelegramService) NotifyStatusChange(order models.Order, status models.OrderStatus) error {
	if !s.Enabled() {
		return nil
	}
	return s.SendToAdmin(fmt.Sprintf("<b>📦 Order #%s</b> is now <b>%s</b>", order.ShortID(), statusLabel(status)))
}

// FormatNewOrder renders the admin alert for a freshly placed order.
func FormatNewOrder(order models.Order) string {
	var items strings.Builder
	for i, item := range order.Items {
		fmt.Fprintf(&items, "%d. <b>%s</b>\n   %d x %s = %s\n",
			i+1,
			html.EscapeString(item.Name),
			item.Quantity,
			FormatPrice(item.Price),
			FormatPrice(item.Price*float64(item.Quantity)),
		)
	}

	payment := "Cash on Delivery"
	if order.PaymentMethod == models.PaymentMethodUPI {
		payment = "UPI"
	}

	var discount string
	if order.Discount > 0 {
		discount = fmt.Sprintf("<b>🏷 Coupon:</b> %s (-%s)\n", html.EscapeString(order.CouponCode), FormatPrice(order.Discount))
	}

	var maps string
	if loc := order.Customer.Location; loc != nil {
		maps = fmt.Sprintf("<b>🗺 Map:</b> https://maps.google.com/?q=%f,%f\n", loc.Lat, loc.Lng)
	}

	message := fmt.Sprintf(`<b>🍕 NEW ORDER #%s</b>
<b>👤 Customer:</b> %s
<b>📞 Phone:</b> %s
<b>📍 Address:</b> %s
%s<b>📏 Distance:</b> %.1f km
<b>📦 Items:</b>
%s
<b>🧾 Subtotal:</b> %s
%s<b>🚚 Delivery:</b> %s
<b>💰 Total:</b> %s
<b>💳 Payment:</b> %s
━━━━━━━━━━━━━━━━━━`,
		order.ShortID(),
		html.EscapeString(order.Customer.Name),
		html.EscapeString(order.Customer.Phone),
		html.EscapeString(order.Customer.Address),
		maps,
		order.Distance,
		items.String(),
		FormatPrice(order.Subtotal),
		discount,
		deliveryLabel(order.DeliveryCharge),
		FormatPrice(order.Total),
		payment,
	)
	return strings.TrimSpace(message)
}

func deliveryLabel(charge float64) string {
	if charge == 0 {
		return "FREE"
	}
	return FormatPrice(charge)
}

func statusLabel(status models.OrderStatus) string {
	switch status {
	case models.OrderStatusPreparing:
		return "Preparing"
	case models.OrderStatusOutForDelivery:
		return "Out for Delivery"
	case models.OrderStatusCompleted:
		return "Completed"
	case models.OrderStatusCancelled:
		return "Cancelled"
	}
	return "New"
}

// FormatPrice formats a rupee amount with thousand separators. Paise are
// shown only when the amount is fractional.
func FormatPrice(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	amount = math.Round(amount*100) / 100
	whole := int64(amount)
	str := strconv.FormatInt(whole, 10)

	var result strings.Builder
	length := len(str)
	for i, digit := range str {
		if i > 0 && (length-i)%3 == 0 {
			result.WriteString(",")
		}
		result.WriteRune(digit)
	}

	if paise := int64(math.Round((amount - float64(whole)) * 100)); paise > 0 {
		fmt.Fprintf(&result, ".%02d", paise)
	}
	return sign + "₹" + result.String()
}
