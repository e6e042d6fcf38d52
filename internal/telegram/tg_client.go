package telegram

import (
	"log/slog"
	"strconv"

	"strangerlink/backend/internal/localization"
	"strangerlink/backend/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// SessionPrefix marks hub session ids that belong to Telegram chats.
const SessionPrefix = "tg_"

// Messenger sends plain text to a Telegram chat.
type Messenger interface {
	SendText(chatID int64, text string) error
}

type botMessenger struct {
	api *tgbotapi.BotAPI
}

func (m botMessenger) SendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	_, err := m.api.Send(msg)
	return err
}

// Client реалізує інтерфейс chathub.Client
type Client struct {
	ChatID    int64
	Lang      string
	Send      chan models.Event
	Messenger Messenger
	Localizer *localization.Localizer
}

func newClient(chatID int64, lang string, m Messenger, l *localization.Localizer) *Client {
	return &Client{
		ChatID:    chatID,
		Lang:      lang,
		Send:      make(chan models.Event, 32),
		Messenger: m,
		Localizer: l,
	}
}

// --- Реалізація методів інтерфейсу ---

func (c *Client) SessionID() string {
	return SessionPrefix + strconv.FormatInt(c.ChatID, 10)
}

func (c *Client) GetSendChannel() chan<- models.Event { return c.Send }

// Run запускає 'write pump'. 'Read pump' обробляється централізовано в BotService.
func (c *Client) Run() {
	go c.writePump()
}

// Close закриває Send канал
func (c *Client) Close() {
	close(c.Send)
}

// writePump слухає канал Send і надсилає повідомлення в Telegram
func (c *Client) writePump() {
	defer slog.Debug("telegram write pump stopped", "chat", c.ChatID)

	for ev := range c.Send {
		text := c.render(ev)
		if text == "" {
			continue
		}
		if err := c.Messenger.SendText(c.ChatID, text); err != nil {
			slog.Warn("failed to send telegram message", "chat", c.ChatID, "event", ev.Type, "error", err)
		}
	}
}

// render turns a hub event into chat text. Events a Telegram chat cannot use
// (WebRTC negotiation, presence) render to "".
func (c *Client) render(ev models.Event) string {
	switch ev.Type {
	case models.EventWaiting:
		return c.Localizer.GetString(c.Lang, "searching")
	case models.EventMatchFound:
		return c.Localizer.GetString(c.Lang, "match_found")
	case models.EventPartnerLeft:
		return c.Localizer.GetString(c.Lang, "partner_left")
	case models.EventChat:
		return ev.Message
	case models.EventError:
		return ev.Error
	default:
		return ""
	}
}
