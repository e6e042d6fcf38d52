// Package telegram handles the integration with the Telegram Bot API.
// It is responsible for receiving updates from Telegram, processing them,
// and communicating with the central chat hub. Telegram users join the same
// pairing pool as WebSocket users, text chat only.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"strangerlink/backend/internal/chathub"
	"strangerlink/backend/internal/localization"
	"strangerlink/backend/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// BotService is responsible for receiving Telegram updates and routing them to the hub.
type BotService struct {
	BotAPI    *tgbotapi.BotAPI
	Messenger Messenger
	Hub       *chathub.ManagerService
	Localizer *localization.Localizer

	// clients is only touched from the update loop.
	clients map[int64]*Client
}

// NewBotService creates a new BotService instance.
func NewBotService(token string, hub *chathub.ManagerService) (*BotService, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	bot.Debug = false
	slog.Info("telegram bot authorized", "account", bot.Self.UserName)

	localizer, err := localization.NewBundledLocalizer()
	if err != nil {
		return nil, fmt.Errorf("failed to create localizer: %w", err)
	}

	s := newBotService(botMessenger{api: bot}, hub, localizer)
	s.BotAPI = bot
	return s, nil
}

func newBotService(m Messenger, hub *chathub.ManagerService, l *localization.Localizer) *BotService {
	return &BotService{
		Messenger: m,
		Hub:       hub,
		Localizer: l,
		clients:   make(map[int64]*Client),
	}
}

// Run is the main loop for receiving Telegram updates. It returns when ctx is cancelled.
func (s *BotService) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := s.BotAPI.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			s.BotAPI.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			s.handleUpdate(update)
		}
	}
}

func (s *BotService) handleUpdate(update tgbotapi.Update) {
	msg := update.Message
	if msg == nil {
		return
	}
	chatID := msg.Chat.ID
	lang := ""
	if msg.From != nil {
		lang = msg.From.LanguageCode
	}

	switch {
	case msg.IsCommand():
		s.handleCommand(chatID, lang, msg.Command())
	case msg.Text != "":
		s.handleText(chatID, lang, msg.Text)
	default:
		s.reply(chatID, lang, "unsupported_message_type")
	}
}

func (s *BotService) handleCommand(chatID int64, lang, command string) {
	switch command {
	case "start":
		c, err := s.session(chatID, lang)
		if err != nil {
			return
		}
		s.findMatch(c)

	case "next":
		c, err := s.session(chatID, lang)
		if err != nil {
			return
		}
		if sess, err := s.Hub.Session(c.SessionID()); err == nil && sess.State == models.StatePaired {
			if err := s.Hub.Leave(c.SessionID()); err == nil {
				s.reply(chatID, c.Lang, "you_left")
			}
		}
		s.findMatch(c)

	case "stop":
		c, ok := s.clients[chatID]
		if !ok {
			s.reply(chatID, lang, "not_in_chat")
			return
		}
		delete(s.clients, chatID)
		if err := s.Hub.Disconnect(c.SessionID()); err != nil {
			slog.Debug("telegram stop", "chat", chatID, "error", err)
		}
		s.reply(chatID, c.Lang, "stopped")

	case "help":
		s.reply(chatID, lang, "help")

	default:
		s.reply(chatID, lang, "unknown_command")
	}
}

func (s *BotService) handleText(chatID int64, lang, text string) {
	c, ok := s.clients[chatID]
	if !ok {
		s.reply(chatID, lang, "not_in_chat")
		return
	}
	err := s.Hub.Relay(c.SessionID(), "", models.Event{Type: models.EventChat, Message: text})
	if err != nil {
		slog.Debug("telegram text not relayed", "chat", chatID, "error", err)
		s.reply(chatID, c.Lang, "not_in_chat")
	}
}

// session returns the chat's hub session, joining on first use.
func (s *BotService) session(chatID int64, lang string) (*Client, error) {
	if c, ok := s.clients[chatID]; ok {
		return c, nil
	}

	c := newClient(chatID, lang, s.Messenger, s.Localizer)
	if _, err := s.Hub.Join(c, models.Profile{}); err != nil {
		slog.Warn("telegram join failed", "chat", chatID, "error", err)
		return nil, err
	}
	c.Run()
	s.clients[chatID] = c
	return c, nil
}

func (s *BotService) findMatch(c *Client) {
	err := s.Hub.FindMatch(c.SessionID())
	if !errors.Is(err, chathub.ErrInvalidState) {
		return
	}
	sess, err := s.Hub.Session(c.SessionID())
	if err != nil {
		return
	}
	if sess.State == models.StateWaiting {
		s.reply(c.ChatID, c.Lang, "already_searching")
	} else {
		s.reply(c.ChatID, c.Lang, "already_in_chat")
	}
}

func (s *BotService) reply(chatID int64, lang, key string) {
	if err := s.Messenger.SendText(chatID, s.Localizer.GetString(lang, key)); err != nil {
		slog.Warn("failed to send telegram message", "chat", chatID, "error", err)
	}
}
