package telegram

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/TodoWidget/internal/metrics"
)

// Sender is the part of *tgbotapi.BotAPI handlers reply through.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// CommandHandler defines the interface for command handlers
type CommandHandler interface {
	Handle(bot Sender, message *tgbotapi.Message, args []string) error
}

// Router handles message routing and command parsing. Only messages from the
// configured chat are dispatched.
type Router struct {
	logger        *logrus.Logger
	metrics       *metrics.Metrics
	allowedChatID int64
	handlers      map[string]CommandHandler
}

// NewRouter creates a new message router
func NewRouter(allowedChatID int64, logger *logrus.Logger, m *metrics.Metrics) *Router {
	return &Router{
		logger:        logger,
		metrics:       m,
		allowedChatID: allowedChatID,
		handlers:      make(map[string]CommandHandler),
	}
}

// RegisterCommand registers a command handler
func (r *Router) RegisterCommand(command string, handler CommandHandler) {
	r.handlers[command] = handler
	r.logger.Debugf("Registered command: %s", command)
}

// HandleMessage handles incoming messages
func (r *Router) HandleMessage(bot Sender, message *tgbotapi.Message) {
	if message.Chat == nil || message.Text == "" || !message.IsCommand() {
		return
	}

	fields := logrus.Fields{
		"chat_id":    message.Chat.ID,
		"message_id": message.MessageID,
	}
	if message.From != nil {
		fields["user_id"] = message.From.ID
	}

	if message.Chat.ID != r.allowedChatID {
		r.logger.WithFields(fields).Warn("Ignoring message from unknown chat")
		return
	}

	command := message.Command()
	args := strings.Fields(message.CommandArguments())
	fields["command"] = command
	r.logger.WithFields(fields).Info("Received command")

	handler, exists := r.handlers[command]
	if !exists {
		r.logger.WithFields(fields).Warn("Unknown command")
		r.reply(bot, message.Chat.ID, "❓ Unknown command. Use /help to see available commands.")
		return
	}

	r.metrics.Command(command)
	if err := handler.Handle(bot, message, args); err != nil {
		r.logger.WithFields(fields).WithError(err).Error("Command handler failed")
		r.reply(bot, message.Chat.ID, "❌ "+err.Error())
	}
}

func (r *Router) reply(bot Sender, chatID int64, text string) {
	if _, err := bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		r.logger.WithError(err).Error("Failed to send message")
	}
}
