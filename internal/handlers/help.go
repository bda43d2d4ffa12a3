package handlers

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/TodoWidget/internal/telegram"
)

const helpText = `📚 Todo Widget

Daily:
• /today [YYYY-MM-DD] - Show todos of a day
• /add [YYYY-MM-DD] <text> - Add a todo
• /done <id> - Mark completed
• /hold <id> - Put on hold
• /undo <id> - Back to pending
• /delete <id> - Delete a todo

Goals:
• /goals [all] - Show goals
• /goal <start> <end> <title> - Add a goal
• /progress <id> <0-100> - Set progress

Database:
• /dbstatus - Connection status`

// HelpHandler handles the /help command
type HelpHandler struct {
	logger *logrus.Logger
}

func NewHelpHandler(logger *logrus.Logger) *HelpHandler {
	return &HelpHandler{logger: logger}
}

func (h *HelpHandler) Handle(bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	msg := tgbotapi.NewMessage(message.Chat.ID, helpText)

	_, err := bot.Send(msg)
	if err != nil {
		return fmt.Errorf("failed to send help message: %w", err)
	}

	h.logger.WithField("chat_id", message.Chat.ID).Info("Sent help message")
	return nil
}
