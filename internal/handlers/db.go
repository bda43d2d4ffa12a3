package handlers

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/TodoWidget/internal/service"
	"github.com/Kerhoff/TodoWidget/internal/telegram"
)

// ---------------------------------------------------------------------------
// DBStatusHandler – /dbstatus
// ---------------------------------------------------------------------------

// DBStatusHandler reports which server the widget uses and whether it answers.
type DBStatusHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

// NewDBStatusHandler creates a new DBStatusHandler.
func NewDBStatusHandler(svc *service.Service, logger *logrus.Logger) *DBStatusHandler {
	return &DBStatusHandler{svc: svc, logger: logger}
}

// Handle processes the /dbstatus command.
func (h *DBStatusHandler) Handle(bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	cfg := h.svc.CurrentConnectionConfig()
	state := "🔴 disconnected"
	if h.svc.CheckConnection(context.Background()) {
		state = "🟢 connected"
	}
	return send(bot, message.Chat.ID, fmt.Sprintf("%s\n%s", state, cfg))
}
