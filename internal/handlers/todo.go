package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/TodoWidget/internal/models"
	"github.com/Kerhoff/TodoWidget/internal/repository"
	"github.com/Kerhoff/TodoWidget/internal/service"
	"github.com/Kerhoff/TodoWidget/internal/telegram"
)

// statusEmoji returns an emoji representing the daily todo status.
func statusEmoji(s models.DailyStatus) string {
	switch s {
	case models.DailyStatusCompleted:
		return "✅"
	case models.DailyStatusOnHold:
		return "⏸"
	default:
		return "⬜"
	}
}

// priorityEmoji returns an emoji representing the todo priority level.
func priorityEmoji(p models.Priority) string {
	switch p {
	case models.PriorityHigh:
		return "🔴"
	case models.PriorityMedium:
		return "🟡"
	default:
		return ""
	}
}

func send(bot telegram.Sender, chatID int64, text string) error {
	if _, err := bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// parseID parses the todo id argument.
func parseID(args []string, usage string) (int64, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("usage: %s", usage)
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(args[0], "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid todo id %q", args[0])
	}
	return id, nil
}

// userError turns service errors into something worth showing in chat.
func userError(err error) error {
	var verr *models.ValidationError
	switch {
	case errors.Is(err, repository.ErrNotConnected):
		return fmt.Errorf("database is not connected")
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("todo not found")
	case errors.As(err, &verr):
		return verr
	}
	return err
}

func formatDaily(t models.DailyTodo) string {
	line := fmt.Sprintf("%s #%d %s", statusEmoji(t.Status), t.ID, t.Content)
	if p := priorityEmoji(t.Priority); p != "" {
		line += " " + p
	}
	return line
}

// ---------------------------------------------------------------------------
// TodayHandler – /today [YYYY-MM-DD]
// ---------------------------------------------------------------------------

// TodayHandler lists the daily todos of one date.
type TodayHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

// NewTodayHandler creates a new TodayHandler.
func NewTodayHandler(svc *service.Service, logger *logrus.Logger) *TodayHandler {
	return &TodayHandler{svc: svc, logger: logger}
}

// Handle processes the /today command.
func (h *TodayHandler) Handle(bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	date := models.Today()
	if len(args) > 0 {
		d, err := models.ParseDate(args[0])
		if err != nil {
			return fmt.Errorf("date must be YYYY-MM-DD")
		}
		date = d
	}

	todos := h.svc.ListDailyTodos(context.Background(), &date)
	if len(todos) == 0 {
		return send(bot, message.Chat.ID, fmt.Sprintf("📭 No todos for %s.", date))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📋 Todos for %s\n\n", date)
	done := 0
	for _, t := range todos {
		sb.WriteString(formatDaily(t))
		sb.WriteByte('\n')
		if t.IsCompleted() {
			done++
		}
	}
	fmt.Fprintf(&sb, "\n%d/%d done", done, len(todos))
	return send(bot, message.Chat.ID, sb.String())
}

// ---------------------------------------------------------------------------
// AddHandler – /add [YYYY-MM-DD] <text>
// ---------------------------------------------------------------------------

// AddHandler handles the /add command to create a daily todo.
type AddHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

// NewAddHandler creates a new AddHandler.
func NewAddHandler(svc *service.Service, logger *logrus.Logger) *AddHandler {
	return &AddHandler{svc: svc, logger: logger}
}

// Handle processes the /add command. A leading date argument schedules the
// todo on that day instead of today.
func (h *AddHandler) Handle(bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	date := models.Today()
	if len(args) > 1 {
		if d, err := models.ParseDate(args[0]); err == nil {
			date = d
			args = args[1:]
		}
	}
	if len(args) == 0 {
		return send(bot, message.Chat.ID, "❌ Please provide a todo text.\nUsage: /add Buy groceries")
	}

	todo, err := h.svc.AddDailyTodo(context.Background(), models.NewDailyTodo{
		Content:  strings.Join(args, " "),
		TodoDate: date,
	})
	if err != nil {
		return userError(err)
	}

	h.logger.WithFields(logrus.Fields{
		"chat_id": message.Chat.ID,
		"todo_id": todo.ID,
	}).Info("Todo created")

	return send(bot, message.Chat.ID, fmt.Sprintf("✅ Todo added for %s\n\n%s", todo.TodoDate, formatDaily(*todo)))
}

// ---------------------------------------------------------------------------
// StatusHandler – /done, /hold, /undo <id>
// ---------------------------------------------------------------------------

// StatusHandler moves a daily todo to a fixed status.
type StatusHandler struct {
	svc     *service.Service
	logger  *logrus.Logger
	status  models.DailyStatus
	command string
}

// NewStatusHandler creates a handler for command that sets status.
func NewStatusHandler(svc *service.Service, logger *logrus.Logger, command string, status models.DailyStatus) *StatusHandler {
	return &StatusHandler{svc: svc, logger: logger, status: status, command: command}
}

// Handle processes the status command.
func (h *StatusHandler) Handle(bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	id, err := parseID(args, "/"+h.command+" <id>")
	if err != nil {
		return err
	}

	todo, err := h.svc.UpdateDailyTodo(context.Background(), id, models.DailyTodoPatch{
		Status: models.Some(h.status),
	})
	if err != nil {
		return userError(err)
	}

	return send(bot, message.Chat.ID, formatDaily(*todo))
}

// ---------------------------------------------------------------------------
// DeleteHandler – /delete <id>
// ---------------------------------------------------------------------------

// DeleteHandler handles the /delete command.
type DeleteHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

// NewDeleteHandler creates a new DeleteHandler.
func NewDeleteHandler(svc *service.Service, logger *logrus.Logger) *DeleteHandler {
	return &DeleteHandler{svc: svc, logger: logger}
}

// Handle processes the /delete command.
func (h *DeleteHandler) Handle(bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	id, err := parseID(args, "/delete <id>")
	if err != nil {
		return err
	}

	if err := h.svc.DeleteDailyTodo(context.Background(), id); err != nil {
		return userError(err)
	}

	h.logger.WithFields(logrus.Fields{
		"chat_id": message.Chat.ID,
		"todo_id": id,
	}).Info("Todo deleted")

	return send(bot, message.Chat.ID, fmt.Sprintf("🗑 Todo #%d deleted.", id))
}
