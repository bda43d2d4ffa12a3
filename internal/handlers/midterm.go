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
	"github.com/Kerhoff/TodoWidget/internal/service"
	"github.com/Kerhoff/TodoWidget/internal/telegram"
)

func formatMidterm(t models.MidtermTodo, today models.Date) string {
	var deadline string
	switch left := t.DaysLeft(today); {
	case t.Status == models.MidtermStatusCompleted:
		deadline = "done"
	case left < 0:
		deadline = fmt.Sprintf("%d days overdue", -left)
	case left == 0:
		deadline = "due today"
	default:
		deadline = fmt.Sprintf("%d days left", left)
	}

	line := fmt.Sprintf("#%d %s  %d%% [%s] %s → %s, %s",
		t.ID, t.Title, t.Progress, t.Status, t.StartDate, t.EndDate, deadline)
	if p := priorityEmoji(t.Priority); p != "" {
		line = p + " " + line
	}
	return line
}

// ---------------------------------------------------------------------------
// GoalsHandler – /goals
// ---------------------------------------------------------------------------

// GoalsHandler lists midterm todos that are not completed.
type GoalsHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

// NewGoalsHandler creates a new GoalsHandler.
func NewGoalsHandler(svc *service.Service, logger *logrus.Logger) *GoalsHandler {
	return &GoalsHandler{svc: svc, logger: logger}
}

// Handle processes the /goals command. "/goals all" includes completed ones.
func (h *GoalsHandler) Handle(bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	all := len(args) > 0 && args[0] == "all"
	today := models.Today()

	var sb strings.Builder
	count := 0
	for _, t := range h.svc.ListMidtermTodos(context.Background()) {
		if !all && t.Status == models.MidtermStatusCompleted {
			continue
		}
		sb.WriteString(formatMidterm(t, today))
		sb.WriteByte('\n')
		count++
	}

	if count == 0 {
		return send(bot, message.Chat.ID, "📭 No goals.")
	}
	return send(bot, message.Chat.ID, "🎯 Goals\n\n"+sb.String())
}

// ---------------------------------------------------------------------------
// GoalHandler – /goal <start> <end> <title>
// ---------------------------------------------------------------------------

// GoalHandler creates a midterm todo.
type GoalHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

// NewGoalHandler creates a new GoalHandler.
func NewGoalHandler(svc *service.Service, logger *logrus.Logger) *GoalHandler {
	return &GoalHandler{svc: svc, logger: logger}
}

// Handle processes the /goal command.
func (h *GoalHandler) Handle(bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	const usage = "usage: /goal <YYYY-MM-DD> <YYYY-MM-DD> <title>"
	if len(args) < 3 {
		return errors.New(usage)
	}
	start, err := models.ParseDate(args[0])
	if err != nil {
		return errors.New(usage)
	}
	end, err := models.ParseDate(args[1])
	if err != nil {
		return errors.New(usage)
	}

	todo, err := h.svc.AddMidtermTodo(context.Background(), models.NewMidtermTodo{
		Title:     strings.Join(args[2:], " "),
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		return userError(err)
	}

	h.logger.WithFields(logrus.Fields{
		"chat_id": message.Chat.ID,
		"todo_id": todo.ID,
	}).Info("Goal created")

	return send(bot, message.Chat.ID, "🎯 Goal added\n\n"+formatMidterm(*todo, models.Today()))
}

// ---------------------------------------------------------------------------
// ProgressHandler – /progress <id> <0-100>
// ---------------------------------------------------------------------------

// ProgressHandler sets the progress of a midterm todo. Status is left alone.
type ProgressHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

// NewProgressHandler creates a new ProgressHandler.
func NewProgressHandler(svc *service.Service, logger *logrus.Logger) *ProgressHandler {
	return &ProgressHandler{svc: svc, logger: logger}
}

// Handle processes the /progress command.
func (h *ProgressHandler) Handle(bot telegram.Sender, message *tgbotapi.Message, args []string) error {
	const usage = "/progress <id> <0-100>"
	id, err := parseID(args, usage)
	if err != nil {
		return err
	}
	if len(args) < 2 {
		return fmt.Errorf("usage: %s", usage)
	}
	progress, err := strconv.Atoi(strings.TrimSuffix(args[1], "%"))
	if err != nil {
		return fmt.Errorf("usage: %s", usage)
	}

	todo, err := h.svc.UpdateMidtermTodo(context.Background(), id, models.MidtermTodoPatch{
		Progress: models.Some(progress),
	})
	if err != nil {
		return userError(err)
	}

	return send(bot, message.Chat.ID, formatMidterm(*todo, models.Today()))
}
