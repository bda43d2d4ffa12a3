package handlers

import (
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/TodoWidget/internal/models"
	"github.com/Kerhoff/TodoWidget/internal/service"
	"github.com/Kerhoff/TodoWidget/internal/telegram"
)

// Registrar is satisfied by *telegram.Bot and *telegram.Router.
type Registrar interface {
	RegisterCommand(command string, handler telegram.CommandHandler)
}

// Register wires every chat command to r.
func Register(r Registrar, svc *service.Service, logger *logrus.Logger) {
	r.RegisterCommand("start", NewStartHandler(logger))
	r.RegisterCommand("help", NewHelpHandler(logger))

	r.RegisterCommand("today", NewTodayHandler(svc, logger))
	r.RegisterCommand("add", NewAddHandler(svc, logger))
	r.RegisterCommand("done", NewStatusHandler(svc, logger, "done", models.DailyStatusCompleted))
	r.RegisterCommand("hold", NewStatusHandler(svc, logger, "hold", models.DailyStatusOnHold))
	r.RegisterCommand("undo", NewStatusHandler(svc, logger, "undo", models.DailyStatusPending))
	r.RegisterCommand("delete", NewDeleteHandler(svc, logger))

	r.RegisterCommand("goals", NewGoalsHandler(svc, logger))
	r.RegisterCommand("goal", NewGoalHandler(svc, logger))
	r.RegisterCommand("progress", NewProgressHandler(svc, logger))

	r.RegisterCommand("dbstatus", NewDBStatusHandler(svc, logger))
}
