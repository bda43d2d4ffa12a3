package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/TodoWidget/internal/config"
	"github.com/Kerhoff/TodoWidget/internal/database"
	"github.com/Kerhoff/TodoWidget/internal/metrics"
	"github.com/Kerhoff/TodoWidget/internal/models"
	"github.com/Kerhoff/TodoWidget/internal/repository"
)

const (
	entityDaily   = "daily"
	entityMidterm = "midterm"
)

// ConnectionManager is the part of database.Manager the service drives.
type ConnectionManager interface {
	TestConnection(ctx context.Context, cfg config.Connection) database.Result
	Reconnect(ctx context.Context, cfg config.Connection) database.Result
	CurrentConfig() config.Connection
	Configure(p config.ConnectionPatch) error
	IsConnected(ctx context.Context) bool
}

// Publisher receives reload notifications.
type Publisher interface {
	Publish(event string)
}

// Service is the central business logic layer shared by the HTTP command
// surface and the Telegram shell. List operations never fail: storage errors
// are logged and an empty list is returned.
type Service struct {
	conn      ConnectionManager
	logger    *logrus.Logger
	metrics   *metrics.Metrics
	publisher Publisher
	Daily     repository.DailyTodoRepository
	Midterm   repository.MidtermTodoRepository
}

// New creates a new Service with all required dependencies. m and pub may be
// nil.
func New(conn ConnectionManager, logger *logrus.Logger, m *metrics.Metrics, pub Publisher,
	daily repository.DailyTodoRepository,
	midterm repository.MidtermTodoRepository,
) *Service {
	return &Service{
		conn: conn, logger: logger, metrics: m, publisher: pub,
		Daily: daily, Midterm: midterm,
	}
}

// ListDailyTodos returns the todos of date, or of every date when date is nil.
func (s *Service) ListDailyTodos(ctx context.Context, date *models.Date) []models.DailyTodo {
	started := time.Now()
	todos, err := s.Daily.List(ctx, date)
	s.metrics.Observe(entityDaily, "list", started, err)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to list daily todos")
		return []models.DailyTodo{}
	}
	return todos
}

// GetDailyTodo returns a single daily todo.
func (s *Service) GetDailyTodo(ctx context.Context, id int64) (*models.DailyTodo, error) {
	todo, err := s.Daily.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get daily todo %d: %w", id, err)
	}
	return todo, nil
}

// AddDailyTodo validates and stores a new daily todo.
func (s *Service) AddDailyTodo(ctx context.Context, in models.NewDailyTodo) (todo *models.DailyTodo, err error) {
	started := time.Now()
	defer func() { s.metrics.Observe(entityDaily, "create", started, err) }()

	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	todo, err = s.Daily.Create(ctx, in)
	if err != nil {
		s.logger.WithError(err).Error("Failed to add daily todo")
		return nil, fmt.Errorf("failed to add daily todo: %w", err)
	}
	s.logger.WithFields(logrus.Fields{"id": todo.ID, "date": todo.TodoDate}).Debug("Added daily todo")
	return todo, nil
}

// UpdateDailyTodo applies patch to the todo with the given id.
func (s *Service) UpdateDailyTodo(ctx context.Context, id int64, patch models.DailyTodoPatch) (todo *models.DailyTodo, err error) {
	started := time.Now()
	defer func() { s.metrics.Observe(entityDaily, "update", started, err) }()

	if err := patch.Validate(); err != nil {
		return nil, err
	}

	todo, err = s.Daily.Update(ctx, id, patch)
	if err != nil {
		s.logger.WithError(err).WithField("id", id).Error("Failed to update daily todo")
		return nil, fmt.Errorf("failed to update daily todo %d: %w", id, err)
	}
	return todo, nil
}

// DeleteDailyTodo removes a daily todo. Deleting a missing id succeeds.
func (s *Service) DeleteDailyTodo(ctx context.Context, id int64) (err error) {
	started := time.Now()
	defer func() { s.metrics.Observe(entityDaily, "delete", started, err) }()

	if err := s.Daily.Delete(ctx, id); err != nil {
		s.logger.WithError(err).WithField("id", id).Error("Failed to delete daily todo")
		return fmt.Errorf("failed to delete daily todo %d: %w", id, err)
	}
	return nil
}

// ListMidtermTodos returns every midterm todo ordered by deadline.
func (s *Service) ListMidtermTodos(ctx context.Context) []models.MidtermTodo {
	started := time.Now()
	todos, err := s.Midterm.List(ctx)
	s.metrics.Observe(entityMidterm, "list", started, err)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to list midterm todos")
		return []models.MidtermTodo{}
	}
	return todos
}

// GetMidtermTodo returns a single midterm todo.
func (s *Service) GetMidtermTodo(ctx context.Context, id int64) (*models.MidtermTodo, error) {
	todo, err := s.Midterm.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get midterm todo %d: %w", id, err)
	}
	return todo, nil
}

// AddMidtermTodo validates and stores a new midterm todo.
func (s *Service) AddMidtermTodo(ctx context.Context, in models.NewMidtermTodo) (todo *models.MidtermTodo, err error) {
	started := time.Now()
	defer func() { s.metrics.Observe(entityMidterm, "create", started, err) }()

	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	todo, err = s.Midterm.Create(ctx, in)
	if err != nil {
		s.logger.WithError(err).Error("Failed to add midterm todo")
		return nil, fmt.Errorf("failed to add midterm todo: %w", err)
	}
	s.logger.WithFields(logrus.Fields{"id": todo.ID, "end_date": todo.EndDate}).Debug("Added midterm todo")
	return todo, nil
}

// UpdateMidtermTodo applies patch to the todo with the given id. When the
// patch moves only one end of the date range, the stored row is read first so
// the resulting range can be checked.
func (s *Service) UpdateMidtermTodo(ctx context.Context, id int64, patch models.MidtermTodoPatch) (todo *models.MidtermTodo, err error) {
	started := time.Now()
	defer func() { s.metrics.Observe(entityMidterm, "update", started, err) }()

	if err := patch.Validate(); err != nil {
		return nil, err
	}
	if patch.TouchesOneDate() {
		current, err := s.Midterm.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to update midterm todo %d: %w", id, err)
		}
		if err := patch.ValidateAgainst(current); err != nil {
			return nil, err
		}
	}

	todo, err = s.Midterm.Update(ctx, id, patch)
	if err != nil {
		s.logger.WithError(err).WithField("id", id).Error("Failed to update midterm todo")
		return nil, fmt.Errorf("failed to update midterm todo %d: %w", id, err)
	}
	return todo, nil
}

// DeleteMidtermTodo removes a midterm todo. Deleting a missing id succeeds.
func (s *Service) DeleteMidtermTodo(ctx context.Context, id int64) (err error) {
	started := time.Now()
	defer func() { s.metrics.Observe(entityMidterm, "delete", started, err) }()

	if err := s.Midterm.Delete(ctx, id); err != nil {
		s.logger.WithError(err).WithField("id", id).Error("Failed to delete midterm todo")
		return fmt.Errorf("failed to delete midterm todo %d: %w", id, err)
	}
	return nil
}
