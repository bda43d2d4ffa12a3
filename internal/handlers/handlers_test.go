package handlers_test

import (
	"context"
	"errors"
	"io"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kerhoff/TodoWidget/internal/config"
	"github.com/Kerhoff/TodoWidget/internal/database"
	"github.com/Kerhoff/TodoWidget/internal/handlers"
	"github.com/Kerhoff/TodoWidget/internal/models"
	"github.com/Kerhoff/TodoWidget/internal/repository"
	"github.com/Kerhoff/TodoWidget/internal/service"
	"github.com/Kerhoff/TodoWidget/internal/telegram"
)

const chatID = int64(4242)

type recordingSender struct {
	texts []string
}

func (s *recordingSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	msg, ok := c.(tgbotapi.MessageConfig)
	if !ok {
		return tgbotapi.Message{}, errors.New("unexpected chattable")
	}
	s.texts = append(s.texts, msg.Text)
	return tgbotapi.Message{}, nil
}

func (s *recordingSender) last() string {
	if len(s.texts) == 0 {
		return ""
	}
	return s.texts[len(s.texts)-1]
}

type dailyStore struct {
	todos     map[int64]*models.DailyTodo
	next      int64
	connected bool
}

func (d *dailyStore) List(_ context.Context, date *models.Date) ([]models.DailyTodo, error) {
	if !d.connected {
		return nil, repository.ErrNotConnected
	}
	out := []models.DailyTodo{}
	for id := int64(1); id < d.next; id++ {
		if t, ok := d.todos[id]; ok && (date == nil || t.TodoDate.Equal(*date)) {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (d *dailyStore) GetByID(_ context.Context, id int64) (*models.DailyTodo, error) {
	t, ok := d.todos[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return t, nil
}

func (d *dailyStore) Create(_ context.Context, in models.NewDailyTodo) (*models.DailyTodo, error) {
	if !d.connected {
		return nil, repository.ErrNotConnected
	}
	t := &models.DailyTodo{ID: d.next, Content: in.Content, Status: in.Status, Completed: in.Completed, TodoDate: in.TodoDate}
	d.todos[t.ID] = t
	d.next++
	return t, nil
}

func (d *dailyStore) Update(_ context.Context, id int64, patch models.DailyTodoPatch) (*models.DailyTodo, error) {
	t, ok := d.todos[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if patch.Status.Set {
		t.Status = patch.Status.Value
		t.Completed = patch.Status.Value.IsCompleted()
	}
	return t, nil
}

func (d *dailyStore) Delete(_ context.Context, id int64) error {
	delete(d.todos, id)
	return nil
}

type midtermStore struct {
	todos []*models.MidtermTodo
}

func (m *midtermStore) List(context.Context) ([]models.MidtermTodo, error) {
	out := []models.MidtermTodo{}
	for _, t := range m.todos {
		out = append(out, *t)
	}
	return out, nil
}

func (m *midtermStore) GetByID(_ context.Context, id int64) (*models.MidtermTodo, error) {
	for _, t := range m.todos {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *midtermStore) Create(_ context.Context, in models.NewMidtermTodo) (*models.MidtermTodo, error) {
	t := &models.MidtermTodo{
		ID: int64(len(m.todos) + 1), Title: in.Title, StartDate: in.StartDate, EndDate: in.EndDate,
		Status: in.Status, Progress: in.Progress,
	}
	m.todos = append(m.todos, t)
	return t, nil
}

func (m *midtermStore) Update(ctx context.Context, id int64, patch models.MidtermTodoPatch) (*models.MidtermTodo, error) {
	t, err := m.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Progress.Set {
		t.Progress = patch.Progress.Value
	}
	return t, nil
}

func (m *midtermStore) Delete(context.Context, int64) error { return nil }

type conn struct{ connected bool }

func (c *conn) TestConnection(context.Context, config.Connection) database.Result {
	return database.Result{}
}
func (c *conn) Reconnect(context.Context, config.Connection) database.Result {
	return database.Result{}
}
func (c *conn) CurrentConfig() config.Connection {
	return config.Connection{Host: "localhost", Port: 5433, Database: "todo_widget", User: "todo_widget"}
}
func (c *conn) Configure(config.ConnectionPatch) error { return nil }
func (c *conn) IsConnected(context.Context) bool      { return c.connected }

type bench struct {
	router  *telegram.Router
	sender  *recordingSender
	daily   *dailyStore
	midterm *midtermStore
}

func newBench() *bench {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	b := &bench{
		sender:  &recordingSender{},
		daily:   &dailyStore{todos: map[int64]*models.DailyTodo{}, next: 1, connected: true},
		midterm: &midtermStore{},
	}
	svc := service.New(&conn{connected: true}, logger, nil, nil, b.daily, b.midterm)
	b.router = telegram.NewRouter(chatID, logger, nil)
	handlers.Register(b.router, svc, logger)
	return b
}

func command(chat int64, text string) *tgbotapi.Message {
	length := len(text)
	for i, r := range text {
		if r == ' ' {
			length = i
			break
		}
	}
	return &tgbotapi.Message{
		Text:     text,
		Chat:     &tgbotapi.Chat{ID: chat},
		From:     &tgbotapi.User{ID: 1},
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: length}},
	}
}

func (b *bench) send(text string) string {
	b.router.HandleMessage(b.sender, command(chatID, text))
	return b.sender.last()
}

func Test_Router_Ignores_Other_Chats(t *testing.T) {
	t.Parallel()
	b := newBench()

	b.router.HandleMessage(b.sender, command(1, "/add Buy milk"))

	assert.Empty(t, b.sender.texts)
	assert.Empty(t, b.daily.todos)
}

func Test_Router_Unknown_Command(t *testing.T) {
	t.Parallel()
	b := newBench()

	assert.Contains(t, b.send("/frobnicate"), "Unknown command")
}

func Test_Commands_Daily_Flow(t *testing.T) {
	t.Parallel()
	b := newBench()

	assert.Contains(t, b.send("/add Buy milk"), "#1 Buy milk")
	require.Len(t, b.daily.todos, 1)
	assert.True(t, b.daily.todos[1].TodoDate.Equal(models.Today()))

	assert.Contains(t, b.send("/add 2024-06-02 Walk dog"), "2024-06-02")
	assert.Equal(t, "2024-06-02", b.daily.todos[2].TodoDate.String())

	assert.Contains(t, b.send("/done 1"), "✅ #1 Buy milk")
	assert.True(t, b.daily.todos[1].Completed)

	assert.Contains(t, b.send("/hold 1"), "⏸ #1")
	assert.False(t, b.daily.todos[1].Completed)

	reply := b.send("/today")
	assert.Contains(t, reply, "Buy milk")
	assert.NotContains(t, reply, "Walk dog")
	assert.Contains(t, reply, "0/1 done")

	assert.Contains(t, b.send("/delete 1"), "deleted")
	assert.Contains(t, b.send("/today"), "No todos")
}

func Test_Commands_Report_Errors(t *testing.T) {
	t.Parallel()
	b := newBench()

	assert.Contains(t, b.send("/done"), "usage: /done <id>")
	assert.Contains(t, b.send("/done abc"), "invalid todo id")
	assert.Contains(t, b.send("/done 9"), "todo not found")
	assert.Contains(t, b.send("/today yesterday"), "YYYY-MM-DD")

	b.daily.connected = false
	assert.Contains(t, b.send("/add Buy milk"), "database is not connected")
}

func Test_Commands_Goals(t *testing.T) {
	t.Parallel()
	b := newBench()

	assert.Contains(t, b.send("/goal 2024-06-01 2024-06-10 Write report"), "Write report")
	require.Len(t, b.midterm.todos, 1)
	assert.Equal(t, models.MidtermStatusPending, b.midterm.todos[0].Status)

	assert.Contains(t, b.send("/goal 2024-06-10 2024-06-01 Backwards"), "end_date")
	assert.Len(t, b.midterm.todos, 1)

	assert.Contains(t, b.send("/progress 1 50"), "50%")
	assert.Equal(t, 50, b.midterm.todos[0].Progress)
	assert.Equal(t, models.MidtermStatusPending, b.midterm.todos[0].Status)

	assert.Contains(t, b.send("/progress 1 150"), "progress")
	assert.Contains(t, b.send("/goals"), "#1 Write report")
}

func Test_Commands_Help_And_Status(t *testing.T) {
	t.Parallel()
	b := newBench()

	assert.Contains(t, b.send("/help"), "/progress")
	assert.Contains(t, b.send("/start"), "Welcome")
	reply := b.send("/dbstatus")
	assert.Contains(t, reply, "connected")
	assert.Contains(t, reply, "localhost:5433")
}
