package service_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kerhoff/TodoWidget/internal/config"
	"github.com/Kerhoff/TodoWidget/internal/database"
	"github.com/Kerhoff/TodoWidget/internal/events"
	"github.com/Kerhoff/TodoWidget/internal/metrics"
	"github.com/Kerhoff/TodoWidget/internal/models"
	"github.com/Kerhoff/TodoWidget/internal/repository"
	"github.com/Kerhoff/TodoWidget/internal/service"
)

type fakeDaily struct {
	todos    map[int64]*models.DailyTodo
	nextID   int64
	err      error
	updates  []models.DailyTodoPatch
	creates  []models.NewDailyTodo
	lastDate *models.Date
}

func newFakeDaily() *fakeDaily {
	return &fakeDaily{todos: map[int64]*models.DailyTodo{}, nextID: 1}
}

func (f *fakeDaily) List(_ context.Context, date *models.Date) ([]models.DailyTodo, error) {
	f.lastDate = date
	if f.err != nil {
		return nil, f.err
	}
	out := []models.DailyTodo{}
	for _, t := range f.todos {
		if date == nil || t.TodoDate.Equal(*date) {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeDaily) GetByID(_ context.Context, id int64) (*models.DailyTodo, error) {
	if f.err != nil {
		return nil, f.err
	}
	t, ok := f.todos[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return t, nil
}

func (f *fakeDaily) Create(_ context.Context, in models.NewDailyTodo) (*models.DailyTodo, error) {
	f.creates = append(f.creates, in)
	if f.err != nil {
		return nil, f.err
	}
	t := &models.DailyTodo{
		ID: f.nextID, Content: in.Content, Description: in.Description,
		Status: in.Status, Completed: in.Completed, Priority: in.Priority, TodoDate: in.TodoDate,
	}
	f.nextID++
	f.todos[t.ID] = t
	return t, nil
}

func (f *fakeDaily) Update(_ context.Context, id int64, patch models.DailyTodoPatch) (*models.DailyTodo, error) {
	f.updates = append(f.updates, patch)
	if f.err != nil {
		return nil, f.err
	}
	t, ok := f.todos[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	for _, a := range patch.Assignments() {
		switch a.Column {
		case "status":
			t.Status = a.Value.(models.DailyStatus)
		case "completed":
			t.Completed = a.Value.(bool)
		case "content":
			t.Content = a.Value.(string)
		}
	}
	return t, nil
}

func (f *fakeDaily) Delete(_ context.Context, id int64) error {
	if f.err != nil {
		return f.err
	}
	delete(f.todos, id)
	return nil
}

type fakeMidterm struct {
	todos   map[int64]*models.MidtermTodo
	err     error
	updated int
	gets    int
}

func (f *fakeMidterm) List(context.Context) ([]models.MidtermTodo, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := []models.MidtermTodo{}
	for _, t := range f.todos {
		out = append(out, *t)
	}
	return out, nil
}

func (f *fakeMidterm) GetByID(_ context.Context, id int64) (*models.MidtermTodo, error) {
	f.gets++
	t, ok := f.todos[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return t, nil
}

func (f *fakeMidterm) Create(_ context.Context, in models.NewMidtermTodo) (*models.MidtermTodo, error) {
	if f.err != nil {
		return nil, f.err
	}
	t := &models.MidtermTodo{
		ID: int64(len(f.todos) + 1), Title: in.Title, StartDate: in.StartDate, EndDate: in.EndDate,
		Progress: in.Progress, Status: in.Status, Priority: in.Priority,
	}
	f.todos[t.ID] = t
	return t, nil
}

func (f *fakeMidterm) Update(_ context.Context, id int64, _ models.MidtermTodoPatch) (*models.MidtermTodo, error) {
	f.updated++
	t, ok := f.todos[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return t, nil
}

func (f *fakeMidterm) Delete(_ context.Context, id int64) error {
	delete(f.todos, id)
	return nil
}

type fakeConn struct {
	cfg        config.Connection
	reconnects []config.Connection
	result     database.Result
	connected  bool
}

func (f *fakeConn) TestConnection(context.Context, config.Connection) database.Result {
	return f.result
}

func (f *fakeConn) Reconnect(_ context.Context, cfg config.Connection) database.Result {
	f.reconnects = append(f.reconnects, cfg)
	if f.result.Success {
		f.cfg = cfg
	}
	return f.result
}

func (f *fakeConn) CurrentConfig() config.Connection { return f.cfg }

func (f *fakeConn) Configure(p config.ConnectionPatch) error {
	f.cfg = f.cfg.Apply(p)
	return nil
}

func (f *fakeConn) IsConnected(context.Context) bool { return f.connected }

type fixture struct {
	svc     *service.Service
	daily   *fakeDaily
	midterm *fakeMidterm
	conn    *fakeConn
	events  *events.Broadcaster
	metrics *metrics.Metrics
}

func newFixture() *fixture {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	reg := prometheus.NewRegistry()
	f := &fixture{
		daily:   newFakeDaily(),
		midterm: &fakeMidterm{todos: map[int64]*models.MidtermTodo{}},
		conn:    &fakeConn{cfg: config.DefaultConnection()},
		events:  events.NewBroadcaster(logger),
		metrics: metrics.NewWithRegistry(reg, reg),
	}
	f.svc = service.New(f.conn, logger, f.metrics, f.events, f.daily, f.midterm)
	return f
}

func Test_Service_ListDailyTodos_Degrades_To_Empty(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.daily.err = repository.ErrNotConnected

	todos := f.svc.ListDailyTodos(context.Background(), nil)

	assert.NotNil(t, todos)
	assert.Empty(t, todos)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Operations.WithLabelValues("daily", "list", metrics.ResultError)))
}

func Test_Service_ListMidtermTodos_Degrades_To_Empty(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.midterm.err = errors.New("connection refused")

	todos := f.svc.ListMidtermTodos(context.Background())

	assert.NotNil(t, todos)
	assert.Empty(t, todos)
}

func Test_Service_AddDailyTodo_Defaults_And_Filters_By_Date(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	day := models.MustParseDate("2024-06-01")

	todo, err := f.svc.AddDailyTodo(ctx, models.NewDailyTodo{Content: "  Buy milk ", TodoDate: day})
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", todo.Content)
	assert.Equal(t, models.DailyStatusPending, todo.Status)
	assert.False(t, todo.Completed)

	_, err = f.svc.AddDailyTodo(ctx, models.NewDailyTodo{Content: "Other day", TodoDate: day.AddDays(1)})
	require.NoError(t, err)

	todos := f.svc.ListDailyTodos(ctx, &day)
	require.Len(t, todos, 1)
	assert.Equal(t, "Buy milk", todos[0].Content)
}

func Test_Service_AddDailyTodo_Rejects_Invalid_Input(t *testing.T) {
	t.Parallel()

	f := newFixture()

	_, err := f.svc.AddDailyTodo(context.Background(), models.NewDailyTodo{Content: " ", Priority: 7})

	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Errors, 3)
	assert.Empty(t, f.daily.creates)
}

func Test_Service_UpdateDailyTodo_Keeps_Completed_In_Step(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	todo, err := f.svc.AddDailyTodo(ctx, models.NewDailyTodo{Content: "Buy milk", TodoDate: models.Today()})
	require.NoError(t, err)

	done, err := f.svc.UpdateDailyTodo(ctx, todo.ID, models.DailyTodoPatch{Status: models.Some(models.DailyStatusCompleted)})
	require.NoError(t, err)
	assert.True(t, done.Completed)

	held, err := f.svc.UpdateDailyTodo(ctx, todo.ID, models.DailyTodoPatch{Status: models.Some(models.DailyStatusOnHold)})
	require.NoError(t, err)
	assert.False(t, held.Completed)
	assert.Equal(t, models.DailyStatusOnHold, held.Status)
}

func Test_Service_UpdateDailyTodo_Missing_Row_Is_Not_Found(t *testing.T) {
	t.Parallel()

	f := newFixture()

	_, err := f.svc.UpdateDailyTodo(context.Background(), 42, models.DailyTodoPatch{Content: models.Some("x")})

	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func Test_Service_UpdateDailyTodo_Rejects_Unknown_Status(t *testing.T) {
	t.Parallel()

	f := newFixture()

	_, err := f.svc.UpdateDailyTodo(context.Background(), 1, models.DailyTodoPatch{Status: models.Some(models.DailyStatus("archived"))})

	var verr *models.ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Empty(t, f.daily.updates)
}

func Test_Service_DeleteDailyTodo_Missing_Row_Succeeds(t *testing.T) {
	t.Parallel()

	f := newFixture()

	assert.NoError(t, f.svc.DeleteDailyTodo(context.Background(), 99))
}

func Test_Service_DeleteDailyTodo_Reports_Not_Connected(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.daily.err = repository.ErrNotConnected

	assert.ErrorIs(t, f.svc.DeleteDailyTodo(context.Background(), 1), repository.ErrNotConnected)
}

func Test_Service_AddMidtermTodo_Rejects_Inverted_Range(t *testing.T) {
	t.Parallel()

	f := newFixture()

	_, err := f.svc.AddMidtermTodo(context.Background(), models.NewMidtermTodo{
		Title:     "Write report",
		StartDate: models.MustParseDate("2024-06-10"),
		EndDate:   models.MustParseDate("2024-06-01"),
	})

	var verr *models.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func Test_Service_UpdateMidtermTodo_Checks_Range_Against_Stored_Row(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	todo, err := f.svc.AddMidtermTodo(ctx, models.NewMidtermTodo{
		Title:     "Write report",
		StartDate: models.MustParseDate("2024-06-01"),
		EndDate:   models.MustParseDate("2024-06-10"),
	})
	require.NoError(t, err)

	_, err = f.svc.UpdateMidtermTodo(ctx, todo.ID, models.MidtermTodoPatch{EndDate: models.Some(models.MustParseDate("2024-05-01"))})
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, 0, f.midterm.updated)

	_, err = f.svc.UpdateMidtermTodo(ctx, todo.ID, models.MidtermTodoPatch{EndDate: models.Some(models.MustParseDate("2024-06-20"))})
	require.NoError(t, err)
	assert.Equal(t, 1, f.midterm.updated)
	assert.Equal(t, 2, f.midterm.gets)
}

func Test_Service_UpdateMidtermTodo_Progress_Skips_Lookup(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.midterm.todos[1] = &models.MidtermTodo{ID: 1, Title: "Write report"}

	_, err := f.svc.UpdateMidtermTodo(context.Background(), 1, models.MidtermTodoPatch{Progress: models.Some(50)})

	require.NoError(t, err)
	assert.Equal(t, 0, f.midterm.gets)

	_, err = f.svc.UpdateMidtermTodo(context.Background(), 1, models.MidtermTodoPatch{Progress: models.Some(101)})
	var verr *models.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func Test_Service_ApplyConnectionConfig_Publishes_Once_On_Success(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.conn.result = database.Result{Success: true, Message: "connected"}
	reloads, cancel := f.events.Subscribe()
	defer cancel()

	cfg := config.DefaultConnection()
	cfg.Host = "db.internal"
	result := f.svc.ApplyConnectionConfig(context.Background(), cfg)

	assert.True(t, result.Success)
	assert.Equal(t, "db.internal", f.svc.CurrentConnectionConfig().Host)
	assert.Equal(t, events.DBReconnected, <-reloads)
	assert.Len(t, reloads, 0)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.DBConnected))
}

func Test_Service_ApplyConnectionConfig_Failure_Does_Not_Publish(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.conn.result = database.Result{Success: false, Message: "connection refused"}
	reloads, cancel := f.events.Subscribe()
	defer cancel()

	result := f.svc.ApplyConnectionConfig(context.Background(), config.DefaultConnection())

	assert.False(t, result.Success)
	assert.Equal(t, "connection refused", result.Message)
	assert.Len(t, reloads, 0)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Reconnects.WithLabelValues(metrics.ResultError)))
}

func Test_Service_CheckConnection_Updates_Gauge(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.conn.connected = true

	assert.True(t, f.svc.CheckConnection(context.Background()))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.DBConnected))
}

func Test_Service_UpdateConnectionSettings_Merges(t *testing.T) {
	t.Parallel()

	f := newFixture()
	port := 6543

	require.NoError(t, f.svc.UpdateConnectionSettings(config.ConnectionPatch{Port: &port}))

	assert.Equal(t, 6543, f.svc.CurrentConnectionConfig().Port)
	assert.Equal(t, config.DefaultConnection().Host, f.svc.CurrentConnectionConfig().Host)
}
