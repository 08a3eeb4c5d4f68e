package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/taskmaster/core/api/transport"
	"github.com/taskmaster/core/domain"
	"github.com/taskmaster/core/storage"
	"github.com/taskmaster/core/storage/memory"
	sessionStore "github.com/taskmaster/core/store/session"
	taskStore "github.com/taskmaster/core/store/task"
)

type syncWriter struct {
	kv storage.KV
}

func (w syncWriter) Enqueue(key string, value []byte) {
	_ = w.kv.Set(context.Background(), key, value)
}

func (w syncWriter) Invalidate(string) {}

type fixture struct {
	sessions *sessionStore.Store
	tasks    *taskStore.Store
	session  *SessionHandler
	task     *TaskHandler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	kv := memory.New()
	sessions := sessionStore.New(kv, nil)
	tasks := taskStore.New(kv, syncWriter{kv: kv}, nil)
	sessions.OnChange(func(username string) {
		require.NoError(t, tasks.Load(context.Background(), username))
	})
	return &fixture{
		sessions: sessions,
		tasks:    tasks,
		session:  NewSessionHandler(sessions, nil, nil),
		task:     NewTaskHandler(tasks, nil, nil),
	}
}

func doRequest(method string, body string) *fasthttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(method)
	if body != "" {
		ctx.Request.SetBodyString(body)
	}
	return ctx
}

func decodeEnvelope(t *testing.T, ctx *fasthttp.RequestCtx) transport.Envelope {
	t.Helper()
	var env transport.Envelope
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &env))
	return env
}

func decodeData(t *testing.T, ctx *fasthttp.RequestCtx, out interface{}) {
	t.Helper()
	env := decodeEnvelope(t, ctx)
	raw, err := json.Marshal(env.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, out))
}

func (f *fixture) login(t *testing.T, username string) {
	t.Helper()
	ctx := doRequest(http.MethodPost, `{"username":"`+username+`"}`)
	f.session.Login(ctx)
	require.Equal(t, http.StatusCreated, ctx.Response.StatusCode())
}

func TestSessionHandler_Login_RefusesBlankUsername(t *testing.T) {
	f := newFixture(t)

	ctx := doRequest(http.MethodPost, `{"username":"   "}`)
	f.session.Login(ctx)

	assert.Equal(t, http.StatusBadRequest, ctx.Response.StatusCode())
	env := decodeEnvelope(t, ctx)
	assert.Equal(t, string(domain.ErrCodeInvalid), env.Code)
}

func TestTaskHandler_Create_IgnoresCallerOwner(t *testing.T) {
	f := newFixture(t)
	f.login(t, "alice")

	// owner_id in the payload has no field to land in
	ctx := doRequest(http.MethodPost, `{"title":"Buy milk","owner_id":"mallory","due_date":"2026-09-15"}`)
	f.task.Create(ctx)
	require.Equal(t, http.StatusCreated, ctx.Response.StatusCode())

	var created domain.Task
	decodeData(t, ctx, &created)
	assert.Equal(t, "alice", created.OwnerID)
	assert.Equal(t, "Buy milk", created.Title)
	assert.Equal(t, domain.PriorityMedium, created.Priority)
	require.NotNil(t, created.DueDate)
	assert.Equal(t, "2026-09-15", created.DueDate.String())
}

func TestTaskHandler_Create_RefusesEmptyTitle(t *testing.T) {
	f := newFixture(t)
	f.login(t, "alice")
	before := f.tasks.Counts()

	ctx := doRequest(http.MethodPost, `{"title":"  "}`)
	f.task.Create(ctx)

	assert.Equal(t, http.StatusBadRequest, ctx.Response.StatusCode())
	assert.Equal(t, before, f.tasks.Counts())
}

func TestTaskHandler_List_ReturnsDerivedView(t *testing.T) {
	f := newFixture(t)
	f.login(t, "alice")

	ctx := doRequest(http.MethodGet, "")
	f.task.List(ctx)
	require.Equal(t, http.StatusOK, ctx.Response.StatusCode())

	var view transport.TaskListResponse
	decodeData(t, ctx, &view)
	assert.Equal(t, domain.FilterAll, view.Filter)
	assert.Len(t, view.Tasks, 2)
	assert.Equal(t, view.Counts.Total, view.Counts.Completed+view.Counts.Pending)
}

func TestTaskHandler_SetFilter_RestrictsList(t *testing.T) {
	f := newFixture(t)
	f.login(t, "alice")

	ctx := doRequest(http.MethodPut, `{"filter":"high"}`)
	f.task.SetFilter(ctx)
	require.Equal(t, http.StatusOK, ctx.Response.StatusCode())

	var view transport.TaskListResponse
	decodeData(t, ctx, &view)
	assert.Equal(t, domain.FilterHigh, view.Filter)
	for _, task := range view.Tasks {
		assert.Equal(t, domain.PriorityHigh, task.Priority)
	}
	// counts stay over the full set
	assert.Equal(t, 2, view.Counts.Total)
}

func TestTaskHandler_SetFilter_RejectsUnknownValue(t *testing.T) {
	f := newFixture(t)
	f.login(t, "alice")

	ctx := doRequest(http.MethodPut, `{"filter":"urgent"}`)
	f.task.SetFilter(ctx)
	assert.Equal(t, http.StatusBadRequest, ctx.Response.StatusCode())
}

func TestTaskHandler_Toggle_NoopOnUnknownID(t *testing.T) {
	f := newFixture(t)
	f.login(t, "alice")

	ctx := doRequest(http.MethodPost, "")
	ctx.SetUserValue("id", "no-such-id")
	f.task.Toggle(ctx)
	assert.Equal(t, http.StatusNoContent, ctx.Response.StatusCode())
}

func TestTaskHandler_Update_CannotReassignOwner(t *testing.T) {
	f := newFixture(t)
	f.login(t, "alice")
	id := f.tasks.Tasks()[0].ID

	ctx := doRequest(http.MethodPut, `{"title":"Renamed","owner_id":"mallory"}`)
	ctx.SetUserValue("id", id)
	f.task.Update(ctx)
	require.Equal(t, http.StatusOK, ctx.Response.StatusCode())

	var updated domain.Task
	decodeData(t, ctx, &updated)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, "alice", updated.OwnerID)
}

func TestSessionSwitch_ReloadsScopedTasks(t *testing.T) {
	f := newFixture(t)

	f.login(t, "alice")
	aliceID := f.tasks.Tasks()[0].ID

	f.login(t, "bob")
	for _, task := range f.tasks.Tasks() {
		assert.Equal(t, "bob", task.OwnerID)
		assert.NotEqual(t, aliceID, task.ID)
	}

	// deleting alice's task while bob is active is a no-op
	ctx := doRequest(http.MethodDelete, "")
	ctx.SetUserValue("id", aliceID)
	f.task.Delete(ctx)
	assert.Equal(t, http.StatusNoContent, ctx.Response.StatusCode())

	f.login(t, "alice")
	assert.Equal(t, aliceID, f.tasks.Tasks()[0].ID)
}
