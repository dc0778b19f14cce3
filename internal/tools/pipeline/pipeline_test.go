package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	edomain "github.com/arkiform/go-plan-backend/internal/editor/domain"
	"github.com/arkiform/go-plan-backend/internal/editor/service"
	"github.com/arkiform/go-plan-backend/internal/editor/store"
	"github.com/arkiform/go-plan-backend/internal/notify"
	"github.com/arkiform/go-plan-backend/internal/tools/domain"
	"github.com/arkiform/go-plan-backend/internal/tools/inference"
)

type fakeCredits struct {
	mu      sync.Mutex
	balance int
	err     error
	calls   int
}

func (f *fakeCredits) GetBalance(context.Context, string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.balance, f.err
}

func (f *fakeCredits) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeRunner struct {
	mu     sync.Mutex
	calls  int
	result json.RawMessage
	err    error
	block  chan struct{} // when set, Run waits until closed
}

func (f *fakeRunner) Run(ctx context.Context, _ inference.Request) (*inference.Response, error) {
	f.mu.Lock()
	f.calls++
	block := f.block
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return &inference.Response{OK: true, Result: f.result}, nil
}

func (f *fakeRunner) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func testSession(t *testing.T) *service.Session {
	t.Helper()
	st := store.New()
	st.Load(&edomain.Project{
		PublicID: "plan-1",
		Levels: []edomain.Level{{
			ID:            "lvl_1",
			Name:          "Ground Floor",
			Layers:        []edomain.Layer{{ID: "lay_1", Name: "Default", Visible: true}},
			ActiveLayerID: "lay_1",
		}},
	})
	return &service.Session{
		ProjectID: "plan-1",
		OwnerUID:  "uid-1",
		Store:     st,
		Notes:     notify.NewStream(10),
	}
}

// wallTool imports one wall through the mutation API so the result is undoable.
func wallTool(cost int) Tool {
	return Tool{
		Name: "add_wall",
		Cost: cost,
		BuildParams: func(_ *edomain.Project, params map[string]any) (json.RawMessage, error) {
			if params["prompt"] == nil {
				return nil, edomain.Validationf("prompt required")
			}
			return json.Marshal(params)
		},
		Apply: func(sess *service.Session, _ json.RawMessage) ([]string, json.RawMessage, error) {
			id, err := sess.Store.AddWall("lvl_1", edomain.Wall{LayerID: "lay_1", Thickness: 0.2})
			if err != nil {
				return nil, nil, err
			}
			return []string{id}, nil, nil
		},
	}
}

func account() domain.Account { return domain.Account{UID: "uid-1"} }

func params() map[string]any { return map[string]any{"prompt": "add a wall"} }

func TestPipeline_CreditGate(t *testing.T) {
	ctx := context.Background()

	t.Run("insufficient credits makes no network call", func(t *testing.T) {
		credits := &fakeCredits{balance: 5}
		runner := &fakeRunner{}
		p := New(credits, runner)
		p.Register(wallTool(25))
		sess := testSession(t)

		_, err := p.Invoke(ctx, sess, account(), "add_wall", params())
		assert.ErrorIs(t, err, domain.ErrInsufficientCredits)
		assert.Zero(t, runner.callCount())
		assert.Equal(t, domain.StateInsufficientCredits, p.State("plan-1", "add_wall"))

		// The user is told how to proceed.
		notes := sess.Notes.Drain()
		require.Len(t, notes, 1)
		assert.Contains(t, notes[0].Message, "buy credits")
	})

	t.Run("unlimited plan skips the balance check", func(t *testing.T) {
		credits := &fakeCredits{balance: 0}
		runner := &fakeRunner{result: json.RawMessage(`{}`)}
		p := New(credits, runner)
		p.Register(wallTool(25))

		acct := domain.Account{UID: "uid-1", Unlimited: true}
		_, err := p.Invoke(ctx, testSession(t), acct, "add_wall", params())
		require.NoError(t, err)
		assert.Zero(t, credits.callCount())
	})

	t.Run("balance check failure fails the invocation", func(t *testing.T) {
		credits := &fakeCredits{err: errors.New("ledger down")}
		runner := &fakeRunner{}
		p := New(credits, runner)
		p.Register(wallTool(25))

		_, err := p.Invoke(ctx, testSession(t), account(), "add_wall", params())
		require.Error(t, err)
		assert.Zero(t, runner.callCount())
		assert.Equal(t, domain.StateFailure, p.State("plan-1", "add_wall"))
	})
}

func TestPipeline_InvalidPayload(t *testing.T) {
	credits := &fakeCredits{balance: 100}
	runner := &fakeRunner{}
	p := New(credits, runner)
	p.Register(wallTool(25))
	sess := testSession(t)

	_, err := p.Invoke(context.Background(), sess, account(), "add_wall", map[string]any{})
	require.Error(t, err)
	assert.True(t, edomain.IsValidation(err))
	assert.Zero(t, runner.callCount(), "invalid payload aborts before the network call")
	assert.Equal(t, domain.StateInvalidPayload, p.State("plan-1", "add_wall"))
}

func TestPipeline_UnknownTool(t *testing.T) {
	p := New(&fakeCredits{}, &fakeRunner{})
	_, err := p.Invoke(context.Background(), testSession(t), account(), "nope", nil)
	assert.ErrorIs(t, err, domain.ErrUnknownTool)
}

func TestPipeline_Success(t *testing.T) {
	credits := &fakeCredits{balance: 100}
	runner := &fakeRunner{result: json.RawMessage(`{}`)}
	p := New(credits, runner)
	p.Register(wallTool(25))
	sess := testSession(t)

	result, err := p.Invoke(context.Background(), sess, account(), "add_wall", params())
	require.NoError(t, err)
	assert.Equal(t, 1, runner.callCount(), "exactly one network call per invocation")
	assert.Equal(t, domain.StateSuccess, result.State)
	require.Len(t, result.CreatedIDs, 1)

	// The merge went through the mutation API: undoable like any local edit.
	assert.Len(t, sess.Store.Snapshot().Levels[0].Walls, 1)
	require.True(t, sess.Store.Undo())
	assert.Empty(t, sess.Store.Snapshot().Levels[0].Walls)

	// Balance is re-read from the ledger, never decremented locally.
	require.NotNil(t, result.Balance)
	assert.Equal(t, 100, *result.Balance)
	assert.Equal(t, 2, credits.callCount())
}

func TestPipeline_BusyGate(t *testing.T) {
	credits := &fakeCredits{balance: 100}
	block := make(chan struct{})
	runner := &fakeRunner{result: json.RawMessage(`{}`), block: block}
	p := New(credits, runner)
	p.Register(wallTool(25))
	sess := testSession(t)

	done := make(chan error, 1)
	go func() {
		_, err := p.Invoke(context.Background(), sess, account(), "add_wall", params())
		done <- err
	}()

	// Wait until the first invocation holds the gate.
	require.Eventually(t, func() bool {
		return p.State("plan-1", "add_wall") == domain.StateRequesting
	}, time.Second, 5*time.Millisecond)

	_, err := p.Invoke(context.Background(), sess, account(), "add_wall", params())
	assert.ErrorIs(t, err, domain.ErrToolBusy)

	close(block)
	require.NoError(t, <-done)
	assert.Equal(t, 1, runner.callCount())
}

func TestPipeline_RunnerFailure(t *testing.T) {
	credits := &fakeCredits{balance: 100}
	runner := &fakeRunner{err: errors.New("upstream 500")}
	p := New(credits, runner)
	p.Register(wallTool(25))
	sess := testSession(t)

	_, err := p.Invoke(context.Background(), sess, account(), "add_wall", params())
	require.Error(t, err)
	assert.Equal(t, domain.StateFailure, p.State("plan-1", "add_wall"))
	assert.Empty(t, sess.Store.Snapshot().Levels[0].Walls, "failed call merges nothing")
}
