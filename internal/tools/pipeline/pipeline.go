// Package pipeline gates metered AI tool invocations: credit pre-check,
// payload construction, a single network call, and result merge through the
// document store's mutation API so every AI change is undoable.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	edomain "github.com/arkiform/go-plan-backend/internal/editor/domain"
	"github.com/arkiform/go-plan-backend/internal/editor/service"
	"github.com/arkiform/go-plan-backend/internal/tools/domain"
	"github.com/arkiform/go-plan-backend/internal/tools/inference"
)

// CreditSource reads the externally owned credit ledger.
type CreditSource interface {
	GetBalance(ctx context.Context, userUID string) (int, error)
}

// Runner performs the single network call of an invocation.
type Runner interface {
	Run(ctx context.Context, req inference.Request) (*inference.Response, error)
}

// Tool is one metered capability.
type Tool struct {
	Name string
	Cost int

	// BuildParams validates user input against the current snapshot. A
	// validation error aborts the invocation before any network call and
	// consumes no credits.
	BuildParams func(snapshot *edomain.Project, params map[string]any) (json.RawMessage, error)

	// Apply merges the tool result into the session via the mutation API.
	// A nil Apply means the tool only returns a report.
	Apply func(sess *service.Session, result json.RawMessage) (createdIDs []string, report json.RawMessage, err error)
}

type Pipeline struct {
	credits CreditSource
	runner  Runner
	tools   map[string]Tool

	mu       sync.Mutex
	inFlight map[string]bool   // projectID+"/"+tool → requesting
	states   map[string]string // projectID+"/"+tool → last observed state
}

func New(credits CreditSource, runner Runner) *Pipeline {
	return &Pipeline{
		credits:  credits,
		runner:   runner,
		tools:    make(map[string]Tool),
		inFlight: make(map[string]bool),
		states:   make(map[string]string),
	}
}

func (p *Pipeline) Register(t Tool) {
	p.tools[t.Name] = t
}

// State reports the last observed state for a tool on a project. The UI
// polls this for per-tool loading/error indicators.
func (p *Pipeline) State(projectID, tool string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.inFlight[gateKey(projectID, tool)] {
		return domain.StateRequesting
	}
	if st, ok := p.states[gateKey(projectID, tool)]; ok {
		return st
	}
	return domain.StateIdle
}

// Invoke runs one tool invocation end to end. Exactly one network call is
// made, and only after the credit and payload checks pass. A second
// invocation of the same tool on the same project while one is in flight is
// rejected.
func (p *Pipeline) Invoke(ctx context.Context, sess *service.Session, account domain.Account, toolName string, params map[string]any) (*domain.Result, error) {
	tool, ok := p.tools[toolName]
	if !ok {
		return nil, domain.ErrUnknownTool
	}

	p.setState(sess.ProjectID, toolName, domain.StateValidating)

	if account.UID == "" {
		return p.fail(sess, toolName, domain.StateFailure, domain.ErrNotAuthenticated)
	}
	if !sess.Store.Loaded() {
		return p.fail(sess, toolName, domain.StateFailure, edomain.ErrNoProject)
	}

	if !account.Unlimited {
		balance, err := p.credits.GetBalance(ctx, account.UID)
		if err != nil {
			sess.Notes.Error("Could not check your credit balance, please retry")
			return p.fail(sess, toolName, domain.StateFailure, fmt.Errorf("credit check: %w", err))
		}
		if balance < tool.Cost {
			sess.Notes.Error(fmt.Sprintf("%s needs %d credits but you have %d — buy credits to continue", toolName, tool.Cost, balance))
			p.setState(sess.ProjectID, toolName, domain.StateInsufficientCredits)
			return nil, domain.ErrInsufficientCredits
		}
	}

	snapshot := sess.Store.Snapshot()
	paramsJSON, err := tool.BuildParams(snapshot, params)
	if err != nil {
		sess.Notes.Error(err.Error())
		p.setState(sess.ProjectID, toolName, domain.StateInvalidPayload)
		return nil, err
	}

	if !p.acquire(sess.ProjectID, toolName) {
		return nil, domain.ErrToolBusy
	}
	defer p.release(sess.ProjectID, toolName)

	snapshotJSON, err := json.Marshal(snapshot)
	if err != nil {
		return p.fail(sess, toolName, domain.StateFailure, err)
	}

	resp, err := p.runner.Run(ctx, inference.Request{
		Tool:     toolName,
		Snapshot: snapshotJSON,
		Params:   paramsJSON,
	})
	if err != nil {
		sess.Notes.Error(fmt.Sprintf("%s failed: %v", toolName, err))
		return p.fail(sess, toolName, domain.StateFailure, err)
	}

	result := &domain.Result{Tool: toolName, State: domain.StateSuccess}
	if tool.Apply != nil {
		createdIDs, report, err := tool.Apply(sess, resp.Result)
		if err != nil {
			sess.Notes.Error(fmt.Sprintf("%s returned an unusable result: %v", toolName, err))
			return p.fail(sess, toolName, domain.StateFailure, err)
		}
		result.CreatedIDs = createdIDs
		result.Report = report
	} else {
		result.Report = resp.Result
	}

	sess.Notes.Success(toolName + " completed")
	p.setState(sess.ProjectID, toolName, domain.StateSuccess)

	// Credits are debited server-side; reconcile with the source of truth
	// rather than decrementing locally.
	if !account.Unlimited {
		if balance, err := p.credits.GetBalance(ctx, account.UID); err != nil {
			log.Printf("refresh balance for %s: %v", account.UID, err)
		} else {
			result.Balance = &balance
		}
	}

	return result, nil
}

func (p *Pipeline) fail(sess *service.Session, tool, state string, err error) (*domain.Result, error) {
	p.setState(sess.ProjectID, tool, state)
	return nil, err
}

func (p *Pipeline) setState(projectID, tool, state string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.states[gateKey(projectID, tool)] = state
}

func (p *Pipeline) acquire(projectID, tool string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	key := gateKey(projectID, tool)
	if p.inFlight[key] {
		return false
	}
	p.inFlight[key] = true
	return true
}

func (p *Pipeline) release(projectID, tool string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.inFlight, gateKey(projectID, tool))
}

func gateKey(projectID, tool string) string {
	return projectID + "/" + tool
}
