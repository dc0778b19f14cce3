package pipeline

import (
	"encoding/json"
	"strings"

	edomain "github.com/arkiform/go-plan-backend/internal/editor/domain"
	"github.com/arkiform/go-plan-backend/internal/editor/service"
	"github.com/arkiform/go-plan-backend/internal/editor/store"
)

// Fixed credit costs per tool.
const (
	CostGenerateLevels   = 25
	CostComplianceReport = 10
	CostAutoFix          = 15
)

// NewDefault builds a pipeline with the editor's built-in tools registered.
func NewDefault(credits CreditSource, runner Runner) *Pipeline {
	p := New(credits, runner)
	p.Register(generateLevelsTool())
	p.Register(complianceReportTool())
	p.Register(autoFixTool())
	return p
}

// generate_levels asks the AI for new floor plans from a prompt and imports
// them as one undoable step.
func generateLevelsTool() Tool {
	type params struct {
		Prompt string `json:"prompt"`
		Count  int    `json:"count"`
	}
	type result struct {
		Levels []edomain.Level `json:"levels"`
	}
	return Tool{
		Name: "generate_levels",
		Cost: CostGenerateLevels,
		BuildParams: func(_ *edomain.Project, in map[string]any) (json.RawMessage, error) {
			prompt, _ := in["prompt"].(string)
			if strings.TrimSpace(prompt) == "" {
				return nil, edomain.Validationf("describe the levels you want generated")
			}
			count := 1
			if n, ok := in["count"].(float64); ok && n >= 1 {
				count = int(n)
			}
			return json.Marshal(params{Prompt: strings.TrimSpace(prompt), Count: count})
		},
		Apply: func(sess *service.Session, raw json.RawMessage) ([]string, json.RawMessage, error) {
			var res result
			if err := json.Unmarshal(raw, &res); err != nil {
				return nil, nil, err
			}
			ids, err := sess.Store.ImportLevels(res.Levels)
			if err != nil {
				return nil, nil, err
			}
			return ids, nil, nil
		},
	}
}

// compliance_report checks the project against a building-code ruleset and
// returns a report object. It never mutates the document.
func complianceReportTool() Tool {
	type params struct {
		Ruleset string `json:"ruleset"`
	}
	return Tool{
		Name: "compliance_report",
		Cost: CostComplianceReport,
		BuildParams: func(snapshot *edomain.Project, in map[string]any) (json.RawMessage, error) {
			if len(snapshot.Levels) == 0 {
				return nil, edomain.Validationf("nothing to check: the project has no levels")
			}
			ruleset, _ := in["ruleset"].(string)
			if ruleset == "" {
				ruleset = "ibc"
			}
			return json.Marshal(params{Ruleset: ruleset})
		},
	}
}

// auto_fix asks the AI for fix proposals and lands them as unresolved
// comments, one undoable step for the whole batch.
func autoFixTool() Tool {
	type params struct {
		LevelID string `json:"level_id,omitempty"`
	}
	type result struct {
		Fixes []store.FixProposal `json:"fixes"`
	}
	return Tool{
		Name: "auto_fix",
		Cost: CostAutoFix,
		BuildParams: func(snapshot *edomain.Project, in map[string]any) (json.RawMessage, error) {
			levelID, _ := in["level_id"].(string)
			if levelID != "" && snapshot.FindLevel(levelID) == nil {
				return nil, edomain.Validationf("level %q does not exist", levelID)
			}
			return json.Marshal(params{LevelID: levelID})
		},
		Apply: func(sess *service.Session, raw json.RawMessage) ([]string, json.RawMessage, error) {
			var res result
			if err := json.Unmarshal(raw, &res); err != nil {
				return nil, nil, err
			}
			if len(res.Fixes) == 0 {
				return nil, json.RawMessage(`{"fixes":[]}`), nil
			}
			ids, err := sess.Store.ApplyFixComments("aura", res.Fixes)
			if err != nil {
				return nil, nil, err
			}
			return ids, nil, nil
		},
	}
}
