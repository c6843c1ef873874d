// Package workflow stores named, ordered lists of cross-session command
// steps and replays them through the dispatcher.
package workflow

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/davrell/switchboard/internal/dispatch"
	"github.com/davrell/switchboard/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Step is one dispatch in a workflow: a command sent to a target session.
type Step struct {
	TargetSession string `json:"target_session"`
	Command       string `json:"command"`
}

// StepStatus tracks one step through a run.
type StepStatus string

const (
	StepPending     StepStatus = "pending"
	StepDispatching StepStatus = "dispatching"
	StepDone        StepStatus = "done"
)

// StepResult is the introspectable outcome of one step in a run. Err is the
// dispatch error, if any; the run always continues to the next step.
type StepResult struct {
	Index   int
	Step    Step
	Status  StepStatus
	Message *models.Message
	Err     error
}

// RunResult holds one message per step, in step order, all from the same
// workflow sender.
type RunResult struct {
	Workflow string
	Sender   string
	Steps    []StepResult
}

// Engine defines and replays workflows.
type Engine struct {
	db         *gorm.DB
	dispatcher *dispatch.Dispatcher
	settle     time.Duration
}

// New creates an Engine. settle is the fixed pause between steps.
func New(gdb *gorm.DB, d *dispatch.Dispatcher, settle time.Duration) *Engine {
	return &Engine{db: gdb, dispatcher: d, settle: settle}
}

// Define stores or fully replaces a workflow's step list. A cron schedule
// attached via Schedule survives redefinition.
func (e *Engine) Define(name string, steps []Step) (*models.Workflow, error) {
	if name == "" {
		return nil, fmt.Errorf("workflow: name is required")
	}
	if len(steps) == 0 {
		return nil, fmt.Errorf("workflow: at least one step is required")
	}
	for i, s := range steps {
		if s.TargetSession == "" {
			return nil, fmt.Errorf("workflow: steps[%d].target_session is required", i)
		}
		if s.Command == "" {
			return nil, fmt.Errorf("workflow: steps[%d].command is required", i)
		}
	}
	data, err := json.Marshal(steps)
	if err != nil {
		return nil, fmt.Errorf("workflow: marshal steps for %q: %w", name, err)
	}
	wf := models.Workflow{Name: name, Steps: string(data)}
	result := e.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"steps", "updated_at"}),
	}).Create(&wf)
	if result.Error != nil {
		return nil, fmt.Errorf("workflow: define %q: %w", name, result.Error)
	}
	return &wf, nil
}

// Get loads a workflow and its decoded steps.
func (e *Engine) Get(name string) (*models.Workflow, []Step, error) {
	var wf models.Workflow
	if err := e.db.First(&wf, "name = ?", name).Error; err != nil {
		return nil, nil, fmt.Errorf("workflow: get %q: %w", name, err)
	}
	var steps []Step
	if err := json.Unmarshal([]byte(wf.Steps), &steps); err != nil {
		return nil, nil, fmt.Errorf("workflow: decode steps for %q: %w", name, err)
	}
	return &wf, steps, nil
}

// List returns every stored workflow, ordered by name.
func (e *Engine) List() ([]models.Workflow, error) {
	var wfs []models.Workflow
	if err := e.db.Order("name ASC").Find(&wfs).Error; err != nil {
		return nil, fmt.Errorf("workflow: list: %w", err)
	}
	return wfs, nil
}

// Delete removes a workflow by name.
func (e *Engine) Delete(name string) error {
	result := e.db.Delete(&models.Workflow{}, "name = ?", name)
	if result.Error != nil {
		return fmt.Errorf("workflow: delete %q: %w", name, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("workflow: not found: %q", name)
	}
	return nil
}

// Run replays a workflow: every step is dispatched strictly in order as a
// command from "workflow-<name>", with the settle delay between steps. A
// failing step is recorded and never halts the run; there is no rollback and
// no branching.
func (e *Engine) Run(name string) (*RunResult, error) {
	_, steps, err := e.Get(name)
	if err != nil {
		return nil, err
	}

	run := &RunResult{
		Workflow: name,
		Sender:   "workflow-" + name,
		Steps:    make([]StepResult, len(steps)),
	}
	for i, step := range steps {
		run.Steps[i] = StepResult{Index: i, Step: step, Status: StepPending}
	}

	for i := range run.Steps {
		run.Steps[i].Status = StepDispatching
		msg, err := e.dispatcher.Send(run.Sender, run.Steps[i].Step.TargetSession,
			run.Steps[i].Step.Command, models.TypeCommand)
		run.Steps[i].Message = msg
		run.Steps[i].Err = err
		run.Steps[i].Status = StepDone
		if i < len(run.Steps)-1 {
			time.Sleep(e.settle)
		}
	}
	return run, nil
}
