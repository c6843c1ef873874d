package workflow

import (
	"context"
	"fmt"
	"log"

	"github.com/davrell/switchboard/internal/models"
	"github.com/robfig/cron/v3"
)

// cronParser uses standard 5-field cron expressions (minute, hour, dom, month, dow).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Schedule attaches a 5-field cron expression to a workflow, or clears it
// when expr is empty. The scheduler picks it up on its next start.
func (e *Engine) Schedule(name, expr string) error {
	if expr != "" {
		if _, err := cronParser.Parse(expr); err != nil {
			return fmt.Errorf("workflow: schedule %q: invalid cron expression %q: %w", name, expr, err)
		}
	}
	result := e.db.Model(&models.Workflow{}).Where("name = ?", name).
		Update("schedule", expr)
	if result.Error != nil {
		return fmt.Errorf("workflow: schedule %q: %w", name, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("workflow: not found: %q", name)
	}
	return nil
}

// RunScheduler fires Run for every workflow with a schedule, on its cron
// cadence, until ctx is cancelled. Run outcomes are logged; a failing run
// never stops the scheduler.
func (e *Engine) RunScheduler(ctx context.Context) error {
	wfs, err := e.List()
	if err != nil {
		return err
	}

	c := cron.New(cron.WithParser(cronParser))
	scheduled := 0
	for _, wf := range wfs {
		if wf.Schedule == "" {
			continue
		}
		name := wf.Name
		if _, err := c.AddFunc(wf.Schedule, func() {
			run, err := e.Run(name)
			if err != nil {
				log.Printf("workflow: scheduled run %q: %v", name, err)
				return
			}
			failed := 0
			for _, s := range run.Steps {
				if s.Err != nil {
					failed++
				}
			}
			log.Printf("workflow: scheduled run %q: %d steps, %d failed", name, len(run.Steps), failed)
		}); err != nil {
			return fmt.Errorf("workflow: schedule %q: %w", name, err)
		}
		scheduled++
	}
	if scheduled == 0 {
		return fmt.Errorf("workflow: no scheduled workflows")
	}

	c.Start()
	<-ctx.Done()
	stopped := c.Stop()
	<-stopped.Done()
	return nil
}
