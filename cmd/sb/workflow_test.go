package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestWorkflowCmd_Help(t *testing.T) {
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"workflow", "--help"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("workflow --help failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "Workflow commands") {
		t.Errorf("expected help to mention 'Workflow commands', got: %s", out)
	}
	for _, sub := range []string{"define", "run", "list", "delete", "schedule", "serve"} {
		if !strings.Contains(out, sub) {
			t.Errorf("expected help to list %q subcommand, got: %s", sub, out)
		}
	}
}

func TestWorkflowDefineCmd_RejectsMalformedStep(t *testing.T) {
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"workflow", "define", "deploy", "--step", "no-colon-here"})

	err := cmd.Execute()
	if err == nil {
		t.Fatal("expected error for step without session:command form")
	}
	if !strings.Contains(err.Error(), "invalid step") {
		t.Errorf("error = %v, want invalid step", err)
	}
}

func TestWorkflowDefineCmd_RejectsEmptyCommand(t *testing.T) {
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"workflow", "define", "deploy", "--step", "worker:"})

	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error for step with empty command")
	}
}

func TestWorkflowScheduleCmd_RequiresCronOrClear(t *testing.T) {
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"workflow", "schedule", "deploy"})

	err := cmd.Execute()
	if err == nil {
		t.Fatal("expected error when neither --cron nor --clear is given")
	}
	if !strings.Contains(err.Error(), "--cron or --clear") {
		t.Errorf("error = %v, want mention of --cron or --clear", err)
	}
}
