package mux

import "testing"

func TestFake_SessionLifecycle(t *testing.T) {
	f := NewFake()
	if f.SessionExists("demo") {
		t.Fatal("session should not exist before creation")
	}
	if err := f.CreateSession("demo", "/tmp"); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if !f.SessionExists("demo") {
		t.Fatal("session should exist after creation")
	}
	if err := f.CreateSession("demo", ""); err == nil {
		t.Fatal("expected error for duplicate session")
	}
	if err := f.KillSession("demo"); err != nil {
		t.Fatalf("KillSession: %v", err)
	}
	if f.SessionExists("demo") {
		t.Fatal("session should not exist after kill")
	}
}

func TestFake_WindowLifecycle(t *testing.T) {
	f := NewFake()
	f.AddSession("demo")
	if err := f.NewWindow("demo", "build", "make"); err != nil {
		t.Fatalf("NewWindow: %v", err)
	}
	windows, err := f.ListWindows("demo")
	if err != nil {
		t.Fatalf("ListWindows: %v", err)
	}
	if len(windows) != 1 || windows[0] != "build" {
		t.Errorf("windows = %v, want [build]", windows)
	}
	if err := f.KillWindow("demo", "build"); err != nil {
		t.Fatalf("KillWindow: %v", err)
	}
	if err := f.KillWindow("demo", "build"); err == nil {
		t.Fatal("expected error killing a missing window")
	}
}

func TestFake_CaptureAndInjectedFailure(t *testing.T) {
	f := NewFake()
	f.AddSession("demo")
	f.SetOutput("demo", "hello\n")
	out, err := f.CapturePane("demo", 50)
	if err != nil {
		t.Fatalf("CapturePane: %v", err)
	}
	if out != "hello\n" {
		t.Errorf("output = %q", out)
	}

	f.FailCapture["demo"] = true
	if _, err := f.CapturePane("demo", 50); err == nil {
		t.Fatal("expected injected capture failure")
	}
}

func TestFake_SetEnvLastWriteWins(t *testing.T) {
	f := NewFake()
	f.AddSession("demo")
	if err := f.SetEnv("demo", "SB_DATA", "one"); err != nil {
		t.Fatalf("SetEnv: %v", err)
	}
	if err := f.SetEnv("demo", "SB_DATA", "two"); err != nil {
		t.Fatalf("SetEnv: %v", err)
	}
	if got := f.Env("demo", "SB_DATA"); got != "two" {
		t.Errorf("env = %q, want two", got)
	}
}

func TestFake_ListSessionsSorted(t *testing.T) {
	f := NewFake()
	f.AddSession("zeta")
	f.AddSession("alpha")
	infos, err := f.ListSessions()
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(infos) != 2 || infos[0].Name != "alpha" || infos[1].Name != "zeta" {
		t.Errorf("infos = %v", infos)
	}
}
