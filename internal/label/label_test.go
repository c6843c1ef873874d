package label

import (
	"reflect"
	"testing"

	"github.com/davrell/switchboard/internal/directory"
	"github.com/davrell/switchboard/internal/models"
	"github.com/davrell/switchboard/internal/mux"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestIndex(t *testing.T) (*Index, *mux.Fake) {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := gdb.AutoMigrate(&models.SessionLabels{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	f := mux.NewFake()
	return New(gdb, directory.New(f, nil)), f
}

func TestSet_ReplacesNotMerges(t *testing.T) {
	i, _ := newTestIndex(t)
	if err := i.Set("demo", []string{"x", "y"}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := i.Set("demo", []string{"a", "b", "c"}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := i.Get("demo")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("labels = %v, want exactly %v (no union with the old set)", got, want)
	}
}

func TestSet_DedupesAndDropsEmpty(t *testing.T) {
	i, _ := newTestIndex(t)
	if err := i.Set("demo", []string{"b", "a", "b", ""}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := i.Get("demo")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("labels = %v", got)
	}
}

func TestSet_EmptySetAllowed(t *testing.T) {
	i, _ := newTestIndex(t)
	i.Set("demo", []string{"a"})
	if err := i.Set("demo", nil); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := i.Get("demo")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("labels = %v, want empty", got)
	}
}

func TestGet_UnknownSessionIsEmpty(t *testing.T) {
	i, _ := newTestIndex(t)
	got, err := i.Get("ghost")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Errorf("labels = %v, want nil", got)
	}
}

func TestSearch_OnlyLiveSessions(t *testing.T) {
	i, f := newTestIndex(t)
	f.AddSession("alive")
	i.Set("alive", []string{"build"})
	i.Set("dead", []string{"build"})
	i.Set("other", []string{"deploy"})

	got, err := i.Search("build")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"alive"}) {
		t.Errorf("search = %v, want only the live session", got)
	}
}

func TestSearch_DeadRecordSurvives(t *testing.T) {
	i, f := newTestIndex(t)
	i.Set("demo", []string{"build"})

	got, err := i.Search("build")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("search = %v, want empty while session is dead", got)
	}

	// Once the session is live again the untouched record resurfaces.
	f.AddSession("demo")
	got, err = i.Search("build")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"demo"}) {
		t.Errorf("search = %v", got)
	}
}
