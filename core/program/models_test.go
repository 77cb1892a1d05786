package program

import (
	"testing"
	"time"
)

func TestNewProgress(t *testing.T) {
	prog := NewProgress("usr1", 46)
	if prog.Current != StartPosition {
		t.Errorf("Current = %v; want %v", prog.Current, StartPosition)
	}
	if prog.CohortName != "XLVI" {
		t.Errorf("CohortName = %q; want %q", prog.CohortName, "XLVI")
	}
	if prog.TotalCompleted() != 0 {
		t.Errorf("TotalCompleted() = %d; want 0", prog.TotalCompleted())
	}
	if prog.Completed() {
		t.Error("Completed() = true on a fresh record")
	}
}

func TestProgressAdvance(t *testing.T) {
	now := time.Now()
	prog := NewProgress("usr1", 1)

	next := prog.Advance(now)
	if want := (Position{1, 2}); next != want || prog.Current != want {
		t.Errorf("Advance() = %v, Current = %v; want %v", next, prog.Current, want)
	}
	if !prog.HasCompleted(1) {
		t.Error("devotional 1 not marked complete")
	}
	if prog.WeekCompleted[0] != 1 {
		t.Errorf("WeekCompleted[0] = %d; want 1", prog.WeekCompleted[0])
	}

	// finish week 1
	for prog.Current.Week == 1 {
		prog.Advance(now)
	}
	if prog.Current != (Position{2, 1}) {
		t.Errorf("Current = %v; want %v", prog.Current, Position{2, 1})
	}
	if prog.WeekCompleted[0] != DaysPerWeek {
		t.Errorf("WeekCompleted[0] = %d; want %d", prog.WeekCompleted[0], DaysPerWeek)
	}
	if prog.TotalCompleted() != DaysPerWeek {
		t.Errorf("TotalCompleted() = %d; want %d", prog.TotalCompleted(), DaysPerWeek)
	}
}

func TestProgressAdvance_terminal(t *testing.T) {
	now := time.Now()
	prog := NewProgress("usr1", 1)
	for i := 0; i < TotalDevotionals; i++ {
		prog.Advance(now)
	}
	if !prog.Current.IsFinal() {
		t.Errorf("Current = %v; want %v", prog.Current, FinalPosition)
	}
	if !prog.Completed() {
		t.Error("Completed() = false after finishing the program")
	}
	if prog.TotalCompleted() != TotalDevotionals {
		t.Errorf("TotalCompleted() = %d; want %d", prog.TotalCompleted(), TotalDevotionals)
	}

	// advancing past the end stays put and stays idempotent
	prog.Advance(now)
	if !prog.Current.IsFinal() {
		t.Errorf("Current = %v after terminal advance; want %v", prog.Current, FinalPosition)
	}
	if prog.TotalCompleted() != TotalDevotionals {
		t.Errorf("TotalCompleted() = %d after terminal advance; want %d", prog.TotalCompleted(), TotalDevotionals)
	}
	if prog.WeekCompleted[Weeks-1] != DaysPerWeek {
		t.Errorf("WeekCompleted[%d] = %d; capped at %d", Weeks-1, prog.WeekCompleted[Weeks-1], DaysPerWeek)
	}
}

func TestProgressMarkCompleted_idempotent(t *testing.T) {
	prog := NewProgress("usr1", 1)
	prog.markCompleted(5)
	prog.markCompleted(3)
	prog.markCompleted(5)
	prog.markCompleted(8)
	want := []int{3, 5, 8}
	if len(prog.CompletedIDs) != len(want) {
		t.Fatalf("CompletedIDs = %v; want %v", prog.CompletedIDs, want)
	}
	for i, id := range want {
		if prog.CompletedIDs[i] != id {
			t.Fatalf("CompletedIDs = %v; want %v", prog.CompletedIDs, want)
		}
	}
}

func TestProgressReset(t *testing.T) {
	prog := NewProgress("usr1", 46)
	for i := 0; i < 10; i++ {
		prog.Advance(time.Now())
	}

	prog.Reset(time.Now())
	if prog.Current != StartPosition {
		t.Errorf("Current = %v; want %v", prog.Current, StartPosition)
	}
	if prog.TotalCompleted() != 0 {
		t.Errorf("TotalCompleted() = %d; want 0", prog.TotalCompleted())
	}
	if prog.WeekCompleted != ([Weeks]int{}) {
		t.Errorf("WeekCompleted = %v; want zeroed", prog.WeekCompleted)
	}
	// identity & cohort survive
	if prog.UserID != "usr1" {
		t.Errorf("UserID = %q; want %q", prog.UserID, "usr1")
	}
	if prog.CohortNumber != 46 || prog.CohortName != "XLVI" {
		t.Errorf("cohort = %d %q; want 46 XLVI", prog.CohortNumber, prog.CohortName)
	}
}
