package logic

import "testing"

func TestDefaultLevels(t *testing.T) {
	l := DefaultLevels()
	want := []struct {
		duty    uint8
		percent int
		label   string
	}{
		{0, 0, "OFF"},
		{85, 33, "LOW"},
		{170, 67, "MEDIUM"},
		{255, 100, "HIGH"},
	}

	if l.Len() != len(want) {
		t.Fatalf("expected %d levels, got %d", len(want), l.Len())
	}
	for i, w := range want {
		got := l.At(i)
		if got.Index != i {
			t.Errorf("level %d: Index=%d", i, got.Index)
		}
		if got.Duty != w.duty {
			t.Errorf("level %d: Duty=%d, want %d", i, got.Duty, w.duty)
		}
		if got.DutyPercent() != w.percent {
			t.Errorf("level %d: DutyPercent=%d, want %d", i, got.DutyPercent(), w.percent)
		}
		if got.Label != w.label {
			t.Errorf("level %d: Label=%q, want %q", i, got.Label, w.label)
		}
	}
}

func TestNewLevelsAssignsIndex(t *testing.T) {
	l, err := NewLevels([]SpeedLevel{
		{Index: 7, Duty: 10, Label: "A"},
		{Index: 7, Duty: 20, Label: "B"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.At(0).Index != 0 || l.At(1).Index != 1 {
		t.Errorf("indices not assigned from position: %+v", l.All())
	}
}

func TestNewLevelsRejectsEmpty(t *testing.T) {
	if _, err := NewLevels(nil); err == nil {
		t.Error("expected error for empty table")
	}
}

func TestNewLevelsRejectsEmptyLabel(t *testing.T) {
	if _, err := NewLevels([]SpeedLevel{{Duty: 1, Label: "A"}, {Duty: 2}}); err == nil {
		t.Error("expected error for empty label")
	}
}

func TestLevelsAtOutOfRangePanics(t *testing.T) {
	l := DefaultLevels()
	for _, i := range []int{-1, 4, 100} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("At(%d) did not panic", i)
				}
			}()
			l.At(i)
		}()
	}
}

func TestLevelsAllIsCopy(t *testing.T) {
	l := DefaultLevels()
	all := l.All()
	all[0].Label = "CHANGED"
	if l.At(0).Label != "OFF" {
		t.Error("All() exposed the internal table")
	}
}
