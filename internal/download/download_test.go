package download

import (
	"testing"
	"time"
)

func TestEntry_Ready(t *testing.T) {
	tests := []struct {
		name  string
		entry Entry
		want  bool
	}{
		{"finished", Entry{Completed: true}, true},
		{"seeding", Entry{Completed: true, Seeding: true}, false},
		{"incomplete", Entry{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.entry.Ready(); got != tt.want {
				t.Errorf("Ready() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSortOldestFirst(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	entries := []*Entry{
		{ID: "c", Name: "Zeta", CompletedAt: base.Add(time.Hour)},
		{ID: "b", Name: "Beta", CompletedAt: base},
		{ID: "a", Name: "Alpha", CompletedAt: base},
	}

	SortOldestFirst(entries)

	want := []string{"a", "b", "c"}
	for i, id := range want {
		if entries[i].ID != id {
			t.Errorf("entries[%d].ID = %s, want %s", i, entries[i].ID, id)
		}
	}
}
