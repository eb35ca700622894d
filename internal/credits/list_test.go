package credits

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewList(t *testing.T) {
	l := NewList()
	want := []Workload{
		{Name: "Workload 1", Size: SizeMedium, Count: 1, UptimeHours: 8.0, ActiveDaysPerWeek: 5},
	}
	if diff := cmp.Diff(want, l.Workloads()); diff != "" {
		t.Errorf("NewList() mismatch (-want +got):\n%s", diff)
	}
}

func TestInitialize(t *testing.T) {
	tests := []struct {
		name     string
		existing *List
		want     []Workload
	}{
		{
			name:     "creates default list when none exists",
			existing: nil,
			want:     NewList().Workloads(),
		},
		{
			name:     "keeps an existing empty list",
			existing: NewListFrom([]Workload{}),
			want:     []Workload{},
		},
		{
			name: "keeps user data and backfills legacy fields",
			existing: NewListFrom([]Workload{
				{Name: "etl", Size: SizeLarge, Count: 2, UptimeHours: 3, ActiveDaysPerWeek: 2},
				{Size: SizeSmall, Count: 1, UptimeHours: 4},
			}),
			want: []Workload{
				{Name: "etl", Size: SizeLarge, Count: 2, UptimeHours: 3, ActiveDaysPerWeek: 2},
				{Name: "Workload 2", Size: SizeSmall, Count: 1, UptimeHours: 4, ActiveDaysPerWeek: 7},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Initialize(tt.existing)
			if tt.existing != nil && got != tt.existing {
				t.Error("Initialize() replaced the existing list")
			}
			if diff := cmp.Diff(tt.want, got.Workloads()); diff != "" {
				t.Errorf("Initialize() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestInitializeTwiceIsIdempotent(t *testing.T) {
	l := Initialize(nil)
	if err := l.Append(nil); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	before := l.Workloads()

	l = Initialize(Initialize(l))

	if diff := cmp.Diff(before, l.Workloads()); diff != "" {
		t.Errorf("re-initialization changed the list (-want +got):\n%s", diff)
	}
}

func TestAppend(t *testing.T) {
	l := NewList()
	if err := l.Append(nil); err != nil {
		t.Fatalf("Append(nil) error = %v", err)
	}

	got, err := l.At(1)
	if err != nil {
		t.Fatalf("At(1) error = %v", err)
	}
	want := Workload{Name: "Workload 2", Size: SizeXSmall, Count: 4, UptimeHours: 8.0, ActiveDaysPerWeek: 5}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("appended workload mismatch (-want +got):\n%s", diff)
	}
}

func ptr[T any](v T) *T {
	return &v
}

func TestAppendWithDefaults(t *testing.T) {
	tests := []struct {
		name     string
		defaults WorkloadPatch
		want     Workload
		wantErr  error
	}{
		{
			name:     "name only takes standard values for the rest",
			defaults: WorkloadPatch{Name: ptr("etl")},
			want:     Workload{Name: "etl", Size: SizeXSmall, Count: 4, UptimeHours: 8.0, ActiveDaysPerWeek: 5},
		},
		{
			name:     "empty patch is the standard workload",
			defaults: WorkloadPatch{},
			want:     Workload{Name: "Workload 2", Size: SizeXSmall, Count: 4, UptimeHours: 8.0, ActiveDaysPerWeek: 5},
		},
		{
			name:     "completes missing fields",
			defaults: WorkloadPatch{Size: ptr(SizeLarge), UptimeHours: ptr(2.0)},
			want:     Workload{Name: "Workload 2", Size: SizeLarge, Count: 4, UptimeHours: 2, ActiveDaysPerWeek: 5},
		},
		{
			name:     "explicit zero uptime is kept",
			defaults: WorkloadPatch{UptimeHours: ptr(0.0)},
			want:     Workload{Name: "Workload 2", Size: SizeXSmall, Count: 4, UptimeHours: 0, ActiveDaysPerWeek: 5},
		},
		{
			name: "keeps supplied fields",
			defaults: WorkloadPatch{
				Name:              ptr("reporting"),
				Size:              ptr(Size2XLarge),
				Count:             ptr(2),
				UptimeHours:       ptr(12.5),
				ActiveDaysPerWeek: ptr(6),
			},
			want: Workload{Name: "reporting", Size: Size2XLarge, Count: 2, UptimeHours: 12.5, ActiveDaysPerWeek: 6},
		},
		{
			name:     "rejects explicit zero count",
			defaults: WorkloadPatch{Size: ptr(SizeSmall), Count: ptr(0), UptimeHours: ptr(2.0)},
			wantErr:  ErrInvalidValue,
		},
		{
			name:     "rejects explicit zero active days",
			defaults: WorkloadPatch{ActiveDaysPerWeek: ptr(0)},
			wantErr:  ErrInvalidValue,
		},
		{
			name:     "rejects blank name",
			defaults: WorkloadPatch{Name: ptr("  ")},
			wantErr:  ErrInvalidValue,
		},
		{
			name:     "rejects unknown size",
			defaults: WorkloadPatch{Size: ptr(Size("Huge"))},
			wantErr:  ErrInvalidValue,
		},
		{
			name:     "rejects uptime above a day",
			defaults: WorkloadPatch{UptimeHours: ptr(25.0)},
			wantErr:  ErrInvalidValue,
		},
		{
			name:     "rejects negative count",
			defaults: WorkloadPatch{Count: ptr(-1)},
			wantErr:  ErrInvalidValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewList()
			defaults := tt.defaults
			err := l.Append(&defaults)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Append() error = %v, want %v", err, tt.wantErr)
				}
				if l.Len() != 1 {
					t.Errorf("Len() = %d after failed append, want 1", l.Len())
				}
				return
			}
			if err != nil {
				t.Fatalf("Append() error = %v", err)
			}
			got, _ := l.At(1)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("appended workload mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAppendThenRemoveRestoresList(t *testing.T) {
	l := NewListFrom([]Workload{
		{Name: "a", Size: SizeSmall, Count: 1, UptimeHours: 1, ActiveDaysPerWeek: 1},
		{Name: "b", Size: SizeLarge, Count: 2, UptimeHours: 2, ActiveDaysPerWeek: 2},
	})
	before := l.Workloads()

	if err := l.Append(nil); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := l.RemoveAt(l.Len() - 1); err != nil {
		t.Fatalf("RemoveAt() error = %v", err)
	}

	if diff := cmp.Diff(before, l.Workloads()); diff != "" {
		t.Errorf("list not restored (-want +got):\n%s", diff)
	}
}

func TestRemoveAt(t *testing.T) {
	t.Run("removing the only workload leaves an empty list", func(t *testing.T) {
		l := NewList()
		if err := l.RemoveAt(0); err != nil {
			t.Fatalf("RemoveAt(0) error = %v", err)
		}
		if l.Len() != 0 {
			t.Fatalf("Len() = %d, want 0", l.Len())
		}
		est, err := l.Evaluate()
		if err != nil {
			t.Fatalf("Evaluate() error = %v", err)
		}
		if est.Totals != (Totals{}) {
			t.Errorf("Totals = %+v, want zero", est.Totals)
		}
	})

	t.Run("does not rename remaining workloads", func(t *testing.T) {
		l := NewList()
		_ = l.Append(nil)
		_ = l.Append(nil)
		if err := l.RemoveAt(0); err != nil {
			t.Fatalf("RemoveAt(0) error = %v", err)
		}
		got := l.Workloads()
		if got[0].Name != "Workload 2" || got[1].Name != "Workload 3" {
			t.Errorf("names = %q, %q, want Workload 2, Workload 3", got[0].Name, got[1].Name)
		}
	})

	t.Run("out of range", func(t *testing.T) {
		l := NewList()
		_ = l.Append(nil)
		for _, idx := range []int{5, 2, -1} {
			if err := l.RemoveAt(idx); !errors.Is(err, ErrOutOfRange) {
				t.Errorf("RemoveAt(%d) error = %v, want ErrOutOfRange", idx, err)
			}
		}
		if l.Len() != 2 {
			t.Errorf("Len() = %d, want 2", l.Len())
		}
	})
}

func TestUpdate(t *testing.T) {
	tests := []struct {
		name    string
		field   Field
		value   any
		want    func(w *Workload)
		wantErr error
	}{
		{name: "count from json number", field: FieldCount, value: float64(3), want: func(w *Workload) { w.Count = 3 }},
		{name: "count from int", field: FieldCount, value: 7, want: func(w *Workload) { w.Count = 7 }},
		{name: "size", field: FieldSize, value: "3X-Large", want: func(w *Workload) { w.Size = Size3XLarge }},
		{name: "uptime upper bound", field: FieldUptimeHours, value: 24.0, want: func(w *Workload) { w.UptimeHours = 24 }},
		{name: "uptime lower bound", field: FieldUptimeHours, value: 0, want: func(w *Workload) { w.UptimeHours = 0 }},
		{name: "active days", field: FieldActiveDaysPerWeek, value: float64(7), want: func(w *Workload) { w.ActiveDaysPerWeek = 7 }},
		{name: "name is trimmed", field: FieldName, value: "  nightly  ", want: func(w *Workload) { w.Name = "nightly" }},
		{name: "unknown size", field: FieldSize, value: "UnknownTier", wantErr: ErrInvalidValue},
		{name: "count zero", field: FieldCount, value: 0, wantErr: ErrInvalidValue},
		{name: "fractional count", field: FieldCount, value: 2.5, wantErr: ErrInvalidValue},
		{name: "count as string", field: FieldCount, value: "3", wantErr: ErrInvalidValue},
		{name: "negative uptime", field: FieldUptimeHours, value: -0.5, wantErr: ErrInvalidValue},
		{name: "uptime over a day", field: FieldUptimeHours, value: 24.5, wantErr: ErrInvalidValue},
		{name: "zero active days", field: FieldActiveDaysPerWeek, value: 0, wantErr: ErrInvalidValue},
		{name: "eight active days", field: FieldActiveDaysPerWeek, value: 8, wantErr: ErrInvalidValue},
		{name: "blank name", field: FieldName, value: "   ", wantErr: ErrInvalidValue},
		{name: "unknown field", field: Field("color"), value: "blue", wantErr: ErrInvalidValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewList()
			_ = l.Append(nil)
			before := l.Workloads()

			err := l.Update(0, tt.field, tt.value)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Update() error = %v, want %v", err, tt.wantErr)
				}
				if diff := cmp.Diff(before, l.Workloads()); diff != "" {
					t.Errorf("failed update changed the list (-want +got):\n%s", diff)
				}
				return
			}
			if err != nil {
				t.Fatalf("Update() error = %v", err)
			}

			want := l.Workloads()
			want[0] = before[0]
			tt.want(&want[0])
			want[1] = before[1]
			if diff := cmp.Diff(want, l.Workloads()); diff != "" {
				t.Errorf("Update() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestUpdateOutOfRange(t *testing.T) {
	l := NewList()
	if err := l.Update(1, FieldCount, 3); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("Update(1) error = %v, want ErrOutOfRange", err)
	}
}

func TestApply(t *testing.T) {
	t.Run("applies every field", func(t *testing.T) {
		l := NewList()
		err := l.Apply(0, Edit{FieldSize: "Large", FieldCount: float64(2), FieldName: "batch"})
		if err != nil {
			t.Fatalf("Apply() error = %v", err)
		}
		got, _ := l.At(0)
		want := Workload{Name: "batch", Size: SizeLarge, Count: 2, UptimeHours: 8, ActiveDaysPerWeek: 5}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Apply() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("one bad field rejects the whole edit", func(t *testing.T) {
		l := NewList()
		before := l.Workloads()
		err := l.Apply(0, Edit{FieldSize: "Large", FieldUptimeHours: 30.0})
		if !errors.Is(err, ErrInvalidValue) {
			t.Fatalf("Apply() error = %v, want ErrInvalidValue", err)
		}
		if diff := cmp.Diff(before, l.Workloads()); diff != "" {
			t.Errorf("rejected edit changed the list (-want +got):\n%s", diff)
		}
	})

	t.Run("empty edit", func(t *testing.T) {
		if err := NewList().Apply(0, Edit{}); !errors.Is(err, ErrInvalidValue) {
			t.Errorf("Apply() error = %v, want ErrInvalidValue", err)
		}
	})
}

func TestWorkloadsReturnsCopy(t *testing.T) {
	l := NewList()
	ws := l.Workloads()
	ws[0].Count = 99
	if got, _ := l.At(0); got.Count != 1 {
		t.Errorf("Count = %d after mutating copy, want 1", got.Count)
	}
}

func TestListJSON(t *testing.T) {
	l := NewList()
	data, err := json.Marshal(l)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	want := `[{"name":"Workload 1","size":"Medium","count":1,"uptime_hours":8,"active_days_per_week":5}]`
	if string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}

	legacy := []byte(`[{"size":"Small","count":2,"uptime_hours":4}]`)
	var decoded List
	if err := json.Unmarshal(legacy, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	Initialize(&decoded)
	got, _ := decoded.At(0)
	if got.Name != "Workload 1" || got.ActiveDaysPerWeek != 7 {
		t.Errorf("legacy record = %+v, want backfilled name and 7 active days", got)
	}
}
