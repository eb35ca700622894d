package credits

import (
	"fmt"
	"math"
	"strings"
)

// Field names a single editable attribute of a Workload.
type Field string

const (
	FieldName              Field = "name"
	FieldSize              Field = "size"
	FieldCount             Field = "count"
	FieldUptimeHours       Field = "uptime_hours"
	FieldActiveDaysPerWeek Field = "active_days_per_week"
)

const (
	MinCount          = 1
	MinUptimeHours    = 0.0
	MaxUptimeHours    = 24.0
	MinActiveDays     = 1
	MaxActiveDays     = 7
	legacyActiveDays  = 7
	defaultActiveDays = 5
	defaultNewCount   = 4
	defaultUptime     = 8.0
)

// Workload is one warehouse configuration whose credit usage is estimated.
type Workload struct {
	Name              string  `json:"name"`
	Size              Size    `json:"size"`
	Count             int     `json:"count"`
	UptimeHours       float64 `json:"uptime_hours"`
	ActiveDaysPerWeek int     `json:"active_days_per_week"`
}

// PositionalName returns the placeholder name for the record at position.
func PositionalName(position int) string {
	return fmt.Sprintf("Workload %d", position+1)
}

// DefaultWorkload is the record a fresh list starts with.
func DefaultWorkload(position int) Workload {
	return Workload{
		Name:              PositionalName(position),
		Size:              SizeMedium,
		Count:             1,
		UptimeHours:       defaultUptime,
		ActiveDaysPerWeek: defaultActiveDays,
	}
}

// NewWorkload is the record appended by "add workload".
func NewWorkload(position int) Workload {
	return Workload{
		Name:              PositionalName(position),
		Size:              SizeXSmall,
		Count:             defaultNewCount,
		UptimeHours:       defaultUptime,
		ActiveDaysPerWeek: defaultActiveDays,
	}
}

func ParseField(name string) (Field, error) {
	switch f := Field(name); f {
	case FieldName, FieldSize, FieldCount, FieldUptimeHours, FieldActiveDaysPerWeek:
		return f, nil
	}
	return "", fmt.Errorf("%w: unknown field %q", ErrInvalidValue, name)
}

// Validate reports the first field that violates its domain.
func (w Workload) Validate() error {
	if err := validateName(w.Name); err != nil {
		return err
	}
	if !w.Size.Valid() {
		return fmt.Errorf("%w: size %q is not a warehouse size", ErrInvalidValue, w.Size)
	}
	if err := validateCount(w.Count); err != nil {
		return err
	}
	if err := validateUptime(w.UptimeHours); err != nil {
		return err
	}
	return validateActiveDays(w.ActiveDaysPerWeek)
}

// SetField validates value against the field's domain and assigns it.
// The record is left untouched when an error is returned.
func (w *Workload) SetField(field Field, value any) error {
	switch field {
	case FieldName:
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("%w: name must be a string", ErrInvalidValue)
		}
		s = strings.TrimSpace(s)
		if err := validateName(s); err != nil {
			return err
		}
		w.Name = s
	case FieldSize:
		s, ok := value.(string)
		if !ok {
			if sz, isSize := value.(Size); isSize {
				s, ok = string(sz), true
			}
		}
		if !ok {
			return fmt.Errorf("%w: size must be a string", ErrInvalidValue)
		}
		size, err := ParseSize(s)
		if err != nil {
			return err
		}
		w.Size = size
	case FieldCount:
		n, err := toInt(field, value)
		if err != nil {
			return err
		}
		if err := validateCount(n); err != nil {
			return err
		}
		w.Count = n
	case FieldUptimeHours:
		f, err := toFloat(field, value)
		if err != nil {
			return err
		}
		if err := validateUptime(f); err != nil {
			return err
		}
		w.UptimeHours = f
	case FieldActiveDaysPerWeek:
		n, err := toInt(field, value)
		if err != nil {
			return err
		}
		if err := validateActiveDays(n); err != nil {
			return err
		}
		w.ActiveDaysPerWeek = n
	default:
		return fmt.Errorf("%w: unknown field %q", ErrInvalidValue, field)
	}
	return nil
}

// normalize backfills fields missing from records written by older versions.
func (w *Workload) normalize(position int) {
	if strings.TrimSpace(w.Name) == "" {
		w.Name = PositionalName(position)
	}
	if w.ActiveDaysPerWeek == 0 {
		w.ActiveDaysPerWeek = legacyActiveDays
	}
}

// WorkloadPatch holds caller supplied values for a workload. A nil field
// keeps the value of the record it is applied to.
type WorkloadPatch struct {
	Name              *string  `json:"name"`
	Size              *Size    `json:"size"`
	Count             *int     `json:"count"`
	UptimeHours       *float64 `json:"uptime_hours"`
	ActiveDaysPerWeek *int     `json:"active_days_per_week"`
}

// Over returns base with every set field of p applied. The result is not
// validated.
func (p WorkloadPatch) Over(base Workload) Workload {
	w := base
	if p.Name != nil {
		w.Name = strings.TrimSpace(*p.Name)
	}
	if p.Size != nil {
		w.Size = *p.Size
	}
	if p.Count != nil {
		w.Count = *p.Count
	}
	if p.UptimeHours != nil {
		w.UptimeHours = *p.UptimeHours
	}
	if p.ActiveDaysPerWeek != nil {
		w.ActiveDaysPerWeek = *p.ActiveDaysPerWeek
	}
	return w
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name must not be empty", ErrInvalidValue)
	}
	return nil
}

func validateCount(n int) error {
	if n < MinCount {
		return fmt.Errorf("%w: count must be at least %d, got %d", ErrInvalidValue, MinCount, n)
	}
	return nil
}

func validateUptime(h float64) error {
	if !(h >= MinUptimeHours && h <= MaxUptimeHours) {
		return fmt.Errorf("%w: uptime_hours must be within [%g, %g], got %g", ErrInvalidValue, MinUptimeHours, MaxUptimeHours, h)
	}
	return nil
}

func validateActiveDays(n int) error {
	if n < MinActiveDays || n > MaxActiveDays {
		return fmt.Errorf("%w: active_days_per_week must be within [%d, %d], got %d", ErrInvalidValue, MinActiveDays, MaxActiveDays, n)
	}
	return nil
}

func toInt(field Field, value any) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if math.Trunc(v) != v || math.IsInf(v, 0) {
			return 0, fmt.Errorf("%w: %s must be a whole number, got %g", ErrInvalidValue, field, v)
		}
		return int(v), nil
	}
	return 0, fmt.Errorf("%w: %s must be a number", ErrInvalidValue, field)
}

func toFloat(field Field, value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	}
	return 0, fmt.Errorf("%w: %s must be a number", ErrInvalidValue, field)
}
