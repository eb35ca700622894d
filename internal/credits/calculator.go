package credits

import "fmt"

// WorkloadCredits is the derived consumption of a single workload.
type WorkloadCredits struct {
	DailyCredits   float64 `json:"daily_credits"`
	MonthlyCredits float64 `json:"monthly_credits"`
}

type Totals struct {
	Daily   float64 `json:"daily"`
	Monthly float64 `json:"monthly"`
	Annual  float64 `json:"annual"`
}

// Estimate holds per-workload figures in list order plus the aggregate totals.
type Estimate struct {
	PerWorkload []WorkloadCredits `json:"per_workload"`
	Totals      Totals            `json:"totals"`
}

// DailyCredits is rate * uptime * count for an active day.
func DailyCredits(w Workload) (float64, error) {
	rate, ok := CreditsPerHour(w.Size)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, w.Size)
	}
	return rate * w.UptimeHours * float64(w.Count), nil
}

// MonthlyCredits scales daily credits by active days over an average month.
func MonthlyCredits(w Workload) (float64, error) {
	daily, err := DailyCredits(w)
	if err != nil {
		return 0, err
	}
	return monthly(daily, w), nil
}

func monthly(daily float64, w Workload) float64 {
	return daily * float64(w.ActiveDaysPerWeek) * WeeksPerMonth
}

// Evaluate computes the estimate for workloads. It never returns partial
// figures: any workload with an unknown size fails the whole evaluation.
// Values are not rounded.
func Evaluate(workloads []Workload) (*Estimate, error) {
	est := &Estimate{PerWorkload: make([]WorkloadCredits, 0, len(workloads))}

	for i, w := range workloads {
		daily, err := DailyCredits(w)
		if err != nil {
			return nil, fmt.Errorf("workload %d (%s): %w", i, w.Name, err)
		}
		month := monthly(daily, w)

		est.PerWorkload = append(est.PerWorkload, WorkloadCredits{
			DailyCredits:   daily,
			MonthlyCredits: month,
		})
		est.Totals.Daily += daily
		est.Totals.Monthly += month
	}

	est.Totals.Annual = est.Totals.Monthly * MonthsPerYear
	return est, nil
}

// Evaluate computes the estimate for the list's current contents.
func (l *List) Evaluate() (*Estimate, error) {
	return Evaluate(l.items)
}
