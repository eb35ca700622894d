// Package report turns an estimate into the rows, metrics and text shown to users.
package report

import (
	"github.com/sfc-gh-ttimbang/sf-wh-credit-calculator/internal/credits"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const Disclaimer = "This is an estimate for standard warehouses. " +
	"Actual costs may vary based on your contract's credit price, " +
	"per-second billing (with a 60-second minimum), auto-suspension settings, " +
	"and usage of other services like Cloud Services or Serverless features."

var printer = message.NewPrinter(language.English)

// Row is one line of the workload summary table. Position starts at 1.
type Row struct {
	Position          int           `json:"position"`
	Workload          string        `json:"workload"`
	Size              credits.Size  `json:"size"`
	Warehouses        int           `json:"warehouses"`
	DailyUptime       float64       `json:"daily_uptime"`
	ActiveDaysPerWeek int           `json:"active_days_per_week"`
	DailyCredits      float64       `json:"est_daily_credits"`
	MonthlyCredits    float64       `json:"est_monthly_credits"`
	Display           RowFormatting `json:"display"`
}

type RowFormatting struct {
	DailyCredits   string `json:"est_daily_credits"`
	MonthlyCredits string `json:"est_monthly_credits"`
}

type Metric struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Text  string  `json:"text"`
	Help  string  `json:"help"`
}

type Summary struct {
	Rows       []Row    `json:"rows"`
	Totals     []Metric `json:"totals"`
	Disclaimer string   `json:"disclaimer"`
}

// Credits formats a credit figure with thousands separators and 2 decimals.
func Credits(v float64) string {
	return printer.Sprintf("%.2f", v)
}

// BuildSummary pairs each workload with its figures. workloads and est must
// come from the same evaluation.
func BuildSummary(workloads []credits.Workload, est *credits.Estimate) Summary {
	rows := make([]Row, 0, len(workloads))
	for i, w := range workloads {
		if i >= len(est.PerWorkload) {
			break
		}
		wc := est.PerWorkload[i]
		rows = append(rows, Row{
			Position:          i + 1,
			Workload:          w.Name,
			Size:              w.Size,
			Warehouses:        w.Count,
			DailyUptime:       w.UptimeHours,
			ActiveDaysPerWeek: w.ActiveDaysPerWeek,
			DailyCredits:      wc.DailyCredits,
			MonthlyCredits:    wc.MonthlyCredits,
			Display: RowFormatting{
				DailyCredits:   Credits(wc.DailyCredits),
				MonthlyCredits: Credits(wc.MonthlyCredits),
			},
		})
	}

	return Summary{
		Rows:       rows,
		Totals:     TotalMetrics(est.Totals),
		Disclaimer: Disclaimer,
	}
}

func TotalMetrics(t credits.Totals) []Metric {
	monthlyHelp := printer.Sprintf("Calculated based on the active days per week for each workload over an average of %.2f weeks per month.",
		credits.WeeksPerMonth)

	return []Metric{
		{
			Label: "Total Daily Credits",
			Value: t.Daily,
			Text:  Credits(t.Daily),
			Help:  "Represents the total credits consumed on a day when all workloads are active.",
		},
		{
			Label: "Total Monthly Credits",
			Value: t.Monthly,
			Text:  Credits(t.Monthly),
			Help:  monthlyHelp,
		},
		{
			Label: "Total Annual Credits",
			Value: t.Annual,
			Text:  Credits(t.Annual),
			Help:  "An estimate calculated by multiplying the total monthly credits by 12.",
		},
	}
}
