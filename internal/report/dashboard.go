package report

import (
	"billing/internal/period"
	"github.com/shopspring/decimal"
)

// Dashboard holds the headline indicators of the latest period and their
// change against the period before, in percent.
type Dashboard struct {
	Period       string          `json:"period"`
	RevenueNet   decimal.Decimal `json:"revenue_net"`
	Hours        decimal.Decimal `json:"hours"`
	Profit       decimal.Decimal `json:"profit"`
	RevenueTrend decimal.Decimal `json:"revenue_trend"`
	HoursTrend   decimal.Decimal `json:"hours_trend"`
	ProfitTrend  decimal.Decimal `json:"profit_trend"`
}

// NewDashboard derives the indicators from the last two rows of a report.
func NewDashboard(r Report) Dashboard {
	var d Dashboard
	if len(r.Rows) == 0 {
		return d
	}
	last := r.Rows[len(r.Rows)-1]
	d.Period = last.Label
	d.RevenueNet = last.RevenueNet
	d.Hours = last.Hours
	d.Profit = last.Profit

	buckets := make([]period.Bucket, len(r.Rows))
	for i, row := range r.Rows {
		buckets[i] = period.Bucket{
			Period: row.Period,
			Values: map[string]decimal.Decimal{
				MetricRevenueNet: row.RevenueNet,
				MetricHours:      row.Hours,
				"profit":         row.Profit,
			},
		}
	}
	d.RevenueTrend = period.Trend(buckets, MetricRevenueNet)
	d.HoursTrend = period.Trend(buckets, MetricHours)
	d.ProfitTrend = period.Trend(buckets, "profit")
	return d
}
