package service

import (
	"context"
	"sort"

	"finagent/internal/dto"
	"finagent/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	noDataMessage    = "No transaction data available yet. Upload a document to get started."
	oneMonthMessage  = "Not enough history for a month-over-month comparison yet."
	staleDataWarning = "The transaction store is unreachable. Figures may be missing."
	dashboardDateFmt = "2006-01-02"
)

// CategoryTotals sums amounts per category. Categories are ordered by total
// descending; ties break on the category name.
func CategoryTotals(transactions []models.Transaction) []dto.CategoryTotal {
	type bucket struct {
		total decimal.Decimal
		count int
	}
	buckets := make(map[string]*bucket)
	for _, tx := range transactions {
		b, ok := buckets[tx.Category]
		if !ok {
			b = &bucket{}
			buckets[tx.Category] = b
		}
		b.total = b.total.Add(tx.Amount)
		b.count++
	}

	totals := make([]dto.CategoryTotal, 0, len(buckets))
	for category, b := range buckets {
		totals = append(totals, dto.CategoryTotal{
			Category: category,
			Total:    b.total,
			Count:    b.count,
		})
	}
	sort.Slice(totals, func(i, j int) bool {
		if cmp := totals[i].Total.Cmp(totals[j].Total); cmp != 0 {
			return cmp > 0
		}
		return totals[i].Category < totals[j].Category
	})
	return totals
}

// MonthlySeries sums amounts per calendar month, ascending by month.
func MonthlySeries(transactions []models.Transaction) []dto.MonthPoint {
	type bucket struct {
		total decimal.Decimal
		count int
	}
	buckets := make(map[string]*bucket)
	for _, tx := range transactions {
		key := tx.MonthKey()
		b, ok := buckets[key]
		if !ok {
			b = &bucket{}
			buckets[key] = b
		}
		b.total = b.total.Add(tx.Amount)
		b.count++
	}

	months := make([]dto.MonthPoint, 0, len(buckets))
	for month, b := range buckets {
		months = append(months, dto.MonthPoint{
			Month: month,
			Total: b.total,
			Count: b.count,
		})
	}
	sort.Slice(months, func(i, j int) bool {
		return months[i].Month < months[j].Month
	})
	return months
}

// CompareRecentMonths reports the spending change between the two most
// recent months in the data.
func CompareRecentMonths(transactions []models.Transaction) dto.MonthComparison {
	months := MonthlySeries(transactions)
	if len(months) < 2 {
		return dto.MonthComparison{Message: oneMonthMessage}
	}

	prior := months[len(months)-2]
	current := months[len(months)-1]

	return dto.MonthComparison{
		Available:    true,
		PriorMonth:   prior.Month,
		CurrentMonth: current.Month,
		PriorTotal:   prior.Total,
		CurrentTotal: current.Total,
		PctChange:    changePercent(prior.Total, current.Total),
	}
}

// changePercent reports the month-over-month change. Growth from a zero base
// reads as +100%, decline from a zero base as -100%, zero to zero as 0%.
func changePercent(prior, current decimal.Decimal) float64 {
	switch {
	case prior.IsZero() && current.IsZero():
		return 0
	case prior.IsZero() && current.IsPositive():
		return 100
	case prior.IsZero():
		return -100
	default:
		return current.Sub(prior).Div(prior).InexactFloat64() * 100
	}
}

// Dashboard serves the derived views the web dashboard renders. All views
// read the shared fetcher; store failures degrade to empty views carrying a
// warning instead of errors.
type Dashboard struct {
	fetcher *Fetcher
	logger  *zap.Logger
}

func NewDashboard(fetcher *Fetcher, logger *zap.Logger) *Dashboard {
	return &Dashboard{
		fetcher: fetcher,
		logger:  logger,
	}
}

func (s *Dashboard) Summary(ctx context.Context) dto.DashboardSummary {
	transactions, err := s.fetcher.Fetch(ctx)

	summary := dto.DashboardSummary{
		TransactionCount: len(transactions),
		Categories:       CategoryTotals(transactions),
	}
	if err != nil {
		summary.Warning = staleDataWarning
	}
	if len(transactions) == 0 {
		summary.Message = noDataMessage
		return summary
	}

	total := decimal.Zero
	first, last := transactions[0].Date, transactions[0].Date
	for _, tx := range transactions {
		total = total.Add(tx.Amount)
		if tx.Date.Before(first) {
			first = tx.Date
		}
		if tx.Date.After(last) {
			last = tx.Date
		}
	}
	summary.TotalAmount = total
	summary.FirstDate = first.Format(dashboardDateFmt)
	summary.LastDate = last.Format(dashboardDateFmt)

	return summary
}

func (s *Dashboard) Timeseries(ctx context.Context) dto.TimeseriesResponse {
	transactions, err := s.fetcher.Fetch(ctx)

	resp := dto.TimeseriesResponse{
		Months: MonthlySeries(transactions),
	}
	if err != nil {
		resp.Warning = staleDataWarning
	}
	if len(transactions) == 0 {
		resp.Message = noDataMessage
	}
	return resp
}

func (s *Dashboard) Comparison(ctx context.Context) dto.MonthComparison {
	transactions, err := s.fetcher.Fetch(ctx)

	resp := CompareRecentMonths(transactions)
	if err != nil {
		resp.Warning = staleDataWarning
	}
	return resp
}
