package metrics

import (
	"math"
	"time"

	"profitlens/internal/domain"
)

// CampaignPerformance compares average daily units of the campaign's items
// while it runs against an equally long window before it started. Sales of
// every outlet count. A nil campaign yields nil.
func CampaignPerformance(
	campaign *domain.ActiveCampaign,
	menuItems []domain.MenuItem,
	sales []domain.SalesRecord,
	now time.Time,
) *domain.CampaignPerformance {
	if campaign == nil {
		return nil
	}

	start := campaign.StartDate
	daysRunning := int(math.Ceil(now.Sub(start).Hours() / 24))
	divisor := float64(daysRunning)
	if daysRunning == 0 {
		divisor = 1
	}

	names := map[string]bool{
		campaign.InvolvedItems.Item1Name: true,
		campaign.InvolvedItems.Item2Name: true,
	}
	involved := make(map[string]bool)
	for _, item := range menuItems {
		if names[item.Name] {
			involved[item.ID] = true
		}
	}

	beforeStart := start.AddDate(0, 0, -daysRunning)
	var unitsDuring, unitsBefore float64
	for _, rec := range sales {
		if !involved[rec.MenuItemID] {
			continue
		}
		day := rec.Day()
		switch {
		case !day.Before(start):
			unitsDuring += float64(rec.QuantitySold)
		case !day.Before(beforeStart):
			unitsBefore += float64(rec.QuantitySold)
		}
	}

	avgDuring := unitsDuring / divisor
	avgBefore := unitsBefore / divisor

	perf := &domain.CampaignPerformance{DaysRunning: daysRunning}
	switch {
	case avgBefore > 0:
		perf.PercentageChange = (avgDuring - avgBefore) / avgBefore * 100
	case avgDuring > 0:
		perf.PercentageChange = 100
	}
	return perf
}
