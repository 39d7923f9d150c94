package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/service"
)

// AnalyticsBucket is one label/count pair in a dashboard breakdown.
type AnalyticsBucket struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

// AnalyticsDayBucket is one day on the created-per-day series.
type AnalyticsDayBucket struct {
	Day   time.Time `json:"day"`
	Count int64     `json:"count"`
}

// AnalyticsOverviewResponse is the staff dashboard payload.
type AnalyticsOverviewResponse struct {
	From               time.Time            `json:"from"`
	To                 time.Time            `json:"to"`
	TotalCreated       int64                `json:"total_created"`
	ByStatus           []AnalyticsBucket    `json:"by_status"`
	ByPriority         []AnalyticsBucket    `json:"by_priority"`
	ByDepartment       []AnalyticsBucket    `json:"by_department"`
	CreatedPerDay      []AnalyticsDayBucket `json:"created_per_day"`
	AvgResolutionHours float64              `json:"avg_resolution_hours"`
}

// AnalyticsOverview maps the service aggregate onto the response shape.
func AnalyticsOverview(overview *service.AnalyticsOverview) AnalyticsOverviewResponse {
	resp := AnalyticsOverviewResponse{
		From:               overview.From,
		To:                 overview.To,
		TotalCreated:       overview.TotalCreated,
		AvgResolutionHours: overview.AvgResolutionHours,
	}
	for _, row := range overview.ByStatus {
		resp.ByStatus = append(resp.ByStatus, AnalyticsBucket{Label: string(row.Status), Count: row.Count})
	}
	for _, row := range overview.ByPriority {
		resp.ByPriority = append(resp.ByPriority, AnalyticsBucket{Label: row.Label, Count: row.Count})
	}
	for _, row := range overview.ByDepartment {
		resp.ByDepartment = append(resp.ByDepartment, AnalyticsBucket{Label: row.Label, Count: row.Count})
	}
	for _, row := range overview.CreatedPerDay {
		resp.CreatedPerDay = append(resp.CreatedPerDay, AnalyticsDayBucket{Day: row.Day, Count: row.Count})
	}
	return resp
}
