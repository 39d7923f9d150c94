package service

import (
	"context"
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// AnalyticsService computes dashboard aggregates for staff.
type AnalyticsService struct {
	tickets repository.TicketRepository
}

// AnalyticsOverview bundles the dashboard numbers for one time window.
type AnalyticsOverview struct {
	From               time.Time
	To                 time.Time
	TotalCreated       int64
	ByStatus           []repository.StatusCount
	ByPriority         []repository.LabelCount
	ByDepartment       []repository.LabelCount
	CreatedPerDay      []repository.DayCount
	AvgResolutionHours float64
}

// NewAnalyticsService constructs the service.
func NewAnalyticsService(tickets repository.TicketRepository) *AnalyticsService {
	return &AnalyticsService{tickets: tickets}
}

// Overview aggregates ticket metrics over the trailing window of days.
func (s *AnalyticsService) Overview(ctx context.Context, staff *domain.StaffMember, days int) (*AnalyticsOverview, error) {
	if staff == nil {
		return nil, apperrors.NewUnauthorized("staff required")
	}
	if days <= 0 {
		days = 30
	}
	if days > 365 {
		days = 365
	}
	to := time.Now()
	from := to.AddDate(0, 0, -days)

	byStatus, err := s.tickets.CountByStatus(ctx, from, to)
	if err != nil {
		return nil, err
	}
	byPriority, err := s.tickets.CountByPriority(ctx, from, to)
	if err != nil {
		return nil, err
	}
	byDepartment, err := s.tickets.CountByDepartment(ctx, from, to)
	if err != nil {
		return nil, err
	}
	perDay, err := s.tickets.CountCreatedPerDay(ctx, from, to)
	if err != nil {
		return nil, err
	}
	avgResolution, err := s.tickets.AvgResolutionHours(ctx, from, to)
	if err != nil {
		return nil, err
	}

	var total int64
	for _, row := range byStatus {
		total += row.Count
	}

	return &AnalyticsOverview{
		From:               from,
		To:                 to,
		TotalCreated:       total,
		ByStatus:           byStatus,
		ByPriority:         byPriority,
		ByDepartment:       byDepartment,
		CreatedPerDay:      perDay,
		AvgResolutionHours: avgResolution,
	}, nil
}
