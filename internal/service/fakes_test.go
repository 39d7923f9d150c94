package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

type memTicketRepo struct {
	mu      sync.Mutex
	seq     int
	tickets map[string]*domain.Ticket

	statusCounts []repository.StatusCount
	priCounts    []repository.LabelCount
	deptCounts   []repository.LabelCount
	dayCounts    []repository.DayCount
	avgHours     float64
}

func newMemTicketRepo() *memTicketRepo {
	return &memTicketRepo{tickets: make(map[string]*domain.Ticket)}
}

func (r *memTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	ticket.ID = fmt.Sprintf("ticket-%d", r.seq)
	ticket.CreatedAt = time.Now()
	ticket.UpdatedAt = ticket.CreatedAt
	clone := *ticket
	r.tickets[ticket.ID] = &clone
	return nil
}

func (r *memTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	ticket.UpdatedAt = time.Now()
	clone := *ticket
	r.tickets[ticket.ID] = &clone
	return nil
}

func (r *memTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *ticket
	return &clone, nil
}

func (r *memTicketRepo) GetByExternalKey(_ context.Context, key string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ticket := range r.tickets {
		if ticket.ExternalKey == key {
			clone := *ticket
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memTicketRepo) ListWithFilter(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Ticket{}
	for _, ticket := range r.tickets {
		if filter.RequesterID != nil {
			if ticket.RequesterID == nil || *ticket.RequesterID != *filter.RequesterID {
				continue
			}
		}
		if filter.DepartmentID != nil {
			if ticket.DepartmentID == nil || *ticket.DepartmentID != *filter.DepartmentID {
				continue
			}
		}
		out = append(out, *ticket)
	}
	return out, nil
}

func (r *memTicketRepo) CountByStatus(context.Context, time.Time, time.Time) ([]repository.StatusCount, error) {
	return r.statusCounts, nil
}

func (r *memTicketRepo) CountByPriority(context.Context, time.Time, time.Time) ([]repository.LabelCount, error) {
	return r.priCounts, nil
}

func (r *memTicketRepo) CountByDepartment(context.Context, time.Time, time.Time) ([]repository.LabelCount, error) {
	return r.deptCounts, nil
}

func (r *memTicketRepo) CountCreatedPerDay(context.Context, time.Time, time.Time) ([]repository.DayCount, error) {
	return r.dayCounts, nil
}

func (r *memTicketRepo) AvgResolutionHours(context.Context, time.Time, time.Time) (float64, error) {
	return r.avgHours, nil
}

type memMessageRepo struct {
	mu       sync.Mutex
	seq      int
	messages map[string][]domain.TicketMessage
}

func newMemMessageRepo() *memMessageRepo {
	return &memMessageRepo{messages: make(map[string][]domain.TicketMessage)}
}

func (r *memMessageRepo) Create(_ context.Context, msg *domain.TicketMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	msg.ID = fmt.Sprintf("msg-%d", r.seq)
	msg.CreatedAt = time.Now()
	r.messages[msg.TicketID] = append(r.messages[msg.TicketID], *msg)
	return nil
}

func (r *memMessageRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.TicketMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.TicketMessage{}, r.messages[ticketID]...), nil
}

func (r *memMessageRepo) ReassignTicket(_ context.Context, fromTicketID, toTicketID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	moved := r.messages[fromTicketID]
	for i := range moved {
		moved[i].TicketID = toTicketID
	}
	r.messages[toTicketID] = append(r.messages[toTicketID], moved...)
	delete(r.messages, fromTicketID)
	return nil
}

type memDepartmentRepo struct {
	mu    sync.Mutex
	depts map[string]*domain.Department
}

func newMemDepartmentRepo(depts ...domain.Department) *memDepartmentRepo {
	repo := &memDepartmentRepo{depts: make(map[string]*domain.Department)}
	for i := range depts {
		d := depts[i]
		repo.depts[d.ID] = &d
	}
	return repo
}

func (r *memDepartmentRepo) Create(_ context.Context, dept *domain.Department) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if dept.ID == "" {
		dept.ID = fmt.Sprintf("dept-%d", len(r.depts)+1)
	}
	dept.CreatedAt = time.Now()
	dept.UpdatedAt = dept.CreatedAt
	clone := *dept
	r.depts[dept.ID] = &clone
	return nil
}

func (r *memDepartmentRepo) Update(_ context.Context, dept *domain.Department) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.depts[dept.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *dept
	r.depts[dept.ID] = &clone
	return nil
}

func (r *memDepartmentRepo) GetByID(_ context.Context, id string) (*domain.Department, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	dept, ok := r.depts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *dept
	return &clone, nil
}

func (r *memDepartmentRepo) ListActive(ctx context.Context) ([]domain.Department, error) {
	return r.List(ctx, false)
}

func (r *memDepartmentRepo) List(_ context.Context, includeInactive bool) ([]domain.Department, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Department{}
	for _, dept := range r.depts {
		if !includeInactive && !dept.IsActive {
			continue
		}
		out = append(out, *dept)
	}
	return out, nil
}

type memCategoryRepo struct {
	mu   sync.Mutex
	cats map[string]*domain.Category
}

func newMemCategoryRepo(cats ...domain.Category) *memCategoryRepo {
	repo := &memCategoryRepo{cats: make(map[string]*domain.Category)}
	for i := range cats {
		c := cats[i]
		repo.cats[c.ID] = &c
	}
	return repo
}

func (r *memCategoryRepo) Create(_ context.Context, cat *domain.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cat.ID == "" {
		cat.ID = fmt.Sprintf("cat-%d", len(r.cats)+1)
	}
	clone := *cat
	r.cats[cat.ID] = &clone
	return nil
}

func (r *memCategoryRepo) Update(_ context.Context, cat *domain.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.cats[cat.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *cat
	r.cats[cat.ID] = &clone
	return nil
}

func (r *memCategoryRepo) GetByID(_ context.Context, id string) (*domain.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cat, ok := r.cats[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *cat
	return &clone, nil
}

func (r *memCategoryRepo) ListActive(ctx context.Context) ([]domain.Category, error) {
	return r.List(ctx, false)
}

func (r *memCategoryRepo) List(_ context.Context, includeInactive bool) ([]domain.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Category{}
	for _, cat := range r.cats {
		if !includeInactive && !cat.IsActive {
			continue
		}
		out = append(out, *cat)
	}
	return out, nil
}

type memPriorityRepo struct {
	mu   sync.Mutex
	pris map[string]*domain.Priority
}

func newMemPriorityRepo(pris ...domain.Priority) *memPriorityRepo {
	repo := &memPriorityRepo{pris: make(map[string]*domain.Priority)}
	for i := range pris {
		p := pris[i]
		repo.pris[p.ID] = &p
	}
	return repo
}

func (r *memPriorityRepo) Create(_ context.Context, pri *domain.Priority) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if pri.ID == "" {
		pri.ID = fmt.Sprintf("pri-%d", len(r.pris)+1)
	}
	clone := *pri
	r.pris[pri.ID] = &clone
	return nil
}

func (r *memPriorityRepo) Update(_ context.Context, pri *domain.Priority) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.pris[pri.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *pri
	r.pris[pri.ID] = &clone
	return nil
}

func (r *memPriorityRepo) GetByID(_ context.Context, id string) (*domain.Priority, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pri, ok := r.pris[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *pri
	return &clone, nil
}

func (r *memPriorityRepo) ListActive(ctx context.Context) ([]domain.Priority, error) {
	return r.List(ctx, false)
}

func (r *memPriorityRepo) List(_ context.Context, includeInactive bool) ([]domain.Priority, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Priority{}
	for _, pri := range r.pris {
		if !includeInactive && !pri.IsActive {
			continue
		}
		out = append(out, *pri)
	}
	return out, nil
}

type memHistoryRepo struct {
	mu      sync.Mutex
	seq     int
	entries map[string][]domain.TicketHistory
}

func newMemHistoryRepo() *memHistoryRepo {
	return &memHistoryRepo{entries: make(map[string][]domain.TicketHistory)}
}

func (r *memHistoryRepo) Create(_ context.Context, history *domain.TicketHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	history.ID = fmt.Sprintf("hist-%d", r.seq)
	history.CreatedAt = time.Now()
	r.entries[history.TicketID] = append(r.entries[history.TicketID], *history)
	return nil
}

func (r *memHistoryRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.TicketHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.TicketHistory{}, r.entries[ticketID]...), nil
}

type memStaffRepo struct {
	mu      sync.Mutex
	members map[string]*domain.StaffMember
}

func newMemStaffRepo(members ...domain.StaffMember) *memStaffRepo {
	repo := &memStaffRepo{members: make(map[string]*domain.StaffMember)}
	for i := range members {
		m := members[i]
		repo.members[m.ID] = &m
	}
	return repo
}

func (r *memStaffRepo) Create(_ context.Context, staff *domain.StaffMember) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if staff.ID == "" {
		staff.ID = fmt.Sprintf("staff-%d", len(r.members)+1)
	}
	clone := *staff
	r.members[staff.ID] = &clone
	return nil
}

func (r *memStaffRepo) Update(_ context.Context, staff *domain.StaffMember) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.members[staff.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *staff
	r.members[staff.ID] = &clone
	return nil
}

func (r *memStaffRepo) GetByID(_ context.Context, id string) (*domain.StaffMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	member, ok := r.members[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *member
	return &clone, nil
}

func (r *memStaffRepo) GetByEmail(_ context.Context, email string) (*domain.StaffMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, member := range r.members {
		if member.Email == email {
			clone := *member
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memStaffRepo) List(_ context.Context, filter repository.StaffFilter) ([]domain.StaffMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.StaffMember{}
	for _, member := range r.members {
		if filter.Role != nil && member.Role != *filter.Role {
			continue
		}
		if filter.DepartmentID != nil {
			if member.DepartmentID == nil || *member.DepartmentID != *filter.DepartmentID {
				continue
			}
		}
		out = append(out, *member)
	}
	return out, nil
}

type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) byType(eventType events.EventType) []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := []events.Event{}
	for _, event := range d.events {
		if event.Type == eventType {
			out = append(out, event)
		}
	}
	return out
}

func strPtr(s string) *string { return &s }
