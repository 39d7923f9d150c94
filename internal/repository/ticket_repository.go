package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// TicketFilter captures listing and search parameters.
type TicketFilter struct {
	RequesterID  *string
	DepartmentID *string
	CategoryID   *string
	PriorityID   *string
	AssigneeID   *string
	Statuses     []domain.TicketStatus
	Source       *domain.TicketSource
	SearchTerm   *string
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
	UpdatedFrom  *time.Time
	UpdatedTo    *time.Time
	Limit        int
	Offset       int
}

// StatusCount is an aggregate row for analytics.
type StatusCount struct {
	Status domain.TicketStatus
	Count  int64
}

// LabelCount is a generic aggregate row keyed by a display label.
type LabelCount struct {
	Label string
	Count int64
}

// DayCount is a created-per-day aggregate row.
type DayCount struct {
	Day   time.Time
	Count int64
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	GetByExternalKey(ctx context.Context, key string) (*domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	CountByStatus(ctx context.Context, from, to time.Time) ([]StatusCount, error)
	CountByPriority(ctx context.Context, from, to time.Time) ([]LabelCount, error)
	CountByDepartment(ctx context.Context, from, to time.Time) ([]LabelCount, error)
	CountCreatedPerDay(ctx context.Context, from, to time.Time) ([]DayCount, error)
	AvgResolutionHours(ctx context.Context, from, to time.Time) (float64, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, external_key, requester_user_id, contact_email,
               department_id, department_text, category_id, category_text,
               priority_id, priority_text, assignee_staff_id, title, description,
               status, source, merged_into_id, tags, created_at, updated_at, closed_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (external_key, requester_user_id, contact_email,
            department_id, department_text, category_id, category_text,
            priority_id, priority_text, assignee_staff_id, title, description,
            status, source, tags)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.ExternalKey,
		ticket.RequesterID,
		ticket.ContactEmail,
		ticket.DepartmentID,
		ticket.DepartmentText,
		ticket.CategoryID,
		ticket.CategoryText,
		ticket.PriorityID,
		ticket.PriorityText,
		ticket.AssigneeID,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.Source,
		ticket.Tags,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET department_id=$1, department_text=$2, category_id=$3, category_text=$4,
            priority_id=$5, priority_text=$6, assignee_staff_id=$7, title=$8, description=$9,
            status=$10, merged_into_id=$11, tags=$12, closed_at=$13, updated_at=NOW()
        WHERE id=$14`
	cmd, err := r.pool.Exec(ctx, query,
		ticket.DepartmentID,
		ticket.DepartmentText,
		ticket.CategoryID,
		ticket.CategoryText,
		ticket.PriorityID,
		ticket.PriorityText,
		ticket.AssigneeID,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.MergedIntoID,
		ticket.Tags,
		ticket.ClosedAt,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE id=$1`, ticketColumns)
	return r.fetchSingle(ctx, query, id)
}

func (r *ticketRepository) GetByExternalKey(ctx context.Context, key string) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE external_key=$1`, ticketColumns)
	return r.fetchSingle(ctx, query, key)
}

func (r *ticketRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := scanTicket(r.pool.QueryRow(ctx, query, arg), &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	base := fmt.Sprintf(`SELECT %s FROM tickets`, ticketColumns)
	clauses := []string{"1=1"}
	args := []any{}

	if filter.RequesterID != nil {
		args = append(args, *filter.RequesterID)
		clauses = append(clauses, fmt.Sprintf("requester_user_id=$%d", len(args)))
	}
	if filter.DepartmentID != nil {
		args = append(args, *filter.DepartmentID)
		clauses = append(clauses, fmt.Sprintf("department_id=$%d", len(args)))
	}
	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		clauses = append(clauses, fmt.Sprintf("category_id=$%d", len(args)))
	}
	if filter.PriorityID != nil {
		args = append(args, *filter.PriorityID)
		clauses = append(clauses, fmt.Sprintf("priority_id=$%d", len(args)))
	}
	if filter.AssigneeID != nil {
		args = append(args, *filter.AssigneeID)
		clauses = append(clauses, fmt.Sprintf("assignee_staff_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.Source != nil {
		args = append(args, *filter.Source)
		clauses = append(clauses, fmt.Sprintf("source=$%d", len(args)))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	if filter.UpdatedFrom != nil {
		args = append(args, *filter.UpdatedFrom)
		clauses = append(clauses, fmt.Sprintf("updated_at >= $%d", len(args)))
	}
	if filter.UpdatedTo != nil {
		args = append(args, *filter.UpdatedTo)
		clauses = append(clauses, fmt.Sprintf("updated_at <= $%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(title) LIKE %s OR LOWER(description) LIKE %s OR LOWER(contact_email) LIKE %s)", placeholder, placeholder, placeholder))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY updated_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) CountByStatus(ctx context.Context, from, to time.Time) ([]StatusCount, error) {
	const query = `
        SELECT status, COUNT(*) FROM tickets
        WHERE created_at >= $1 AND created_at <= $2
        GROUP BY status`
	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []StatusCount
	for rows.Next() {
		var row StatusCount
		if err := rows.Scan(&row.Status, &row.Count); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func (r *ticketRepository) CountByPriority(ctx context.Context, from, to time.Time) ([]LabelCount, error) {
	const query = `
        SELECT COALESCE(p.name, NULLIF(t.priority_text, ''), 'unspecified'), COUNT(*)
        FROM tickets t LEFT JOIN priorities p ON p.id = t.priority_id
        WHERE t.created_at >= $1 AND t.created_at <= $2
        GROUP BY 1`
	return r.labelCounts(ctx, query, from, to)
}

func (r *ticketRepository) CountByDepartment(ctx context.Context, from, to time.Time) ([]LabelCount, error) {
	const query = `
        SELECT COALESCE(d.name, NULLIF(t.department_text, ''), 'unspecified'), COUNT(*)
        FROM tickets t LEFT JOIN departments d ON d.id = t.department_id
        WHERE t.created_at >= $1 AND t.created_at <= $2
        GROUP BY 1`
	return r.labelCounts(ctx, query, from, to)
}

func (r *ticketRepository) labelCounts(ctx context.Context, query string, from, to time.Time) ([]LabelCount, error) {
	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []LabelCount
	for rows.Next() {
		var row LabelCount
		if err := rows.Scan(&row.Label, &row.Count); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func (r *ticketRepository) CountCreatedPerDay(ctx context.Context, from, to time.Time) ([]DayCount, error) {
	const query = `
        SELECT DATE_TRUNC('day', created_at) AS day, COUNT(*)
        FROM tickets
        WHERE created_at >= $1 AND created_at <= $2
        GROUP BY day ORDER BY day ASC`
	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []DayCount
	for rows.Next() {
		var row DayCount
		if err := rows.Scan(&row.Day, &row.Count); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func (r *ticketRepository) AvgResolutionHours(ctx context.Context, from, to time.Time) (float64, error) {
	const query = `
        SELECT COALESCE(AVG(EXTRACT(EPOCH FROM (closed_at - created_at)) / 3600.0), 0)
        FROM tickets
        WHERE closed_at IS NOT NULL AND created_at >= $1 AND created_at <= $2`
	var avg float64
	if err := r.pool.QueryRow(ctx, query, from, to).Scan(&avg); err != nil {
		return 0, err
	}
	return avg, nil
}

type ticketScanner interface {
	Scan(dest ...any) error
}

func scanTicket(row ticketScanner, ticket *domain.Ticket) error {
	return row.Scan(
		&ticket.ID,
		&ticket.ExternalKey,
		&ticket.RequesterID,
		&ticket.ContactEmail,
		&ticket.DepartmentID,
		&ticket.DepartmentText,
		&ticket.CategoryID,
		&ticket.CategoryText,
		&ticket.PriorityID,
		&ticket.PriorityText,
		&ticket.AssigneeID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Status,
		&ticket.Source,
		&ticket.MergedIntoID,
		&ticket.Tags,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.ClosedAt,
	)
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := scanTicket(rows, &ticket); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
