package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/callbook-service/internal/domain"
)

// CallFilter captures history query parameters.
type CallFilter struct {
	UserID string
	Status *domain.CallStatus
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

// CallRepository encapsulates call record persistence.
type CallRepository interface {
	Create(ctx context.Context, call *domain.Call) error
	Update(ctx context.Context, call *domain.Call) error
	GetByCallSID(ctx context.Context, callSID string) (*domain.Call, error)
	List(ctx context.Context, filter CallFilter) ([]domain.Call, int, error)
}

type callRepository struct {
	db DB
}

// NewCallRepository instantiates repository.
func NewCallRepository(db DB) CallRepository {
	return &callRepository{db: db}
}

const callColumns = `id, user_id, phone_number, call_sid, status, start_time, end_time, duration, created_at, updated_at`

func (r *callRepository) Create(ctx context.Context, call *domain.Call) error {
	const query = `
        INSERT INTO calls (id, user_id, phone_number, call_sid, status, start_time)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING created_at, updated_at`

	id := uuid.NewString()
	if call.StartTime.IsZero() {
		call.StartTime = time.Now().UTC()
	}
	err := r.db.QueryRow(ctx, query,
		id,
		call.UserID,
		call.PhoneNumber,
		call.CallSID,
		call.Status,
		call.StartTime,
	).Scan(&call.CreatedAt, &call.UpdatedAt)
	if err != nil {
		return mapWriteError(err)
	}
	call.ID = id
	return nil
}

func (r *callRepository) Update(ctx context.Context, call *domain.Call) error {
	const query = `
        UPDATE calls SET status=$1, end_time=$2, duration=$3, updated_at=NOW()
        WHERE id=$4`

	cmd, err := r.db.Exec(ctx, query,
		call.Status,
		call.EndTime,
		call.Duration,
		call.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *callRepository) GetByCallSID(ctx context.Context, callSID string) (*domain.Call, error) {
	query := `SELECT ` + callColumns + ` FROM calls WHERE call_sid=$1 LIMIT 1`

	var call domain.Call
	if err := r.db.QueryRow(ctx, query, callSID).Scan(callScanTargets(&call)...); err != nil {
		return nil, err
	}
	return &call, nil
}

func (r *callRepository) List(ctx context.Context, filter CallFilter) ([]domain.Call, int, error) {
	clauses := []string{"user_id=$1"}
	args := []any{filter.UserID}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		clauses = append(clauses, fmt.Sprintf("start_time >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		clauses = append(clauses, fmt.Sprintf("start_time <= $%d", len(args)))
	}
	where := strings.Join(clauses, " AND ")

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM calls WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM calls WHERE %s ORDER BY start_time DESC, id ASC LIMIT %d OFFSET %d`,
		callColumns, where, filter.Limit, filter.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	calls := []domain.Call{}
	for rows.Next() {
		var call domain.Call
		if err := rows.Scan(callScanTargets(&call)...); err != nil {
			return nil, 0, err
		}
		calls = append(calls, call)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return calls, total, nil
}

func callScanTargets(call *domain.Call) []any {
	return []any{
		&call.ID,
		&call.UserID,
		&call.PhoneNumber,
		&call.CallSID,
		&call.Status,
		&call.StartTime,
		&call.EndTime,
		&call.Duration,
		&call.CreatedAt,
		&call.UpdatedAt,
	}
}
