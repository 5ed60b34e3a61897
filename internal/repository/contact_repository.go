package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/callbook-service/internal/domain"
)

// ContactFilter captures list parameters for one owner.
type ContactFilter struct {
	UserID string
	Search string
	Limit  int
	Offset int
}

// ContactRepository encapsulates contact persistence. Every operation is
// scoped to the owning user.
type ContactRepository interface {
	Create(ctx context.Context, contact *domain.Contact) error
	Update(ctx context.Context, contact *domain.Contact) error
	Delete(ctx context.Context, userID, id string) error
	GetByID(ctx context.Context, userID, id string) (*domain.Contact, error)
	FindByPhone(ctx context.Context, userID, phoneNumber string) (*domain.Contact, error)
	List(ctx context.Context, filter ContactFilter) ([]domain.Contact, int, error)
}

type contactRepository struct {
	db DB
}

// NewContactRepository instantiates repository.
func NewContactRepository(db DB) ContactRepository {
	return &contactRepository{db: db}
}

const contactColumns = `id, user_id, name, phone_number, email, notes, created_at, updated_at`

func (r *contactRepository) Create(ctx context.Context, contact *domain.Contact) error {
	const query = `
        INSERT INTO contacts (id, user_id, name, phone_number, email, notes)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING created_at, updated_at`

	id := uuid.NewString()
	err := r.db.QueryRow(ctx, query,
		id,
		contact.UserID,
		contact.Name,
		contact.PhoneNumber,
		contact.Email,
		contact.Notes,
	).Scan(&contact.CreatedAt, &contact.UpdatedAt)
	if err != nil {
		return mapWriteError(err)
	}
	contact.ID = id
	return nil
}

func (r *contactRepository) Update(ctx context.Context, contact *domain.Contact) error {
	const query = `
        UPDATE contacts SET name=$1, phone_number=$2, email=$3, notes=$4, updated_at=NOW()
        WHERE id=$5 AND user_id=$6
        RETURNING created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		contact.Name,
		contact.PhoneNumber,
		contact.Email,
		contact.Notes,
		contact.ID,
		contact.UserID,
	).Scan(&contact.CreatedAt, &contact.UpdatedAt)
	if err != nil {
		return mapWriteError(err)
	}
	return nil
}

func (r *contactRepository) Delete(ctx context.Context, userID, id string) error {
	const query = `DELETE FROM contacts WHERE id=$1 AND user_id=$2`

	cmd, err := r.db.Exec(ctx, query, id, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *contactRepository) GetByID(ctx context.Context, userID, id string) (*domain.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE id=$1 AND user_id=$2`
	return r.fetchSingle(ctx, query, id, userID)
}

func (r *contactRepository) FindByPhone(ctx context.Context, userID, phoneNumber string) (*domain.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE user_id=$1 AND phone_number=$2`
	return r.fetchSingle(ctx, query, userID, phoneNumber)
}

func (r *contactRepository) List(ctx context.Context, filter ContactFilter) ([]domain.Contact, int, error) {
	clauses := []string{"user_id=$1"}
	args := []any{filter.UserID}

	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, containsPattern(search))
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(name ILIKE %[1]s OR phone_number ILIKE %[1]s OR email ILIKE %[1]s)", placeholder))
	}
	where := strings.Join(clauses, " AND ")

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM contacts WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM contacts WHERE %s ORDER BY name ASC, id ASC LIMIT %d OFFSET %d`,
		contactColumns, where, filter.Limit, filter.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	contacts, err := scanContacts(rows)
	if err != nil {
		return nil, 0, err
	}
	return contacts, total, nil
}

func (r *contactRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.Contact, error) {
	var contact domain.Contact
	if err := r.db.QueryRow(ctx, query, args...).Scan(
		&contact.ID,
		&contact.UserID,
		&contact.Name,
		&contact.PhoneNumber,
		&contact.Email,
		&contact.Notes,
		&contact.CreatedAt,
		&contact.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &contact, nil
}

func scanContacts(rows pgx.Rows) ([]domain.Contact, error) {
	result := []domain.Contact{}
	for rows.Next() {
		var contact domain.Contact
		if err := rows.Scan(
			&contact.ID,
			&contact.UserID,
			&contact.Name,
			&contact.PhoneNumber,
			&contact.Email,
			&contact.Notes,
			&contact.CreatedAt,
			&contact.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, contact)
	}
	return result, rows.Err()
}
