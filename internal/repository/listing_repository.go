package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/elan-api/internal/models"
)

const listingColumns = `id, user_id, title, description, category, city, experience_level, salary, contact_email, contact_phone, status, views, created_at, updated_at, seq`

// ListingRepository persists listings in PostgreSQL.
type ListingRepository struct {
	db *sqlx.DB
}

// NewListingRepository creates a new instance of ListingRepository.
func NewListingRepository(db *sqlx.DB) *ListingRepository {
	return &ListingRepository{db: db}
}

// Create inserts a listing and fills in its id, timestamps and arrival sequence.
func (r *ListingRepository) Create(ctx context.Context, listing *models.Listing) error {
	if listing.ID == "" {
		listing.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if listing.CreatedAt.IsZero() {
		listing.CreatedAt = now
	}
	listing.UpdatedAt = listing.CreatedAt

	const query = `INSERT INTO listings (id, user_id, title, description, category, city, experience_level, salary, contact_email, contact_phone, status, views, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14) RETURNING seq`
	err := r.db.QueryRowxContext(ctx, query,
		listing.ID, listing.UserID, listing.Title, listing.Description, string(listing.Category), listing.City,
		listing.ExperienceLevel, listing.Salary, listing.ContactEmail, listing.ContactPhone,
		string(listing.Status), listing.Views, listing.CreatedAt, listing.UpdatedAt,
	).Scan(&listing.Seq)
	if err != nil {
		return fmt.Errorf("create listing: %w", err)
	}
	return nil
}

// FindByID returns a listing by identifier or sql.ErrNoRows.
func (r *ListingRepository) FindByID(ctx context.Context, id string) (*models.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE id = $1 LIMIT 1`
	var listing models.Listing
	if err := r.db.GetContext(ctx, &listing, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find listing by id: %w", err)
	}
	return &listing, nil
}

// List returns every listing matching the query, newest first.
func (r *ListingRepository) List(ctx context.Context, q models.ListingQuery) ([]models.Listing, error) {
	var conditions []string
	var args []interface{}

	if q.Status != nil {
		args = append(args, string(*q.Status))
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if q.UserID != nil {
		args = append(args, *q.UserID)
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", len(args)))
	}

	query := `SELECT ` + listingColumns + ` FROM listings`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC, seq DESC"

	listings := []models.Listing{}
	if err := r.db.SelectContext(ctx, &listings, query, args...); err != nil {
		return nil, fmt.Errorf("list listings: %w", err)
	}
	return listings, nil
}

// UpdateContent replaces the editable fields while the listing is in one of the allowed states.
// sql.ErrNoRows means the listing is missing or not in an allowed state.
func (r *ListingRepository) UpdateContent(ctx context.Context, id string, content models.ListingContent, allowed []models.ListingStatus) (*models.Listing, error) {
	query := `UPDATE listings SET title = $2, description = $3, category = $4, city = $5, experience_level = $6, salary = $7, contact_email = $8, contact_phone = $9, updated_at = $10 WHERE id = $1 AND status = ANY($11) RETURNING ` + listingColumns
	var listing models.Listing
	err := r.db.GetContext(ctx, &listing, query,
		id, content.Title, content.Description, string(content.Category), content.City,
		content.ExperienceLevel, content.Salary, content.ContactEmail, content.ContactPhone,
		time.Now().UTC(), statusArray(allowed),
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("update listing content: %w", err)
	}
	return &listing, nil
}

// UpdateStatus moves a listing to status `to` only if its current status is one of `from`.
// sql.ErrNoRows means nothing matched; the caller re-reads to find out why.
func (r *ListingRepository) UpdateStatus(ctx context.Context, id string, to models.ListingStatus, from []models.ListingStatus) (*models.Listing, error) {
	query := `UPDATE listings SET status = $2, updated_at = $3 WHERE id = $1 AND status = ANY($4) RETURNING ` + listingColumns
	var listing models.Listing
	if err := r.db.GetContext(ctx, &listing, query, id, string(to), time.Now().UTC(), statusArray(from)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("update listing status: %w", err)
	}
	return &listing, nil
}

// Delete removes a listing permanently.
func (r *ListingRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM listings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete listing: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete listing: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// IncrementViews adds one view in a single statement.
func (r *ListingRepository) IncrementViews(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE listings SET views = views + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("increment listing views: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("increment listing views: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func statusArray(statuses []models.ListingStatus) interface{} {
	values := make([]string, len(statuses))
	for i, s := range statuses {
		values[i] = string(s)
	}
	return pq.Array(values)
}
