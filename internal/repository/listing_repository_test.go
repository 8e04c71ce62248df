package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/elan-api/internal/models"
)

var listingRowColumns = []string{"id", "user_id", "title", "description", "category", "city", "experience_level", "salary", "contact_email", "contact_phone", "status", "views", "created_at", "updated_at", "seq"}

func listingRow(rows *sqlmock.Rows, id string, status models.ListingStatus, views int64, seq int64) *sqlmock.Rows {
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	return rows.AddRow(id, "u1", "Go Developer", "Remote backend position for a fintech", "job", "Bakı", nil, "2000 AZN", "hr@example.com", "+994501112233", string(status), views, now, now, seq)
}

func TestListingCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewListingRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO listings")).
		WillReturnRows(sqlmock.NewRows([]string{"seq"}).AddRow(int64(42)))

	listing := &models.Listing{UserID: "u1", Status: models.StatusPending, ListingContent: models.ListingContent{Title: "Go Developer", Category: models.CategoryJob}}
	require.NoError(t, repo.Create(context.Background(), listing))
	assert.NotEmpty(t, listing.ID)
	assert.Equal(t, int64(42), listing.Seq)
	assert.False(t, listing.CreatedAt.IsZero())
	assert.Equal(t, listing.CreatedAt, listing.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListingFindByID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewListingRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT "+listingColumns+" FROM listings WHERE id = $1 LIMIT 1")).
		WithArgs("l1").
		WillReturnRows(listingRow(sqlmock.NewRows(listingRowColumns), "l1", models.StatusApproved, 7, 1))

	listing, err := repo.FindByID(context.Background(), "l1")
	require.NoError(t, err)
	assert.Equal(t, "Go Developer", listing.Title)
	assert.Equal(t, models.CategoryJob, listing.Category)
	assert.Equal(t, int64(7), listing.Views)
	assert.Nil(t, listing.ExperienceLevel)
	require.NotNil(t, listing.Salary)
	assert.Equal(t, "2000 AZN", *listing.Salary)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListingFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewListingRepository(db)

	mock.ExpectQuery("FROM listings WHERE id").WithArgs("missing").WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestListingListFiltersAndOrders(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewListingRepository(db)

	rows := sqlmock.NewRows(listingRowColumns)
	listingRow(rows, "l2", models.StatusApproved, 0, 2)
	listingRow(rows, "l1", models.StatusApproved, 3, 1)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT "+listingColumns+" FROM listings WHERE status = $1 ORDER BY created_at DESC, seq DESC")).
		WithArgs("approved").
		WillReturnRows(rows)

	approved := models.StatusApproved
	listings, err := repo.List(context.Background(), models.ListingQuery{Status: &approved})
	require.NoError(t, err)
	require.Len(t, listings, 2)
	assert.Equal(t, "l2", listings[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListingListByOwner(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewListingRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM listings WHERE user_id = $1 ORDER BY")).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(listingRowColumns))

	owner := "u1"
	listings, err := repo.List(context.Background(), models.ListingQuery{UserID: &owner})
	require.NoError(t, err)
	assert.Empty(t, listings)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListingUpdateStatusConditional(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewListingRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE listings SET status = $2, updated_at = $3 WHERE id = $1 AND status = ANY($4)")).
		WithArgs("l1", "approved", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(listingRow(sqlmock.NewRows(listingRowColumns), "l1", models.StatusApproved, 0, 1))

	listing, err := repo.UpdateStatus(context.Background(), "l1", models.StatusApproved, []models.ListingStatus{models.StatusPending})
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, listing.Status)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE listings SET status")).
		WithArgs("l1", "approved", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(listingRowColumns))

	_, err = repo.UpdateStatus(context.Background(), "l1", models.StatusApproved, []models.ListingStatus{models.StatusPending})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListingUpdateContent(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewListingRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE listings SET title = $2")).
		WillReturnRows(listingRow(sqlmock.NewRows(listingRowColumns), "l1", models.StatusPending, 0, 1))

	listing, err := repo.UpdateContent(context.Background(), "l1", models.ListingContent{Title: "Go Developer"}, []models.ListingStatus{models.StatusPending, models.StatusApproved})
	require.NoError(t, err)
	assert.Equal(t, "l1", listing.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListingDeleteAndIncrement(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewListingRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM listings WHERE id = $1")).WithArgs("l1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM listings WHERE id = $1")).WithArgs("l1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE listings SET views = views + 1 WHERE id = $1")).WithArgs("l2").WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "l1"))
	assert.ErrorIs(t, repo.Delete(context.Background(), "l1"), sql.ErrNoRows)
	require.NoError(t, repo.IncrementViews(context.Background(), "l2"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
