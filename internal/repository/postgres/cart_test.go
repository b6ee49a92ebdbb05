package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/collections/pkg/database"
	apperrors "github.com/utafrali/collections/pkg/errors"
)

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

const (
	testUserID     = "7f8b2d34-9c1e-4a5f-b6d7-0e1f2a3b4c5d"
	testVariantID  = "a1b2c3d4-e5f6-4789-a012-3456789abcde"
	testVariantID2 = "b2c3d4e5-f6a7-4890-b123-456789abcdef"
)

func setupCartRepo(t *testing.T) (*CartRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	repo := NewCartRepository(mock)
	return repo, mock
}

func cartColumns() []string {
	return []string{"user_id", "variant_id", "quantity", "created_at", "updated_at"}
}

func cartRow(userID, variantID string, qty int) *pgxmock.Rows {
	now := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	return pgxmock.NewRows(cartColumns()).
		AddRow(userID, variantID, qty, now, now)
}

// ---------------------------------------------------------------------------
// UpsertItem
// ---------------------------------------------------------------------------

func TestCartRepository_UpsertItem_Insert(t *testing.T) {
	repo, mock := setupCartRepo(t)
	defer mock.Close()

	mock.ExpectQuery("INSERT INTO cart_items").
		WithArgs(testUserID, testVariantID, 2).
		WillReturnRows(cartRow(testUserID, testVariantID, 2))

	item, err := repo.UpsertItem(context.Background(), testUserID, testVariantID, 2)
	require.NoError(t, err)
	assert.Equal(t, testUserID, item.UserID)
	assert.Equal(t, testVariantID, item.VariantID)
	assert.Equal(t, 2, item.Quantity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartRepository_UpsertItem_IncrementsExisting(t *testing.T) {
	repo, mock := setupCartRepo(t)
	defer mock.Close()

	// The statement accumulates: inserting delta 3 over an existing quantity
	// of 2 yields 5 via ON CONFLICT DO UPDATE.
	mock.ExpectQuery("INSERT INTO cart_items").
		WithArgs(testUserID, testVariantID, 3).
		WillReturnRows(cartRow(testUserID, testVariantID, 5))

	item, err := repo.UpsertItem(context.Background(), testUserID, testVariantID, 3)
	require.NoError(t, err)
	assert.Equal(t, 5, item.Quantity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartRepository_UpsertItem_QueryError(t *testing.T) {
	repo, mock := setupCartRepo(t)
	defer mock.Close()

	mock.ExpectQuery("INSERT INTO cart_items").
		WithArgs(testUserID, testVariantID, 1).
		WillReturnError(errors.New("connection refused"))

	item, err := repo.UpsertItem(context.Background(), testUserID, testVariantID, 1)
	assert.Nil(t, item)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "upsert cart item")
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ---------------------------------------------------------------------------
// SetQuantity
// ---------------------------------------------------------------------------

func TestCartRepository_SetQuantity_Success(t *testing.T) {
	repo, mock := setupCartRepo(t)
	defer mock.Close()

	mock.ExpectQuery("UPDATE cart_items").
		WithArgs(testUserID, testVariantID, 7).
		WillReturnRows(cartRow(testUserID, testVariantID, 7))

	item, err := repo.SetQuantity(context.Background(), testUserID, testVariantID, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, item.Quantity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartRepository_SetQuantity_NotFound(t *testing.T) {
	repo, mock := setupCartRepo(t)
	defer mock.Close()

	mock.ExpectQuery("UPDATE cart_items").
		WithArgs(testUserID, testVariantID, 7).
		WillReturnError(pgx.ErrNoRows)

	item, err := repo.SetQuantity(context.Background(), testUserID, testVariantID, 7)
	assert.Nil(t, item)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ---------------------------------------------------------------------------
// ListByUser
// ---------------------------------------------------------------------------

func TestCartRepository_ListByUser_Success(t *testing.T) {
	repo, mock := setupCartRepo(t)
	defer mock.Close()

	now := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	rows := pgxmock.NewRows(cartColumns()).
		AddRow(testUserID, testVariantID, 2, now, now).
		AddRow(testUserID, testVariantID2, 1, now, now)

	mock.ExpectQuery("SELECT .+ FROM cart_items").
		WithArgs(testUserID).
		WillReturnRows(rows)

	items, err := repo.ListByUser(context.Background(), testUserID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, testVariantID, items[0].VariantID)
	assert.Equal(t, testVariantID2, items[1].VariantID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartRepository_ListByUser_Empty(t *testing.T) {
	repo, mock := setupCartRepo(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT .+ FROM cart_items").
		WithArgs(testUserID).
		WillReturnRows(pgxmock.NewRows(cartColumns()))

	items, err := repo.ListByUser(context.Background(), testUserID)
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ---------------------------------------------------------------------------
// Remove / Clear
// ---------------------------------------------------------------------------

func TestCartRepository_Remove_Success(t *testing.T) {
	repo, mock := setupCartRepo(t)
	defer mock.Close()

	mock.ExpectExec("DELETE FROM cart_items").
		WithArgs(testUserID, testVariantID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	err := repo.Remove(context.Background(), testUserID, testVariantID)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartRepository_Remove_NotFound(t *testing.T) {
	repo, mock := setupCartRepo(t)
	defer mock.Close()

	mock.ExpectExec("DELETE FROM cart_items").
		WithArgs(testUserID, testVariantID).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.Remove(context.Background(), testUserID, testVariantID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartRepository_Clear_ReturnsCount(t *testing.T) {
	repo, mock := setupCartRepo(t)
	defer mock.Close()

	mock.ExpectExec("DELETE FROM cart_items").
		WithArgs(testUserID).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	count, err := repo.Clear(context.Background(), testUserID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartRepository_Clear_EmptyCart(t *testing.T) {
	repo, mock := setupCartRepo(t)
	defer mock.Close()

	mock.ExpectExec("DELETE FROM cart_items").
		WithArgs(testUserID).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	count, err := repo.Clear(context.Background(), testUserID)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
