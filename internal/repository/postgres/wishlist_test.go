package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/collections/pkg/database"
	apperrors "github.com/utafrali/collections/pkg/errors"
)

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

const testShareID = "wl_0123456789abcdef0123456789abcdef"

func setupWishlistRepo(t *testing.T) (*WishlistRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	repo := NewWishlistRepository(mock)
	return repo, mock
}

func wishlistColumns() []string {
	return []string{
		"id", "user_id", "variant_id", "is_shared", "share_id",
		"share_expires_at", "created_at", "updated_at",
	}
}

func wishlistRow(id, userID, variantID string, shareID *string, expiresAt *time.Time) *pgxmock.Rows {
	now := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	return pgxmock.NewRows(wishlistColumns()).
		AddRow(id, userID, variantID, shareID != nil, shareID, expiresAt, now, now)
}

// ---------------------------------------------------------------------------
// AddItem
// ---------------------------------------------------------------------------

func TestWishlistRepository_AddItem_Success(t *testing.T) {
	repo, mock := setupWishlistRepo(t)
	defer mock.Close()

	mock.ExpectQuery("INSERT INTO wishlist_items").
		WithArgs(pgxmock.AnyArg(), testUserID, testVariantID).
		WillReturnRows(wishlistRow("item-1", testUserID, testVariantID, nil, nil))

	item, err := repo.AddItem(context.Background(), testUserID, testVariantID)
	require.NoError(t, err)
	assert.Equal(t, testUserID, item.UserID)
	assert.Equal(t, testVariantID, item.VariantID)
	assert.False(t, item.IsShared)
	assert.Nil(t, item.ShareID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWishlistRepository_AddItem_InheritsLiveShare(t *testing.T) {
	repo, mock := setupWishlistRepo(t)
	defer mock.Close()

	shareID := testShareID
	expires := time.Date(2026, 2, 13, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery("INSERT INTO wishlist_items").
		WithArgs(pgxmock.AnyArg(), testUserID, testVariantID2).
		WillReturnRows(wishlistRow("item-2", testUserID, testVariantID2, &shareID, &expires))

	item, err := repo.AddItem(context.Background(), testUserID, testVariantID2)
	require.NoError(t, err)
	assert.True(t, item.IsShared)
	require.NotNil(t, item.ShareID)
	assert.Equal(t, testShareID, *item.ShareID)
	require.NotNil(t, item.ShareExpiresAt)
	assert.Equal(t, expires, *item.ShareExpiresAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWishlistRepository_AddItem_Duplicate(t *testing.T) {
	repo, mock := setupWishlistRepo(t)
	defer mock.Close()

	mock.ExpectQuery("INSERT INTO wishlist_items").
		WithArgs(pgxmock.AnyArg(), testUserID, testVariantID).
		WillReturnError(errors.New("ERROR: duplicate key value violates unique constraint (SQLSTATE 23505)"))

	item, err := repo.AddItem(context.Background(), testUserID, testVariantID)
	assert.Nil(t, item)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ---------------------------------------------------------------------------
// IssueShare
// ---------------------------------------------------------------------------

func TestWishlistRepository_IssueShare_NewToken(t *testing.T) {
	repo, mock := setupWishlistRepo(t)
	defer mock.Close()

	expiresAt := time.Date(2026, 2, 13, 9, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT share_id FROM wishlist_items WHERE user_id = .+ FOR UPDATE").
		WithArgs(testUserID).
		WillReturnRows(pgxmock.NewRows([]string{"share_id"}).AddRow(nil).AddRow(nil))
	mock.ExpectExec("UPDATE wishlist_items").
		WithArgs(testUserID, testShareID, expiresAt).
		WillReturnResult(pgxmock.NewResult("UPDATE", 2))
	mock.ExpectCommit()

	link, err := repo.IssueShare(context.Background(), testUserID, testShareID, expiresAt, false)
	require.NoError(t, err)
	assert.Equal(t, testShareID, link.ShareID)
	assert.Equal(t, expiresAt, link.ExpiresAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWishlistRepository_IssueShare_ReusesExistingToken(t *testing.T) {
	repo, mock := setupWishlistRepo(t)
	defer mock.Close()

	existing := "wl_feedfacefeedfacefeedfacefeedface"
	expiresAt := time.Date(2026, 2, 13, 9, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT share_id FROM wishlist_items WHERE user_id = .+ FOR UPDATE").
		WithArgs(testUserID).
		WillReturnRows(pgxmock.NewRows([]string{"share_id"}).AddRow(&existing))
	mock.ExpectExec("UPDATE wishlist_items").
		WithArgs(testUserID, existing, expiresAt).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	link, err := repo.IssueShare(context.Background(), testUserID, testShareID, expiresAt, false)
	require.NoError(t, err)
	assert.Equal(t, existing, link.ShareID, "existing token should be reused without force")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWishlistRepository_IssueShare_ForceReplacesToken(t *testing.T) {
	repo, mock := setupWishlistRepo(t)
	defer mock.Close()

	existing := "wl_feedfacefeedfacefeedfacefeedface"
	expiresAt := time.Date(2026, 2, 13, 9, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT share_id FROM wishlist_items WHERE user_id = .+ FOR UPDATE").
		WithArgs(testUserID).
		WillReturnRows(pgxmock.NewRows([]string{"share_id"}).AddRow(&existing))
	mock.ExpectExec("UPDATE wishlist_items").
		WithArgs(testUserID, testShareID, expiresAt).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	link, err := repo.IssueShare(context.Background(), testUserID, testShareID, expiresAt, true)
	require.NoError(t, err)
	assert.Equal(t, testShareID, link.ShareID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWishlistRepository_IssueShare_EmptyWishlist(t *testing.T) {
	repo, mock := setupWishlistRepo(t)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT share_id FROM wishlist_items WHERE user_id = .+ FOR UPDATE").
		WithArgs(testUserID).
		WillReturnRows(pgxmock.NewRows([]string{"share_id"}))
	mock.ExpectRollback()

	link, err := repo.IssueShare(context.Background(), testUserID, testShareID, time.Now(), false)
	assert.Nil(t, link)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWishlistRepository_IssueShare_UpdateErrorRollsBack(t *testing.T) {
	repo, mock := setupWishlistRepo(t)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT share_id FROM wishlist_items WHERE user_id = .+ FOR UPDATE").
		WithArgs(testUserID).
		WillReturnRows(pgxmock.NewRows([]string{"share_id"}).AddRow(nil))
	mock.ExpectExec("UPDATE wishlist_items").
		WithArgs(testUserID, testShareID, pgxmock.AnyArg()).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	link, err := repo.IssueShare(context.Background(), testUserID, testShareID, time.Now(), false)
	assert.Nil(t, link)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "apply share metadata")
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ---------------------------------------------------------------------------
// RevokeShare
// ---------------------------------------------------------------------------

func TestWishlistRepository_RevokeShare_Success(t *testing.T) {
	repo, mock := setupWishlistRepo(t)
	defer mock.Close()

	mock.ExpectExec("UPDATE wishlist_items").
		WithArgs(testUserID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 2))

	err := repo.RevokeShare(context.Background(), testUserID)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWishlistRepository_RevokeShare_AlreadyPrivate(t *testing.T) {
	repo, mock := setupWishlistRepo(t)
	defer mock.Close()

	mock.ExpectExec("UPDATE wishlist_items").
		WithArgs(testUserID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	// Revoking a private collection succeeds silently.
	err := repo.RevokeShare(context.Background(), testUserID)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ---------------------------------------------------------------------------
// GetByShareID
// ---------------------------------------------------------------------------

func TestWishlistRepository_GetByShareID_Success(t *testing.T) {
	repo, mock := setupWishlistRepo(t)
	defer mock.Close()

	shareID := testShareID
	expires := time.Date(2026, 2, 13, 9, 0, 0, 0, time.UTC)
	now := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)

	rows := pgxmock.NewRows(wishlistColumns()).
		AddRow("item-1", testUserID, testVariantID, true, &shareID, &expires, now, now).
		AddRow("item-2", testUserID, testVariantID2, true, &shareID, &expires, now, now)

	mock.ExpectQuery("SELECT .+ FROM wishlist_items").
		WithArgs(testShareID).
		WillReturnRows(rows)

	items, err := repo.GetByShareID(context.Background(), testShareID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, testUserID, items[0].UserID)
	assert.Equal(t, testVariantID2, items[1].VariantID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWishlistRepository_GetByShareID_NotFound(t *testing.T) {
	repo, mock := setupWishlistRepo(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT .+ FROM wishlist_items").
		WithArgs("wl_unknown").
		WillReturnRows(pgxmock.NewRows(wishlistColumns()))

	items, err := repo.GetByShareID(context.Background(), "wl_unknown")
	assert.Nil(t, items)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ---------------------------------------------------------------------------
// Remove / Clear
// ---------------------------------------------------------------------------

func TestWishlistRepository_Remove_NotFound(t *testing.T) {
	repo, mock := setupWishlistRepo(t)
	defer mock.Close()

	mock.ExpectExec("DELETE FROM wishlist_items").
		WithArgs(testUserID, testVariantID).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.Remove(context.Background(), testUserID, testVariantID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWishlistRepository_Clear_ReturnsCount(t *testing.T) {
	repo, mock := setupWishlistRepo(t)
	defer mock.Close()

	mock.ExpectExec("DELETE FROM wishlist_items").
		WithArgs(testUserID).
		WillReturnResult(pgxmock.NewResult("DELETE", 4))

	count, err := repo.Clear(context.Background(), testUserID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
