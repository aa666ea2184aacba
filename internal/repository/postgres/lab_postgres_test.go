package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabPostgres_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewLabPostgres(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id", "name", "storage_used", "storage_limit", "created_at"}).
			AddRow("lab-1", "Chen Lab", int64(8_500_000), int64(10_000_000), time.Now())
		mock.ExpectQuery("SELECT (.+) FROM labs WHERE id = ?").
			WithArgs("lab-1").
			WillReturnRows(rows)

		lab, err := repo.FindByID(ctx, "lab-1")

		assert.NoError(t, err)
		require.NotNil(t, lab)
		assert.Equal(t, int64(8_500_000), lab.StorageUsed)
		assert.Equal(t, int64(10_000_000), lab.StorageLimit)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM labs WHERE id = ?").
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		lab, err := repo.FindByID(ctx, "missing")

		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, lab)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLabPostgres_AddUsage(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewLabPostgres(db)

	mock.ExpectQuery("UPDATE labs SET storage_used = storage_used").
		WithArgs("lab-1", int64(1_200_000)).
		WillReturnRows(sqlmock.NewRows([]string{"storage_used"}).AddRow(int64(1_200_000)))

	used, err := repo.AddUsage(context.Background(), "lab-1", 1_200_000)

	assert.NoError(t, err)
	assert.Equal(t, int64(1_200_000), used)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLabPostgres_SubtractUsage(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewLabPostgres(db)
	ctx := context.Background()

	t.Run("clean decrement", func(t *testing.T) {
		mock.ExpectQuery("UPDATE labs SET storage_used = GREATEST").
			WithArgs("lab-1", int64(500_000)).
			WillReturnRows(sqlmock.NewRows([]string{"storage_used", "prev"}).
				AddRow(int64(700_000), int64(1_200_000)))

		delta, err := repo.SubtractUsage(ctx, "lab-1", 500_000)

		assert.NoError(t, err)
		assert.Equal(t, int64(1_200_000), delta.Previous)
		assert.Equal(t, int64(700_000), delta.Current)
	})

	t.Run("clamped at zero", func(t *testing.T) {
		mock.ExpectQuery("UPDATE labs SET storage_used = GREATEST").
			WithArgs("lab-1", int64(500_000)).
			WillReturnRows(sqlmock.NewRows([]string{"storage_used", "prev"}).
				AddRow(int64(0), int64(100_000)))

		delta, err := repo.SubtractUsage(ctx, "lab-1", 500_000)

		assert.NoError(t, err)
		assert.Equal(t, int64(0), delta.Current)
		assert.Less(t, delta.Previous, int64(500_000))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLabPostgres_SetUsage(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewLabPostgres(db)

	mock.ExpectExec("UPDATE labs SET storage_used = ?").
		WithArgs("lab-1", int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.SetUsage(context.Background(), "lab-1", 42))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLabPostgres_ListIDs(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewLabPostgres(db)

	mock.ExpectQuery("SELECT id FROM labs").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("lab-1").AddRow("lab-2"))

	ids, err := repo.ListIDs(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, []string{"lab-1", "lab-2"}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}
