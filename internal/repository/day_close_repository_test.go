package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-recruit-api/internal/models"
)

func TestDayCloseRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDayCloseRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO day_close_requests")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	request := &models.DayCloseRequest{
		UserID: "staff-1",
		Date:   time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		Status: models.DayCloseStatusPending,
	}
	require.NoError(t, repo.Create(context.Background(), request))
	assert.NotEmpty(t, request.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDayCloseRepositoryCreatePendingConflict(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDayCloseRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO day_close_requests")).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "day_close_requests_user_date_pending_idx"})

	request := &models.DayCloseRequest{
		UserID: "staff-1",
		Date:   time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		Status: models.DayCloseStatusPending,
	}
	err := repo.Create(context.Background(), request)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already pending")
}

func TestDayCloseRepositoryResolvePending(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDayCloseRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE day_close_requests")).
		WithArgs("req-1", models.DayCloseStatusApproved, "manager-1", sqlmock.AnyArg(), nil, nil, models.DayCloseStatusPending).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := repo.Resolve(context.Background(), "req-1", models.DayCloseStatusApproved, "manager-1", nil, nil)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDayCloseRepositoryResolveNonPending(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDayCloseRepository(db)

	// The status guard in the WHERE clause leaves resolved rows untouched.
	mock.ExpectExec(regexp.QuoteMeta("UPDATE day_close_requests")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.Resolve(context.Background(), "req-1", models.DayCloseStatusRejected, "manager-1", nil, nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDayCloseRepositoryListPendingByDate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDayCloseRepository(db)

	rows := sqlmock.NewRows([]string{"id", "user_id", "status"}).
		AddRow("req-1", "staff-1", "pending").
		AddRow("req-2", "staff-2", "pending")

	mock.ExpectQuery(regexp.QuoteMeta("SELECT")).
		WithArgs("2026-03-02", models.DayCloseStatusPending).
		WillReturnRows(rows)

	requests, err := repo.ListPendingByDate(context.Background(), time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, requests, 2)
	assert.Equal(t, models.DayCloseStatusPending, requests[0].Status)
}
