package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-recruit-api/internal/models"
	appErrors "github.com/noah-isme/sma-recruit-api/pkg/errors"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	cleanup := func() {
		_ = sqlxDB.Close()
		db.Close()
	}
	return sqlxDB, mock, cleanup
}

func TestCandidateRepositoryCreateWithoutMSPCode(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCandidateRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO candidates")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	candidate := &models.Candidate{
		FirstName: "Asha",
		Email:     "asha@example.com",
		Phone:     "+919876543210",
		ProgramID: "prog-1",
		Status:    models.CandidateStatusActive,
	}
	require.NoError(t, repo.Create(context.Background(), candidate))
	assert.NotEmpty(t, candidate.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

// vacancyLockPattern pins the vacancy check's statement shape: Postgres
// rejects FOR SHARE combined with an aggregate, so the lock must sit in the
// inner select with the count wrapped around it.
const vacancyLockPattern = `SELECT COUNT\(\*\) FROM \(\s*SELECT 1 FROM msp_assignments[\s\S]+FOR SHARE\) AS held`

func TestCandidateRepositoryCreateWithMSPCodeLocksVacancy(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCandidateRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(vacancyLockPattern).
		WithArgs("msp-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO candidates")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	code := "msp-1"
	candidate := &models.Candidate{
		FirstName: "Asha",
		Email:     "asha@example.com",
		Phone:     "+919876543210",
		ProgramID: "prog-1",
		MSPCodeID: &code,
		Status:    models.CandidateStatusActive,
	}
	require.NoError(t, repo.Create(context.Background(), candidate))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCandidateRepositoryCreateOccupiedCodeAborts(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCandidateRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(vacancyLockPattern).
		WithArgs("msp-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	code := "msp-1"
	candidate := &models.Candidate{
		FirstName: "Asha",
		Email:     "asha@example.com",
		Phone:     "+919876543210",
		ProgramID: "prog-1",
		MSPCodeID: &code,
		Status:    models.CandidateStatusActive,
	}
	err := repo.Create(context.Background(), candidate)
	assert.ErrorIs(t, err, appErrors.ErrMSPNotVacant)
}

func TestCandidateRepositoryUniqueViolationMapsToTaken(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCandidateRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE candidates SET")).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "candidates_msp_code_id_key"})

	code := "msp-1"
	candidate := &models.Candidate{
		ID:        "cand-1",
		FirstName: "Asha",
		Email:     "asha@example.com",
		Phone:     "+919876543210",
		ProgramID: "prog-1",
		MSPCodeID: &code,
		Status:    models.CandidateStatusActive,
	}
	err := repo.Update(context.Background(), candidate)
	assert.ErrorIs(t, err, appErrors.ErrMSPTaken)
}

func TestCandidateRepositoryOtherUniqueViolationIsConflict(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCandidateRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO candidates")).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "candidates_email_key", Detail: "Key (email) already exists."})

	candidate := &models.Candidate{
		FirstName: "Asha",
		Email:     "asha@example.com",
		Phone:     "+919876543210",
		ProgramID: "prog-1",
		Status:    models.CandidateStatusActive,
	}
	err := repo.Create(context.Background(), candidate)
	require.Error(t, err)
	assert.NotErrorIs(t, err, appErrors.ErrMSPTaken)
	assert.Contains(t, err.Error(), "already exists")
}

func TestCandidateRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCandidateRepository(db)

	rows := sqlmock.NewRows([]string{"id", "first_name", "email", "phone", "program_id", "status", "program_name"}).
		AddRow("cand-1", "Asha", "asha@example.com", "+919876543210", "prog-1", "Active", "STEM Fellowship")

	mock.ExpectQuery(regexp.QuoteMeta("SELECT")).
		WithArgs("prog-1", models.CandidateStatusActive).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs("prog-1", models.CandidateStatusActive).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	candidates, total, err := repo.List(context.Background(), models.CandidateFilter{ProgramID: "prog-1", ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, "cand-1", candidates[0].ID)
	require.NotNil(t, candidates[0].ProgramName)
	assert.Equal(t, "STEM Fellowship", *candidates[0].ProgramName)
}

func TestCandidateRepositoryCountTotal(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCandidateRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM candidates")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(17))

	total, err := repo.CountTotal(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 17, total)
}
