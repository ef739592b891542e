package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"expenseflow/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	return gdb, mock
}

func TestDecideIfPendingReportsRowsAffected(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewRequestRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "requests" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	rows, err := repo.DecideIfPending(context.Background(), 5, model.RequestStatusApproved, 9, "ok", time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDecideIfPendingLosesRace(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewRequestRepository(db)

	// the WHERE status = 'PENDING' guard matched nothing
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "requests" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	rows, err := repo.DecideIfPending(context.Background(), 5, model.RequestStatusRejected, 9, "late", time.Now())
	require.NoError(t, err)
	assert.Zero(t, rows)
}

func TestUpdateLineProviderUnknownLine(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewRequestRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "request_lines" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	rows, err := repo.UpdateLineProvider(context.Background(), 404, "Renfe")
	require.NoError(t, err)
	assert.Zero(t, rows)
}

func TestFindByIDNotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewRequestRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "requests"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.FindByID(context.Background(), 99)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestListAppliesFilters(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewRequestRepository(db)

	mock.ExpectQuery(`SELECT .* FROM "requests" JOIN users ON users\.id = requests\.requester_id WHERE requests\.status = .* AND EXISTS .* ILIKE .* ORDER BY requests\.created_at DESC LIMIT .*`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "status"}))

	requests, err := repo.List(context.Background(), RequestFilter{
		Status:   model.RequestStatusPending,
		Category: "Travel",
		Search:   "REQ-0",
		Limit:    20,
		Offset:   0,
	})
	require.NoError(t, err)
	assert.Empty(t, requests)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListWithoutPaginationOmitsLimit(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewRequestRepository(db)

	mock.ExpectQuery(`SELECT .* FROM "requests" JOIN users ON users\.id = requests\.requester_id ORDER BY requests\.created_at DESC$`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.List(context.Background(), RequestFilter{})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindDepartmentByName(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCatalogRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "departments" WHERE name = .*`).
		WithArgs("Finance", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "active"}).AddRow(3, "Finance", true))

	dep, err := repo.FindDepartmentByName(context.Background(), "Finance")
	require.NoError(t, err)
	assert.Equal(t, uint(3), dep.ID)
	assert.Equal(t, "Finance", dep.Name)
}

func TestRunInTxCommitsSharedTransaction(t *testing.T) {
	db, mock := setupMockDB(t)
	tm := NewTransactionManager(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "approvals"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	err := tm.RunInTx(context.Background(), func(txCtx context.Context) error {
		approval := model.Approval{RequestID: 1, ApproverID: 9, Action: model.ApprovalActionApproved, DecidedAt: time.Now()}
		return GetDB(txCtx, db).Create(&approval).Error
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunInTxRollsBackOnError(t *testing.T) {
	db, mock := setupMockDB(t)
	tm := NewTransactionManager(db)

	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")
	err := tm.RunInTx(context.Background(), func(context.Context) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}
