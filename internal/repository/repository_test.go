package repository

import (
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

// newMockDB возвращает sqlx.DB поверх sqlmock. По завершении теста проверяется,
// что все ожидаемые запросы выполнены.
func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return sqlx.NewDb(db, "postgres"), mock
}

// sqlLike экранирует фрагмент запроса для регулярного сопоставления sqlmock.
func sqlLike(fragment string) string {
	return regexp.QuoteMeta(fragment)
}
