package kvstore

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newGormStore(t *testing.T) (*GormStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gdb, err := gorm.Open(mysql.New(mysql.Config{Conn: db, SkipInitializeWithVersion: true}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	s := NewGormStore(gdb)
	s.now = func() time.Time { return time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC) }
	return s, mock
}

func TestGormGet(t *testing.T) {
	s, mock := newGormStore(t)
	q := regexp.QuoteMeta("SELECT * FROM `kv_entries` WHERE entry_key = ?")

	mock.ExpectQuery(q).WithArgs("post:1").
		WillReturnRows(sqlmock.NewRows([]string{"entry_key", "entry_value", "updated_at"}).
			AddRow("post:1", `{"id":1}`, time.Now()))
	v, ok, err := s.Get(context.Background(), "post:1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"id":1}`, v)

	mock.ExpectQuery(q).WithArgs("post:2").
		WillReturnRows(sqlmock.NewRows([]string{"entry_key", "entry_value", "updated_at"}))
	_, ok, err = s.Get(context.Background(), "post:2")
	require.NoError(t, err)
	assert.False(t, ok)

	mock.ExpectQuery(q).WithArgs("post:3").WillReturnError(errors.New("db_error"))
	_, _, err = s.Get(context.Background(), "post:3")
	assert.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormSetUpserts(t *testing.T) {
	s, mock := newGormStore(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `kv_entries`")+".*ON DUPLICATE KEY UPDATE").
		WithArgs("post:1", `{"id":1}`, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, s.Set(context.Background(), "post:1", `{"id":1}`))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormSetIfAbsent(t *testing.T) {
	s, mock := newGormStore(t)
	insert := regexp.QuoteMeta("INSERT INTO `kv_entries`")

	mock.ExpectExec(insert).WillReturnResult(sqlmock.NewResult(1, 1))
	ok, err := s.SetIfAbsent(context.Background(), "account:a@x", "{}")
	require.NoError(t, err)
	assert.True(t, ok)

	mock.ExpectExec(insert).WillReturnResult(sqlmock.NewResult(0, 0))
	ok, err = s.SetIfAbsent(context.Background(), "account:a@x", "{}")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormKeys(t *testing.T) {
	s, mock := newGormStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT `entry_key` FROM `kv_entries` WHERE entry_key LIKE ?")).
		WithArgs(`post\_x:%`).
		WillReturnRows(sqlmock.NewRows([]string{"entry_key"}).AddRow("post_x:1").AddRow("post_x:2"))

	keys, err := s.Keys(context.Background(), "post_x:")
	require.NoError(t, err)
	assert.Equal(t, []string{"post_x:1", "post_x:2"}, keys)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormGetMany(t *testing.T) {
	s, mock := newGormStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `kv_entries` WHERE entry_key IN (?,?)")).
		WithArgs("post:1", "post:2").
		WillReturnRows(sqlmock.NewRows([]string{"entry_key", "entry_value", "updated_at"}).
			AddRow("post:1", "a", time.Now()))

	vals, err := s.GetMany(context.Background(), []string{"post:1", "post:2"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"post:1": "a"}, vals)
	assert.NoError(t, mock.ExpectationsWereMet())
}
