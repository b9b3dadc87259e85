package services

import (
	"regexp"
	"testing"

	"github.com/Akankshas1102/amazondvc-admin/internal/domain/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func expectUserCount(mock sqlmock.Sqlmock, count int64) {
	mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM `admin_users`")).
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(count))
}

func TestDeleteUser_LastUserIsKept(t *testing.T) {
	gdb, mock := mockGorm(t)
	s := NewAdminUserService(gdb, nil)

	expectUserCount(mock, 1)

	err := s.DeleteUser(5)
	require.EqualError(t, err, "cannot delete the last user")
	// No delete statement was issued.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteUser_Success(t *testing.T) {
	gdb, mock := mockGorm(t)
	s := NewAdminUserService(gdb, nil)

	expectUserCount(mock, 2)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `admin_users` SET `deleted_at`")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, s.DeleteUser(5))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteUser_NotFound(t *testing.T) {
	gdb, mock := mockGorm(t)
	s := NewAdminUserService(gdb, nil)

	expectUserCount(mock, 2)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `admin_users` SET `deleted_at`")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := s.DeleteUser(99)
	assert.EqualError(t, err, "user not found")
}

func TestCreateUser_RejectsDuplicateUsername(t *testing.T) {
	gdb, mock := mockGorm(t)
	s := NewAdminUserService(gdb, nil)

	expectUserCount(mock, 1)

	err := s.CreateUser(&models.AdminUser{Username: "admin", Password: "secret"})
	require.EqualError(t, err, "user already exists")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUser_HashesPassword(t *testing.T) {
	gdb, mock := mockGorm(t)
	s := NewAdminUserService(gdb, nil)

	expectUserCount(mock, 0)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `admin_users`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	user := &models.AdminUser{Username: "ops", Password: "secret"}
	require.NoError(t, s.CreateUser(user))

	// The stored password is a bcrypt hash of the plaintext.
	assert.NotEqual(t, "secret", user.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("secret")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func expectUserByID(t *testing.T, mock sqlmock.Sqlmock, id uint, username, password string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `admin_users` WHERE `admin_users`.`id` = ?")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password", "is_admin"}).
			AddRow(id, username, string(hash), true))
}

func TestChangePassword_RejectsWrongCurrentPassword(t *testing.T) {
	gdb, mock := mockGorm(t)
	s := NewAdminUserService(gdb, nil)

	expectUserByID(t, mock, 1, "admin", "right-one")

	err := s.ChangePassword(1, "wrong-one", "new-pass")
	require.EqualError(t, err, "current password is incorrect")
	// No update statement was issued.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChangePassword_Success(t *testing.T) {
	gdb, mock := mockGorm(t)
	s := NewAdminUserService(gdb, nil)

	expectUserByID(t, mock, 1, "admin", "old-pass")
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `admin_users` SET")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, s.ChangePassword(1, "old-pass", "new-pass"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
