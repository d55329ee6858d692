package database

import (
	"bytes"
	"path/filepath"
	"testing"

	"filmshelf/backend/internal/auth"
	"filmshelf/backend/internal/logging"
	"filmshelf/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := Open("sqlite", ":memory:", logging.New(&bytes.Buffer{}, "error"))
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	return db
}

func TestOpenUnsupportedDriver(t *testing.T) {
	_, err := Open("oracle", "x", logging.New(&bytes.Buffer{}, "error"))
	assert.Error(t, err)
}

func TestSqliteDSN(t *testing.T) {
	assert.Equal(t, "data/filme.db?_foreign_keys=on", sqliteDSN("data/filme.db"))
	assert.Equal(t, "file:x.db?cache=shared&_foreign_keys=on", sqliteDSN("file:x.db?cache=shared"))
	assert.Equal(t, "x.db?_foreign_keys=off", sqliteDSN("x.db?_foreign_keys=off"))

	assert.Equal(t, "data/x.db", sqlitePath("file:data/x.db?cache=shared"))
	assert.True(t, isMemoryDSN("file::memory:?cache=shared"))
	assert.False(t, isMemoryDSN("data/filme.db"))
}

func TestOpenSqliteWithQuery(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "sub", "filme.db") + "?cache=shared"
	db, err := Open("sqlite", dsn, logging.New(&bytes.Buffer{}, "error"))
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	var fk int
	require.NoError(t, db.Raw("PRAGMA foreign_keys").Scan(&fk).Error)
	assert.Equal(t, 1, fk)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
}

func TestParseInitialUsers(t *testing.T) {
	t.Run("FirstBecomesAdmin", func(t *testing.T) {
		users, err := ParseInitialUsers("anna:pw1, ben:pw2")
		require.NoError(t, err)
		require.Len(t, users, 2)
		assert.Equal(t, BootstrapUser{Name: "anna", Password: "pw1", Admin: true}, users[0])
		assert.Equal(t, BootstrapUser{Name: "ben", Password: "pw2"}, users[1])
	})

	t.Run("ExplicitAdmin", func(t *testing.T) {
		users, err := ParseInitialUsers("anna:pw1,ben:pw2:admin")
		require.NoError(t, err)
		assert.False(t, users[0].Admin)
		assert.True(t, users[1].Admin)
	})

	t.Run("Empty", func(t *testing.T) {
		users, err := ParseInitialUsers("")
		require.NoError(t, err)
		assert.Empty(t, users)
	})

	t.Run("PasswordWithColons", func(t *testing.T) {
		users, err := ParseInitialUsers("anna:pw:root,ben:a:b:admin")
		require.NoError(t, err)
		require.Len(t, users, 2)
		assert.Equal(t, BootstrapUser{Name: "anna", Password: "pw:root"}, users[0])
		assert.Equal(t, BootstrapUser{Name: "ben", Password: "a:b", Admin: true}, users[1])
	})

	t.Run("Malformed", func(t *testing.T) {
		for _, raw := range []string{"anna", "anna:", ":pw", "anna::admin"} {
			_, err := ParseInitialUsers(raw)
			assert.ErrorIs(t, err, ErrInvalidBootstrapEntry, raw)
		}
	})
}

func TestBootstrap(t *testing.T) {
	l := logging.New(&bytes.Buffer{}, "error")

	t.Run("CreatesUsersWhenEmpty", func(t *testing.T) {
		db := openTestDB(t)
		require.NoError(t, Bootstrap(db, "anna:secret,ben:hunter2", l))

		var users []models.User
		require.NoError(t, db.Order("name").Find(&users).Error)
		require.Len(t, users, 2)
		assert.True(t, users[0].IsAdmin)
		assert.True(t, auth.CheckPassword(users[0].PasswordHash, "secret"))
		assert.True(t, auth.CheckPassword(users[1].PasswordHash, "hunter2"))
	})

	t.Run("SkipsWhenUsersExist", func(t *testing.T) {
		db := openTestDB(t)
		require.NoError(t, db.Create(&models.User{Name: "existing", PasswordHash: "x"}).Error)
		require.NoError(t, Bootstrap(db, "anna:secret", l))

		var count int64
		db.Model(&models.User{}).Count(&count)
		assert.Equal(t, int64(1), count)
	})
}
