package main

import (
	"errors"
	"io/fs"
	"strings"
	"testing"

	"storefront-be/migrations"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockMigrator struct {
	mock.Mock
}

func (m *MockMigrator) Up() error { return m.Called().Error(0) }

func (m *MockMigrator) Steps(n int) error { return m.Called(n).Error(0) }

func (m *MockMigrator) Version() (uint, bool, error) {
	args := m.Called()
	return args.Get(0).(uint), args.Bool(1), args.Error(2)
}

func TestRun(t *testing.T) {
	t.Run("Up", func(t *testing.T) {
		m := new(MockMigrator)
		m.On("Up").Return(nil)

		require.NoError(t, run(m, "up", 1))
		m.AssertExpectations(t)
	})

	t.Run("Up with nothing new", func(t *testing.T) {
		m := new(MockMigrator)
		m.On("Up").Return(migrate.ErrNoChange)

		assert.NoError(t, run(m, "up", 1))
	})

	t.Run("Down rolls back requested steps", func(t *testing.T) {
		m := new(MockMigrator)
		m.On("Steps", -2).Return(nil)

		require.NoError(t, run(m, "down", 2))
		m.AssertExpectations(t)
	})

	t.Run("Down past the first migration", func(t *testing.T) {
		m := new(MockMigrator)
		m.On("Steps", -3).Return(migrate.ErrShortLimit{Short: 2})

		assert.NoError(t, run(m, "down", 3))
	})

	t.Run("Failure propagates", func(t *testing.T) {
		m := new(MockMigrator)
		m.On("Up").Return(errors.New("syntax error at or near"))

		assert.Error(t, run(m, "up", 1))
	})

	t.Run("Unknown mode", func(t *testing.T) {
		m := new(MockMigrator)

		err := run(m, "sideways", 1)
		assert.ErrorContains(t, err, "unknown mode")
		m.AssertNotCalled(t, "Up")
	})

	t.Run("Non-positive steps", func(t *testing.T) {
		assert.Error(t, validateMode("down", 0))
		assert.NoError(t, validateMode("up", 0))
	})
}

func TestEmbeddedMigrations(t *testing.T) {
	src, err := iofs.New(migrations.FS, ".")
	require.NoError(t, err)
	defer src.Close()

	first, err := src.First()
	require.NoError(t, err)
	assert.Equal(t, uint(1), first)

	names, err := fs.Glob(migrations.FS, "*.up.sql")
	require.NoError(t, err)
	require.NotEmpty(t, names)

	for _, up := range names {
		down := strings.TrimSuffix(up, ".up.sql") + ".down.sql"
		_, err := fs.Stat(migrations.FS, down)
		assert.NoError(t, err, "missing %s", down)
	}
}
