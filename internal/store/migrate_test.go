// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package store

import (
	"errors"
	"strings"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatehouse/gatehouse/pkg/errutil"
)

// mockMigrate implements migrateIface for testing without a database.
type mockMigrate struct {
	upErr      error
	downErr    error
	version    uint
	dirty      bool
	versionErr error
	closeSrc   error
	closeDB    error

	upCalls   int
	downCalls int
}

func (m *mockMigrate) Up() error {
	m.upCalls++
	return m.upErr
}

func (m *mockMigrate) Down() error {
	m.downCalls++
	return m.downErr
}

func (m *mockMigrate) Version() (uint, bool, error) {
	return m.version, m.dirty, m.versionErr
}

func (m *mockMigrate) Close() (error, error) {
	return m.closeSrc, m.closeDB
}

func TestMigrator_Up(t *testing.T) {
	tests := []struct {
		name     string
		upErr    error
		wantErr  bool
		wantCode string
	}{
		{name: "success"},
		{name: "no change is success", upErr: migrate.ErrNoChange},
		{name: "failure", upErr: errors.New("connection refused"), wantErr: true, wantCode: "MIGRATION_UP_FAILED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Migrator{m: &mockMigrate{upErr: tt.upErr}}
			err := m.Up()
			if tt.wantErr {
				errutil.AssertErrorCode(t, err, tt.wantCode)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestMigrator_Down(t *testing.T) {
	tests := []struct {
		name     string
		downErr  error
		wantErr  bool
		wantCode string
	}{
		{name: "success"},
		{name: "no change is success", downErr: migrate.ErrNoChange},
		{name: "failure", downErr: errors.New("dirty database"), wantErr: true, wantCode: "MIGRATION_DOWN_FAILED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Migrator{m: &mockMigrate{downErr: tt.downErr}}
			err := m.Down()
			if tt.wantErr {
				errutil.AssertErrorCode(t, err, tt.wantCode)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestMigrator_Reset(t *testing.T) {
	t.Run("runs down then up", func(t *testing.T) {
		mock := &mockMigrate{}
		m := &Migrator{m: mock}

		require.NoError(t, m.Reset())
		assert.Equal(t, 1, mock.downCalls)
		assert.Equal(t, 1, mock.upCalls)
	})

	t.Run("down failure stops reset", func(t *testing.T) {
		mock := &mockMigrate{downErr: errors.New("boom")}
		m := &Migrator{m: mock}

		err := m.Reset()
		errutil.AssertErrorCode(t, err, "MIGRATION_DOWN_FAILED")
		assert.Equal(t, 0, mock.upCalls)
	})

	t.Run("up failure surfaces", func(t *testing.T) {
		mock := &mockMigrate{upErr: errors.New("boom")}
		m := &Migrator{m: mock}

		err := m.Reset()
		errutil.AssertErrorCode(t, err, "MIGRATION_UP_FAILED")
	})
}

func TestMigrator_Version(t *testing.T) {
	t.Run("returns current version", func(t *testing.T) {
		m := &Migrator{m: &mockMigrate{version: 1, dirty: false}}

		version, dirty, err := m.Version()
		require.NoError(t, err)
		assert.Equal(t, uint(1), version)
		assert.False(t, dirty)
	})

	t.Run("nil version means no migrations applied", func(t *testing.T) {
		m := &Migrator{m: &mockMigrate{versionErr: migrate.ErrNilVersion}}

		version, dirty, err := m.Version()
		require.NoError(t, err)
		assert.Equal(t, uint(0), version)
		assert.False(t, dirty)
	})

	t.Run("reports dirty state", func(t *testing.T) {
		m := &Migrator{m: &mockMigrate{version: 1, dirty: true}}

		version, dirty, err := m.Version()
		require.NoError(t, err)
		assert.Equal(t, uint(1), version)
		assert.True(t, dirty)
	})

	t.Run("failure", func(t *testing.T) {
		m := &Migrator{m: &mockMigrate{versionErr: errors.New("boom")}}

		_, _, err := m.Version()
		errutil.AssertErrorCode(t, err, "MIGRATION_VERSION_FAILED")
	})
}

func TestMigrator_Close(t *testing.T) {
	tests := []struct {
		name     string
		closeSrc error
		closeDB  error
		wantErr  bool
	}{
		{name: "success"},
		{name: "source error", closeSrc: errors.New("source"), wantErr: true},
		{name: "database error", closeDB: errors.New("database"), wantErr: true},
		{name: "both errors", closeSrc: errors.New("source"), closeDB: errors.New("database"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Migrator{m: &mockMigrate{closeSrc: tt.closeSrc, closeDB: tt.closeDB}}
			err := m.Close()
			if tt.wantErr {
				errutil.AssertErrorCode(t, err, "MIGRATION_CLOSE_FAILED")
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestMigrationsFS_EmbeddedFiles(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	require.NoError(t, err)
	require.NotEmpty(t, entries, "embedded migrations directory must not be empty")

	ups := 0
	downs := 0
	for _, entry := range entries {
		name := entry.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups++
		case strings.HasSuffix(name, ".down.sql"):
			downs++
		default:
			t.Errorf("unexpected file in migrations dir: %s", name)
		}
	}
	assert.Equal(t, ups, downs, "every up migration needs a matching down migration")
}
