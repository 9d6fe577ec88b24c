package database

import (
	"database/sql"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdfchat/internal/config"
)

func baseConfig() config.DatabaseConfig {
	return config.DatabaseConfig{Host: "db", Port: "5432", User: "pdfchat", Name: "pdfchat"}
}

func TestBuildPostgresDSN_TagsApplication(t *testing.T) {
	c := baseConfig()
	c.Password = "p@ss/word"
	c.SSLMode = "require"

	dsn, err := BuildPostgresDSN(c)
	require.NoError(t, err)

	u, err := url.Parse(dsn)
	require.NoError(t, err)
	assert.Equal(t, "postgres", u.Scheme)
	assert.Equal(t, "db:5432", u.Host)
	assert.Equal(t, "/pdfchat", u.Path)

	pw, ok := u.User.Password()
	assert.True(t, ok)
	assert.Equal(t, "p@ss/word", pw)
	assert.Equal(t, ApplicationName, u.Query().Get("application_name"))
	assert.Equal(t, "require", u.Query().Get("sslmode"))
}

func TestBuildPostgresDSN_OmitsEmptyOptionals(t *testing.T) {
	dsn, err := BuildPostgresDSN(baseConfig())
	require.NoError(t, err)
	assert.Equal(t, "postgres://pdfchat@db:5432/pdfchat?application_name=pdfchat", dsn)
}

func TestBuildPostgresDSN_RequiredFields(t *testing.T) {
	drops := map[string]func(*config.DatabaseConfig){
		"host": func(c *config.DatabaseConfig) { c.Host = "" },
		"port": func(c *config.DatabaseConfig) { c.Port = "" },
		"user": func(c *config.DatabaseConfig) { c.User = "" },
		"name": func(c *config.DatabaseConfig) { c.Name = "" },
	}
	for field, drop := range drops {
		t.Run(field, func(t *testing.T) {
			c := baseConfig()
			drop(&c)
			_, err := BuildPostgresDSN(c)
			assert.Error(t, err)
		})
	}
}

// stubOpen makes NewPostgres use db and records the DSN it was given.
func stubOpen(t *testing.T, db *sql.DB, openErr error) *string {
	t.Helper()
	var gotDSN string
	orig := sqlOpen
	sqlOpen = func(_, dsn string) (*sql.DB, error) {
		gotDSN = dsn
		return db, openErr
	}
	t.Cleanup(func() { sqlOpen = orig })
	return &gotDSN
}

func TestNewPostgres_AppliesPool(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()
	dsn := stubOpen(t, db, nil)
	mock.ExpectPing()

	c := baseConfig()
	c.MaxOpenConns = 7

	got, err := NewPostgres(c)
	require.NoError(t, err)
	assert.Equal(t, 7, got.Stats().MaxOpenConnections)
	assert.Contains(t, *dsn, "application_name="+ApplicationName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewPostgres_Errors(t *testing.T) {
	t.Run("open", func(t *testing.T) {
		stubOpen(t, nil, errors.New("driver missing"))

		got, err := NewPostgres(baseConfig())
		assert.Nil(t, got)
		assert.ErrorContains(t, err, "sql open: driver missing")
	})

	t.Run("ping closes the pool", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		stubOpen(t, db, nil)
		mock.ExpectPing().WillReturnError(errors.New("connection refused"))
		mock.ExpectClose()

		got, err := NewPostgres(baseConfig())
		assert.Nil(t, got)
		assert.ErrorContains(t, err, "db ping: connection refused")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("invalid config never opens", func(t *testing.T) {
		dsn := stubOpen(t, nil, nil)

		_, err := NewPostgres(config.DatabaseConfig{})
		assert.Error(t, err)
		assert.Empty(t, *dsn)
	})
}

func TestConfigurePool_ZeroKeepsDefaults(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	configurePool(db, config.DatabaseConfig{})
	assert.Equal(t, 0, db.Stats().MaxOpenConnections)

	configurePool(db, config.DatabaseConfig{MaxOpenConns: 3, ConnMaxLifetimeSec: int((time.Minute).Seconds())})
	assert.Equal(t, 3, db.Stats().MaxOpenConnections)
}
