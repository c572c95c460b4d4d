package mysql

import (
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDSN(t *testing.T) {
	for _, dsn := range []string{
		"app:pw@tcp(db:3306)/strings",
		"app:pw@tcp(db:3306)/strings?parseTime=false",
		"app:pw@tcp(db:3306)/strings?loc=Local&charset=utf8mb4",
		"app:pw@tcp(db:3306)/strings?parseTime=true&charset=utf8mb4&loc=UTC",
	} {
		out, err := normalizeDSN(dsn)
		require.NoError(t, err, dsn)

		cfg, err := mysql.ParseDSN(out)
		require.NoError(t, err, out)
		assert.True(t, cfg.ParseTime, dsn)
		assert.Equal(t, time.UTC, cfg.Loc, dsn)
		assert.Equal(t, "strings", cfg.DBName, dsn)
		assert.Equal(t, "db:3306", cfg.Addr, dsn)
	}
}

func TestNormalizeDSNRejectsGarbage(t *testing.T) {
	_, err := normalizeDSN("app:pw@tcp(db:3306")
	assert.Error(t, err)
}
