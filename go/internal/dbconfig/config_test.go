package dbconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDSNEscapesCredentials(t *testing.T) {
	c := Config{Host: "db", Port: 5433, User: "draft", Password: "p@ss/word", Database: "fantasy_draft", SSLMode: "require"}
	assert.Equal(t, "postgres://draft:p%40ss%2Fword@db:5433/fantasy_draft?sslmode=require", c.DSN())
}

func TestDatabaseURLWins(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@elsewhere:6543/other")
	t.Setenv("DB_HOST", "ignored")
	c := NewConfigFromEnv()
	assert.Equal(t, "postgres://u:p@elsewhere:6543/other", c.DSN())
}

func TestPoolConfigAppliesSizing(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_MAX_CONNS", "25")
	t.Setenv("DB_MIN_CONNS", "not-a-number")
	c := NewConfigFromEnv()

	poolCfg, err := c.PoolConfig()
	require.NoError(t, err)
	assert.Equal(t, int32(25), poolCfg.MaxConns)
	assert.Equal(t, "fantasy_draft", poolCfg.ConnConfig.Database)
}
