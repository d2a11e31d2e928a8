package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDatabaseConfig_LoadFromEnv(t *testing.T) {
	t.Setenv("TESTDB_HOST", "db.internal")
	t.Setenv("TESTDB_PORT", "6543")
	t.Setenv("TESTDB_NAME", "board")
	t.Setenv("TESTDB_MAX_CONNS", "not-a-number")

	c := DatabaseConfig{Host: "localhost", Port: 5432, User: "postgres", Database: "x", SSLMode: "disable", MaxConns: 20}
	c.LoadFromEnv("TESTDB")

	assert.Equal(t, "db.internal", c.Host)
	assert.Equal(t, 6543, c.Port)
	assert.Equal(t, "board", c.Database)
	assert.Equal(t, "postgres", c.User)
	assert.Equal(t, 20, c.MaxConns)
	assert.Equal(t, "host=db.internal port=6543 user=postgres password= dbname=board sslmode=disable", c.GetDSN())
}

func TestRedisConfig_LoadFromEnv(t *testing.T) {
	t.Setenv("TESTREDIS_ADDR", "cache:6380")
	t.Setenv("TESTREDIS_DB", "2")

	c := RedisConfig{Addr: "localhost:6379"}
	c.LoadFromEnv("TESTREDIS")

	assert.Equal(t, "cache:6380", c.Addr)
	assert.Equal(t, 2, c.DB)
	assert.Empty(t, c.Password)
}
