package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/yatube/config"
	"github.com/cppla/yatube/models"
	"github.com/cppla/yatube/utils"
)

func TestCreateGroup(t *testing.T) {
	cfg := config.Override(config.AppConfig{
		SecretKey:   "cli-test-secret",
		LogLevel:    "silent",
		DBDriver:    "sqlite",
		DatabaseURI: "file:cli_groups?mode=memory&cache=shared",
	})
	db, err := config.OpenDatabase(cfg)
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db, models.All()...))

	g, err := createGroup(db, "Lev Tolstoy fans", "", "readers")
	require.NoError(t, err)
	assert.Equal(t, "lev-tolstoy-fans", g.Slug)
	assert.NotZero(t, g.ID)

	_, err = createGroup(db, "Another title", "Lev Tolstoy Fans", "")
	assert.ErrorContains(t, err, "already exists")

	_, err = createGroup(db, "", "", "")
	assert.Error(t, err)
}

func TestCacheClearCommand(t *testing.T) {
	mr := miniredis.RunT(t)
	utils.SetRedis(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	utils.CacheSetBytes(utils.PageCacheKey("index", "/", 0), []byte("page"), time.Minute)
	require.NoError(t, mr.Set("jwt:blacklist:x", "1"))

	cmd := newCacheCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetArgs([]string{"clear"})
	require.NoError(t, cmd.Execute())

	assert.Equal(t, "removed 1 cached entries\n", out.String())
	assert.Equal(t, []string{"jwt:blacklist:x"}, mr.Keys())
}
