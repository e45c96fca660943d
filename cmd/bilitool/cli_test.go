package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"bilitool/config"
	"bilitool/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePlatform struct {
	nav        string
	rewards    []string
	rewardHits atomic.Int32
}

func (p *fakePlatform) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/x/web-interface/nav":
		w.Write([]byte(p.nav))
	case "/x/member/web/exp/reward":
		i := int(p.rewardHits.Add(1)) - 1
		if i >= len(p.rewards) {
			i = len(p.rewards) - 1
		}
		w.Write([]byte(p.rewards[i]))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

const (
	navOK      = `{"code":0,"data":{"isLogin":true,"uname":"rayrecord","money":150,"level_info":{"current_level":3,"current_exp":200,"next_exp":1000}}}`
	navExpired = `{"code":-101,"message":"账号未登录","data":{"isLogin":false}}`
	rewardOK   = `{"code":0,"data":{"login":true,"watch":true,"coins":50,"share":false}}`
	rewardFail = `{"code":-509,"message":"请求过于频繁"}`
)

func setupEnv(t *testing.T, platform *fakePlatform) {
	t.Helper()
	server := httptest.NewServer(platform)
	t.Cleanup(server.Close)

	t.Setenv("BILI_BASE_URL", server.URL)
	t.Setenv("DEDEUSERID", "10086")
	t.Setenv("SESSDATA", "sess")
	t.Setenv("BILI_JCT", "jct")
	t.Setenv("BILI_COOKIE", "")
	t.Setenv("BILI_PROXY", "")
	t.Setenv("HTTP_RETRY_COUNT", "0")
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("TELEGRAM_CHAT_ID", "")
	t.Setenv("LOG_LEVEL", "error")
}

func execute(t *testing.T, args ...string) error {
	t.Helper()
	missing := filepath.Join(t.TempDir(), "none.env")
	rootCmd.SetArgs(append(args, "--env-file", missing))
	return rootCmd.ExecuteContext(context.Background())
}

func TestRunCommand(t *testing.T) {
	platform := &fakePlatform{nav: navOK, rewards: []string{rewardOK}}
	setupEnv(t, platform)

	require.NoError(t, execute(t, "run"))
	assert.Equal(t, int32(1), platform.rewardHits.Load())
}

func TestRunSkipsTasksWhenLoginFails(t *testing.T) {
	platform := &fakePlatform{nav: navExpired, rewards: []string{rewardOK}}
	setupEnv(t, platform)

	err := execute(t, "run")
	assert.ErrorIs(t, err, service.ErrLoginFailed)
	assert.Zero(t, platform.rewardHits.Load())
}

func TestLoginCommand(t *testing.T) {
	setupEnv(t, &fakePlatform{nav: navOK})
	assert.NoError(t, execute(t, "login"))
}

func TestTasksCommandRetriesOnce(t *testing.T) {
	platform := &fakePlatform{rewards: []string{rewardFail, rewardFail, rewardOK}}
	setupEnv(t, platform)

	require.NoError(t, execute(t, "tasks"))
	assert.Equal(t, int32(2), platform.rewardHits.Load())
}

func TestMissingCookies(t *testing.T) {
	setupEnv(t, &fakePlatform{nav: navOK})
	t.Setenv("SESSDATA", "")

	assert.ErrorIs(t, execute(t, "login"), config.ErrMissingCookie)
}
