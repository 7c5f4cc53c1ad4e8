package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sam-thanacare/thanacare-frontend-firefly-sub001/internal/token/tokentest"
)

type testEnv struct {
	dir        string
	configPath string
	passwords  string
}

func newTestEnv(t *testing.T, backendURL string) *testEnv {
	t.Helper()
	dir := t.TempDir()
	cfg := fmt.Sprintf(`
backend:
  base_url: %s
storage:
  enabled: true
  type: sqlite
  path: %s
logging:
  level: info
  file: %s
`, backendURL, filepath.Join(dir, "firefly.db"), filepath.Join(dir, "firefly.log"))

	env := &testEnv{
		dir:        dir,
		configPath: filepath.Join(dir, "firefly.yaml"),
		passwords:  filepath.Join(dir, "password"),
	}
	require.NoError(t, os.WriteFile(env.configPath, []byte(cfg), 0o600))
	require.NoError(t, os.WriteFile(env.passwords, []byte("secret\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), nil, 0o600))
	return env
}

// run executes the root command with fresh flag state.
func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	loginEmail, loginPasswordFile, loginRemember = "", "", false
	statusJSON = false
	historyEvent, historyLimit, historyOffset = "", 20, 0

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--config", e.configPath, "--env-file", filepath.Join(e.dir, ".env")}, args...))
	err := ExecuteContext(context.Background())
	return out.String(), err
}

func loginBackend(t *testing.T) *httptest.Server {
	t.Helper()
	tok := tokentest.ForUser(t, "7", "ada@example.org", "trainer", time.Now(), time.Hour)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path != "/api/auth/login" || body["password"] != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"Invalid email or password"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"token": tok,
			"user":  map[string]any{"id": 7, "name": "Ada", "email": "ada@example.org", "role": "trainer"},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestLoadEnv(t *testing.T) {
	t.Run("explicit file missing", func(t *testing.T) {
		assert.Error(t, loadEnv(filepath.Join(t.TempDir(), "nope.env")))
	})

	t.Run("explicit file sets variables", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "test.env")
		require.NoError(t, os.WriteFile(path, []byte("FIREFLY_CLI_TEST_VALUE=hello\n"), 0o600))
		t.Cleanup(func() { os.Unsetenv("FIREFLY_CLI_TEST_VALUE") })

		require.NoError(t, loadEnv(path))
		assert.Equal(t, "hello", os.Getenv("FIREFLY_CLI_TEST_VALUE"))
	})

	t.Run("default file missing", func(t *testing.T) {
		wd, err := os.Getwd()
		require.NoError(t, err)
		require.NoError(t, os.Chdir(t.TempDir()))
		t.Cleanup(func() { _ = os.Chdir(wd) })

		assert.NoError(t, loadEnv(""))
	})
}

func TestVersionCommand(t *testing.T) {
	env := newTestEnv(t, "http://127.0.0.1:1/api")
	out, err := env.run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "firefly "+Version)
}

func TestRememberedSessionAcrossCommands(t *testing.T) {
	srv := loginBackend(t)
	env := newTestEnv(t, srv.URL+"/api")

	out, err := env.run(t, "login", "--email", "ada@example.org", "--password-file", env.passwords, "--remember")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed in as Ada (trainer)")
	assert.Contains(t, out, "Home: /trainer/dashboard")

	out, err = env.run(t, "status", "--json")
	require.NoError(t, err)
	var report statusReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.True(t, report.Authenticated)
	assert.Equal(t, "durable", report.Tier)
	assert.Equal(t, "/trainer/dashboard", report.Home)
	assert.Equal(t, "sqlite", report.Storage)
	require.NotNil(t, report.User)
	assert.Equal(t, "7", report.User.ID)
	assert.Greater(t, report.ExpiresIn, int64(0))

	out, err = env.run(t, "login", "--email", "ada@example.org", "--password-file", env.passwords)
	require.NoError(t, err)
	assert.Contains(t, out, "Already signed in")

	out, err = env.run(t, "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed out ada@example.org")

	out, err = env.run(t, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "State:    anonymous")
	assert.NotContains(t, out, "User:")

	out, err = env.run(t, "history", "--event", "login")
	require.NoError(t, err)
	assert.Contains(t, out, "EVENT")
	assert.Contains(t, out, "login")
	assert.NotContains(t, out, "rehydrated")
}

func TestLoginWithoutRememberIsNotKept(t *testing.T) {
	srv := loginBackend(t)
	env := newTestEnv(t, srv.URL+"/api")

	out, err := env.run(t, "login", "--email", "ada@example.org", "--password-file", env.passwords)
	require.NoError(t, err)
	assert.Contains(t, out, "Session not remembered")

	out, err = env.run(t, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "State:    anonymous")
}

func TestLoginRejected(t *testing.T) {
	srv := loginBackend(t)
	env := newTestEnv(t, srv.URL+"/api")
	require.NoError(t, os.WriteFile(env.passwords, []byte("wrong\n"), 0o600))

	_, err := env.run(t, "login", "--email", "ada@example.org", "--password-file", env.passwords)
	require.Error(t, err)
	assert.Equal(t, "Invalid email or password", err.Error())

	out, err := env.run(t, "history", "--event", "login_failed")
	require.NoError(t, err)
	assert.Contains(t, out, "login_failed")
}

func TestHistoryFlagValidation(t *testing.T) {
	env := newTestEnv(t, "http://127.0.0.1:1/api")

	_, err := env.run(t, "history", "--limit", "0")
	assert.EqualError(t, err, "--limit must be between 1 and 500")

	_, err = env.run(t, "history", "--offset", "-1")
	assert.EqualError(t, err, "--offset must not be negative")
}
