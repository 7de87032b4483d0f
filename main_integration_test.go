package main

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/eka-dev/ftracker/internal/fakeapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTestBinary(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping binary integration test in short mode")
	}
	binName := "ftracker_it_bin"
	if runtime.GOOS == "windows" {
		binName += ".exe"
	}
	bin := filepath.Join(t.TempDir(), binName)
	cmd := exec.Command("go", "build", "-o", bin, ".")
	cmd.Env = os.Environ()
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build binary:\n%s", out)
	return bin
}

// binaryEnv isolates the binary from the user's config and database.
func binaryEnv(t *testing.T, apiURL string) []string {
	dir := t.TempDir()
	return append(os.Environ(),
		"FTRACKER_CONFIG="+filepath.Join(dir, "config.yaml"),
		"FTRACKER_DB_PATH="+filepath.Join(dir, "ftracker.db"),
		"FTRACKER_API_URL="+apiURL,
		"FTRACKER_TIMEOUT=5s",
		"DEBUG_FTRACKER=",
	)
}

type result struct {
	stdout, stderr string
	code           int
}

func runBinary(t *testing.T, bin string, env []string, stdin string, args ...string) result {
	t.Helper()
	cmd := exec.Command(bin, args...)
	cmd.Env = env
	cmd.Stdin = strings.NewReader(stdin)
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	code := 0
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code = exitErr.ExitCode()
	} else {
		require.NoError(t, err)
	}
	return result{stdout: stdout.String(), stderr: stderr.String(), code: code}
}

func TestBinaryTransactionFlow(t *testing.T) {
	bin := buildTestBinary(t)
	backend := fakeapi.New()
	backend.AddUser("Eka", "eka@example.com", "secret1")
	srv := backend.Start()
	defer srv.Close()
	env := binaryEnv(t, srv.URL+"/")

	res := runBinary(t, bin, env, "", "transactions", "list")
	assert.Equal(t, 4, res.code, "listing without a session: %s", res.stderr)

	res = runBinary(t, bin, env, "secret1\n", "login", "-e", "eka@example.com")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Login was successful.")

	res = runBinary(t, bin, env, "", "tx", "add", "-a", "42000", "-t", "expense", "-d", "Groceries")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Transaction created successfully")

	// The session survives in the database and is renewed after expiry.
	backend.ExpireAccessTokens()
	res = runBinary(t, bin, env, "", "tx", "list", "-v", "All")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Groceries")
	assert.Equal(t, 1, backend.RefreshCalls())

	res = runBinary(t, bin, env, "", "tx", "show", "--id", "missing")
	assert.Equal(t, 3, res.code)
	assert.Contains(t, res.stderr, "Transaction not found")

	res = runBinary(t, bin, env, "", "tx", "list", "-v", "decade")
	assert.Equal(t, 2, res.code)

	srv.Close()
	res = runBinary(t, bin, env, "", "tx", "list")
	assert.Equal(t, 5, res.code, "unreachable server is a network error")

	res = runBinary(t, bin, env, "", "tx", "list", "-v", "All", "--offline")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Groceries")
}

func TestBinaryVersionNeedsNoConfig(t *testing.T) {
	bin := buildTestBinary(t)
	env := binaryEnv(t, "not a url")

	res := runBinary(t, bin, env, "", "version")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "ftracker version:")
}

// TestGracefulInterrupt runs the binary against a server that never answers
// and expects SIGINT to cancel the request promptly.
func TestGracefulInterrupt(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("os.Interrupt cannot be sent to a process on windows")
	}
	bin := buildTestBinary(t)
	hang := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer hang.Close()

	cmd := exec.Command(bin, "tx", "list")
	cmd.Env = binaryEnv(t, hang.URL+"/")
	require.NoError(t, cmd.Start())

	time.Sleep(300 * time.Millisecond)
	require.NoError(t, cmd.Process.Signal(os.Interrupt))

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()
	select {
	case err := <-done:
		assert.Error(t, err, "an interrupted command exits non-zero")
	case <-time.After(3 * time.Second):
		_ = cmd.Process.Kill()
		t.Fatal("process did not exit within 3s after SIGINT")
	}
}
