package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quocvuong92/gemini-chat/internal/api"
	"github.com/quocvuong92/gemini-chat/internal/config"
	"github.com/quocvuong92/gemini-chat/internal/display"
	"github.com/quocvuong92/gemini-chat/internal/logging"
)

const validKey = "AIzaSyC1234567890123456789012345"

// MockAIClient implements api.AIClient for testing
type MockAIClient struct {
	mu       sync.Mutex
	replies  []string
	errs     []error
	requests []api.Request
	closed   bool
}

func (m *MockAIClient) Generate(ctx context.Context, req api.Request) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := len(m.requests)
	m.requests = append(m.requests, req)
	if i < len(m.errs) && m.errs[i] != nil {
		return "", m.errs[i]
	}
	if i < len(m.replies) {
		return m.replies[i], nil
	}
	return "ok", nil
}

func (m *MockAIClient) Close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
}

func (m *MockAIClient) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Validate(map[string]string{
		config.EnvAPIKey:         validKey,
		config.EnvRetryBaseDelay: "1",
		config.EnvRetryMaxDelay:  "5",
	})
	require.NoError(t, err)
	return cfg
}

// setupTestSession builds an interactive session writing to a buffer
func setupTestSession(t *testing.T, client *MockAIClient) (*InteractiveSession, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	disp := display.New(display.Options{Output: &buf})

	s, err := newInteractiveSession(context.Background(), testConfig(t), client, disp, logging.Nop())
	require.NoError(t, err)
	return s, &buf
}

// isolate runs the test in an empty directory with no user config files
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, ".config"))
	return dir
}

func newTestApp(dir string) (*App, *bytes.Buffer) {
	var buf bytes.Buffer
	app := NewApp()
	app.out = &buf
	app.render = false
	app.envFile = filepath.Join(dir, ".env")
	app.lookupEnv = func(string) (string, bool) { return "", false }
	return app, &buf
}

func runRoot(t *testing.T, app *App, out *bytes.Buffer, args ...string) error {
	t.Helper()
	root := NewRootCmd(app)
	root.SetOut(out)
	root.SetErr(out)
	root.SetArgs(args)
	return root.Execute()
}

// =============================================================================
// Interactive session
// =============================================================================

func TestExecutor_ChatReply(t *testing.T) {
	client := &MockAIClient{replies: []string{"Hi there!"}}
	s, buf := setupTestSession(t, client)

	s.executor("hello")

	assert.Contains(t, buf.String(), "Hi there!")
	assert.Equal(t, 2, s.session.History().Len())
	require.Equal(t, 1, client.calls())
	assert.Equal(t, "hello", client.requests[0].Prompt)
	assert.False(t, s.exitFlag)
}

func TestExecutor_HistoryFlowsIntoNextRequest(t *testing.T) {
	client := &MockAIClient{replies: []string{"first", "second"}}
	s, _ := setupTestSession(t, client)

	s.executor("one")
	s.executor("two")

	require.Equal(t, 2, client.calls())
	prior := client.requests[1].History
	require.Len(t, prior, 2)
	assert.Equal(t, "one", prior[0].Text)
	assert.Equal(t, "first", prior[1].Text)
}

func TestExecutor_EmptyLineIsIgnored(t *testing.T) {
	client := &MockAIClient{}
	s, buf := setupTestSession(t, client)

	s.executor("   ")

	assert.Zero(t, client.calls())
	assert.Zero(t, s.session.History().Len())
	assert.Empty(t, buf.String())
}

func TestExecutor_Multiline(t *testing.T) {
	client := &MockAIClient{}
	s, _ := setupTestSession(t, client)

	s.executor("first line\\")
	assert.Zero(t, client.calls(), "continuation lines are buffered")

	s.executor("second line")
	require.Equal(t, 1, client.calls())
	assert.Equal(t, "first line\nsecond line", client.requests[0].Prompt)
	assert.Empty(t, s.inputBuffer)
}

func TestExecutor_ChatErrorKeepsLoopRunning(t *testing.T) {
	client := &MockAIClient{
		errs:    []error{&api.APIError{StatusCode: 401, Message: "API key not valid"}},
		replies: []string{"", "recovered"},
	}
	s, buf := setupTestSession(t, client)

	s.executor("hello")
	assert.Contains(t, buf.String(), "Authentication failed")
	assert.False(t, s.exitFlag)
	assert.Equal(t, 1, client.calls(), "auth errors are not retried")

	s.executor("again")
	assert.Contains(t, buf.String(), "recovered")
}

func TestExecutor_RetryNotice(t *testing.T) {
	client := &MockAIClient{
		errs:    []error{&api.APIError{StatusCode: 429, Message: "quota"}},
		replies: []string{"", "after retry"},
	}
	s, buf := setupTestSession(t, client)

	s.executor("hello")

	out := buf.String()
	assert.Contains(t, out, "Rate limited, retrying")
	assert.Contains(t, out, "after retry")
	assert.Equal(t, 2, client.calls())
}

func TestExecutor_MessageTooLong(t *testing.T) {
	client := &MockAIClient{}
	s, buf := setupTestSession(t, client)

	long := make([]byte, s.session.Config().MaxMessageLength()+1)
	for i := range long {
		long[i] = 'a'
	}
	s.executor(string(long))

	assert.Contains(t, buf.String(), "Message too long")
	assert.Zero(t, client.calls())
	assert.Zero(t, s.session.History().Len())
}

func TestExecutor_ControlCommands(t *testing.T) {
	client := &MockAIClient{}
	s, buf := setupTestSession(t, client)

	s.executor("hello")
	require.Equal(t, 2, s.session.History().Len())

	buf.Reset()
	s.executor("/STATUS")
	assert.Contains(t, buf.String(), "2 / 50 turns")
	assert.NotContains(t, buf.String(), validKey)

	buf.Reset()
	s.executor("help")
	assert.Contains(t, buf.String(), "/clear")

	buf.Reset()
	s.executor("/clear")
	assert.Contains(t, buf.String(), "Conversation history cleared.")
	assert.Zero(t, s.session.History().Len())

	assert.Equal(t, 1, client.calls(), "control commands never reach the model")
}

func TestExecutor_Exit(t *testing.T) {
	for _, line := range []string{"exit", "/exit", "QUIT", " /quit "} {
		t.Run(line, func(t *testing.T) {
			client := &MockAIClient{}
			s, buf := setupTestSession(t, client)

			s.executor(line)
			assert.True(t, s.exitFlag)
			assert.Contains(t, buf.String(), "Goodbye!")

			// Further input is ignored once exiting
			s.executor("hello")
			assert.Zero(t, client.calls())
		})
	}
}

func TestExecutor_ExitNowIsChat(t *testing.T) {
	client := &MockAIClient{}
	s, _ := setupTestSession(t, client)

	s.executor("exit now")

	assert.False(t, s.exitFlag)
	assert.Equal(t, 1, client.calls())
}

func TestShutdown_OnlyOnce(t *testing.T) {
	s, buf := setupTestSession(t, &MockAIClient{})

	s.shutdown("ctrl+c")
	s.shutdown("ctrl+d")

	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("Goodbye!")))
}

// =============================================================================
// Subcommands
// =============================================================================

func TestStatusCmd(t *testing.T) {
	dir := isolate(t)
	app, buf := newTestApp(dir)
	require.NoError(t, os.WriteFile(app.envFile, []byte("GEMINI_API_KEY="+validKey+"\nMAX_HISTORY_LENGTH=8\n"), 0600))

	require.NoError(t, runRoot(t, app, buf, "status", "--env-file", app.envFile))

	out := buf.String()
	assert.Contains(t, out, "0 / 8 turns")
	assert.Contains(t, out, "AIza")
	assert.NotContains(t, out, validKey)
}

func TestStatusCmd_InvalidConfig(t *testing.T) {
	dir := isolate(t)
	app, buf := newTestApp(dir)
	require.NoError(t, os.WriteFile(app.envFile, []byte("GEMINI_API_KEY=bad\nTEMPERATURE=7\n"), 0600))

	err := runRoot(t, app, buf, "status", "--env-file", app.envFile)
	assert.True(t, errors.Is(err, errReported))

	out := buf.String()
	assert.Contains(t, out, "Configuration errors found")
	assert.Contains(t, out, config.EnvAPIKey)
	assert.Contains(t, out, config.EnvTemperature)

	// The failure is also recorded in the default log file
	data, readErr := os.ReadFile(filepath.Join(dir, "gemini_cli.log"))
	require.NoError(t, readErr)
	assert.Contains(t, string(data), "Configuration validation failed")
}

func TestRootCmd_MissingEnvFileHintsInit(t *testing.T) {
	dir := isolate(t)
	app, buf := newTestApp(dir)

	err := runRoot(t, app, buf, "--env-file", app.envFile)
	assert.True(t, errors.Is(err, errReported))
	assert.Contains(t, buf.String(), "gemini-chat init")
}

func TestRootCmd_RejectsArgs(t *testing.T) {
	dir := isolate(t)
	app, buf := newTestApp(dir)

	assert.Error(t, runRoot(t, app, buf, "hello"))
}

func TestInitCmd(t *testing.T) {
	dir := isolate(t)
	app, buf := newTestApp(dir)

	require.NoError(t, runRoot(t, app, buf, "init", "--env-file", app.envFile))
	assert.Contains(t, buf.String(), "Created")
	assert.FileExists(t, app.envFile)

	buf.Reset()
	require.NoError(t, runRoot(t, app, buf, "init", "--env-file", app.envFile))
	assert.Contains(t, buf.String(), "already exists")
}

func TestInitCmd_YAML(t *testing.T) {
	dir := isolate(t)
	app, buf := newTestApp(dir)

	require.NoError(t, runRoot(t, app, buf, "init", "--yaml", "--env-file", app.envFile))

	matches, err := filepath.Glob(filepath.Join(dir, ".config", "*", "config.yaml"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}
