package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearCredentials(t *testing.T) {
	t.Helper()
	for _, key := range []string{"ORACLE_API_KEY", "GEMINI_API_KEY", "OPENAI_API_KEY", "TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID", "NEWSPULSE_CONFIG"} {
		t.Setenv(key, "")
	}
}

func TestRootHelpListsCommands(t *testing.T) {
	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--help"})

	require.NoError(t, cmd.Execute())

	out := buf.String()
	for _, name := range []string{"realtime", "batch", "daily", "test", "schedule", "version"} {
		assert.Contains(t, out, name)
	}
}

func TestVersionCommand(t *testing.T) {
	SetVersion("1.2.3")
	t.Cleanup(func() { SetVersion("dev") })

	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "newspulse 1.2.3\n", buf.String())
}

func TestUnknownCommandFails(t *testing.T) {
	cmd := NewRootCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"weekly"})

	assert.Error(t, cmd.Execute())
}

func TestModeCommandFailsWithoutCredentials(t *testing.T) {
	clearCredentials(t)

	path := filepath.Join(t.TempDir(), "newspulse.yaml")
	yaml := strings.Join([]string{
		"oracle:",
		"  provider: gemini",
		"dedup:",
		"  backend: memory",
	}, "\n")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cmd := NewRootCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetArgs([]string{"batch", "--config", path, "--log-level", "error"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oracle")
}
