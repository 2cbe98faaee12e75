package emr

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestExecRunner_Stdout(t *testing.T) {
	requireShell(t)
	out, err := ExecRunner{}.Run(context.Background(), "sh", "-c", `printf '{"ok":true}'`)
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, string(out))
}

func TestExecRunner_FailureIncludesStderr(t *testing.T) {
	requireShell(t)
	_, err := ExecRunner{}.Run(context.Background(), "sh", "-c", "echo 'access denied' >&2; exit 3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
	assert.Contains(t, err.Error(), "exit status 3")
}

func TestExecRunner_Timeout(t *testing.T) {
	requireShell(t)
	_, err := ExecRunner{Timeout: 50 * time.Millisecond}.Run(context.Background(), "sh", "-c", "sleep 5")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
