package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestSetupWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	closer, err := Setup("DEBUG", path)
	require.NoError(t, err)
	t.Cleanup(func() { logrus.SetOutput(os.Stdout) })

	require.Equal(t, logrus.DebugLevel, logrus.GetLevel())
	logrus.WithField("issue", 300).Debug("hello")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `"msg":"hello"`)
	require.Contains(t, string(data), `"issue":300`)
}

func TestSetupUnknownLevel(t *testing.T) {
	_, err := Setup("LOUD", "")
	require.ErrorContains(t, err, "unknown log level")
}
