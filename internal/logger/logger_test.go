package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hasjob.log")
	closer, err := Setup("warn", path)
	require.NoError(t, err)
	t.Cleanup(func() { logrus.SetOutput(os.Stdout) })

	logrus.Info("dropped")
	logrus.WithField("board", "www").Warn("kept")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "dropped")
	assert.Contains(t, string(data), `"board":"www"`)
	assert.Equal(t, logrus.WarnLevel, logrus.GetLevel())
}

func TestSetup_BadLevel(t *testing.T) {
	_, err := Setup("loud", "")
	assert.Error(t, err)
}
