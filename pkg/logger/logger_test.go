package logger_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kerhoff/TodoWidget/pkg/logger"
)

func Test_New_Falls_Back_To_Info(t *testing.T) {
	t.Parallel()

	assert.Equal(t, logrus.DebugLevel, logger.New("debug").GetLevel())
	assert.Equal(t, logrus.InfoLevel, logger.New("chatty").GetLevel())
}

func Test_NewWithFile_Appends_To_Daily_File(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "logs")
	l, closer, err := logger.NewWithFile("info", dir)
	require.NoError(t, err)

	l.WithField("step", "boot").Info("hello from the widget")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(logger.LogFilePath(dir, time.Now()))
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello from the widget")
	assert.Contains(t, string(data), "step=boot")
}
