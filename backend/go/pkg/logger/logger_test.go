package logger

import (
	"testing"

	"moihub_chatbot/backend/go/internal/models"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, logrus.InfoLevel, ParseLevel("not-a-level"))
}

func TestWithMethodsDoNotMutateReceiver(t *testing.T) {
	hook := test.NewGlobal()
	defer hook.Reset()

	base := New("chat_service", "", "")
	base.WithError(models.ErrorInfo{Message: "boom"}).Error("failed")
	base.Info("plain")

	entries := hook.AllEntries()
	require.Len(t, entries, 2)
	assert.Contains(t, entries[0].Data, "error")
	assert.NotContains(t, entries[1].Data, "error")
	assert.Equal(t, "chat_service", entries[1].Data["service_name"])
}
