package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTriggersCommand(t *testing.T) {
	t.Run("lists built-ins and configured triggers", func(t *testing.T) {
		path := writeConfig(t, testConfigJSON)

		output, err := executeCommand(t, "", "triggers", "--config", path)
		require.NoError(t, err)

		lines := strings.Split(strings.TrimSpace(output), "\n")
		require.Len(t, lines, 5)
		assert.Contains(t, lines[0], "PATTERN")
		assert.Contains(t, lines[1], "/groupid")
		assert.Contains(t, lines[1], "report_id")
		assert.Contains(t, lines[2], "#groupinfo")
		assert.Contains(t, lines[3], "cat")
		assert.Contains(t, lines[3], "http://img/cat.png")
		assert.Contains(t, lines[4], "dog")
		assert.Contains(t, lines[4], "send_image")
	})

	t.Run("invalid config", func(t *testing.T) {
		path := writeConfig(t, `{"allowed_group_ids": [55]}`)

		_, err := executeCommand(t, "", "triggers", "--config", path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to load config")
	})
}
