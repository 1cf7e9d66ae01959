package snapshot

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foerderdata/fundwatch/internal/domain"
)

func TestParseState(t *testing.T) {
	t.Parallel()

	for _, valid := range []string{"all", "current", "retired"} {
		state, err := parseState(valid)
		require.NoError(t, err)
		assert.Equal(t, domain.SnapshotState(valid), state)
	}

	_, err := parseState("live")
	assert.ErrorContains(t, err, "unknown state")
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "kurz", truncate("kurz", 10))
	assert.Equal(t, "exakt", truncate("exakt", 5))
	assert.Equal(t, "Förd…", truncate("Förderung", 5))
}

func TestRenderTable(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	renderTable(&buf, []domain.SnapshotRow{
		{
			Program:     domain.Program{IDURL: "bund-programm-a", Title: "Programm A"},
			LastUpdated: time.Date(2026, 3, 3, 3, 0, 0, 0, time.UTC),
		},
	})

	out := buf.String()
	assert.Contains(t, out, "bund-programm-a")
	assert.Contains(t, out, "Programm A")
	assert.Contains(t, out, "2026-03-03 03:00")
	assert.Contains(t, out, "TOTAL")
}
