package normalization

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sinkKind string

const (
	sinkLog    sinkKind = "log"
	sinkNATS   sinkKind = "nats"
	sinkSQLite sinkKind = "sqlite"
)

func newSinkNormalizer() *Normalizer[sinkKind] {
	return NewNormalizer("sink", map[string]sinkKind{
		"log":    sinkLog,
		"nats":   sinkNATS,
		"sqlite": sinkSQLite,
	}, sinkLog)
}

func TestNormalizer_Normalize(t *testing.T) {
	n := newSinkNormalizer()

	tests := []struct {
		name     string
		input    string
		expected sinkKind
	}{
		{"exact match", "nats", sinkNATS},
		{"case insensitive", "SQLite", sinkSQLite},
		{"with spaces", "  log  ", sinkLog},
		{"invalid falls back to default", "kafka", sinkLog},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, n.Normalize(tt.input))
		})
	}
}

func TestNormalizer_Parse(t *testing.T) {
	n := newSinkNormalizer()

	v, err := n.Parse("")
	require.NoError(t, err)
	assert.Equal(t, sinkLog, v)

	_, err = n.Parse("kafka")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid sink")
	assert.Contains(t, err.Error(), "[log nats sqlite]")

	assert.Equal(t, []string{"log", "nats", "sqlite"}, n.ValidKeys())
}
