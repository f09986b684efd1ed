package telemetry

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderWritesJSONLines(t *testing.T) {
	var buf bytes.Buffer
	rec := NewRecorder(&buf)

	rec.Record(Sample{Tick: 1, Phase: "ready"})
	rec.Record(Sample{Tick: 2, Phase: "double_support", FootLift: 3.5})

	scanner := bufio.NewScanner(&buf)
	var samples []Sample
	for scanner.Scan() {
		var s Sample
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &s))
		samples = append(samples, s)
	}
	require.Len(t, samples, 2)

	assert.Equal(t, uint64(1), samples[0].Tick)
	assert.Equal(t, uint64(2), samples[1].Tick)
	assert.Equal(t, 3.5, samples[1].FootLift)
	assert.NotEmpty(t, samples[0].Session)
	assert.Equal(t, samples[0].Session, samples[1].Session, "one session per recorder")
	assert.Equal(t, rec.Session(), samples[0].Session)
}

func TestRecordersGetDistinctSessions(t *testing.T) {
	a := NewRecorder(&bytes.Buffer{})
	b := NewRecorder(&bytes.Buffer{})
	assert.NotEqual(t, a.Session(), b.Session())
}

type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestRecorderSwallowsWriteErrors(t *testing.T) {
	rec := NewRecorder(brokenWriter{})
	assert.NotPanics(t, func() {
		rec.Record(Sample{Tick: 1})
		rec.Record(Sample{Tick: 2})
	})
}
