package eventbus_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/colonyops/rowsync/internal/core/eventbus"
	"github.com/colonyops/rowsync/internal/core/eventbus/testbus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestRegisterDebugLogger(t *testing.T) {
	tb := testbus.New(t)

	var buf bytes.Buffer
	eventbus.RegisterDebugLogger(tb.EventBus, zerolog.New(&buf).Level(zerolog.DebugLevel))

	tb.PublishBatchCommitted(eventbus.BatchCommittedPayload{Owner: "o1", BatchID: 1, Ops: []string{"insert_rows [[0,0]]"}})
	tb.PublishDiagnosticReported(eventbus.DiagnosticReportedPayload{Owner: "o1", Op: "delete_rows", Err: errors.New("boom")})

	tb.AssertPublished(t, eventbus.EventBatchCommitted)
	tb.AssertPublished(t, eventbus.EventDiagnosticReported)

	out := buf.String()
	assert.Contains(t, out, `"event":"batch.committed"`)
	assert.Contains(t, out, `"diagnostic":"boom"`)
}
