package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"docgate/internal/policy"
	"docgate/internal/repository/memory"
)

func TestDocumentService_RecordsSpans(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	ctx := context.Background()
	svc := NewDocumentService(memory.NewDocumentMemory(), policy.New(""))

	_, err := svc.List(ctx, alice)
	require.NoError(t, err)
	_, err = svc.Get(ctx, alice, "missing")
	require.ErrorIs(t, err, policy.ErrNotFoundOrDenied)

	spans := sr.Ended()
	require.Len(t, spans, 2)

	assert.Equal(t, "DocumentService.List", spans[0].Name())
	assert.Equal(t, codes.Unset, spans[0].Status().Code)

	assert.Equal(t, "DocumentService.Get", spans[1].Name())
	assert.Equal(t, codes.Error, spans[1].Status().Code)
	var sawID bool
	for _, kv := range spans[1].Attributes() {
		if kv.Key == "docgate.document_id" {
			sawID = kv.Value.AsString() == "missing"
		}
	}
	assert.True(t, sawID)
}
