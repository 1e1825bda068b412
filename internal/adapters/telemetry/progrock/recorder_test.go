package progrock_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/stash/internal/adapters/telemetry/progrock"
	"go.trai.ch/stash/internal/core/ports"
)

func TestNew(t *testing.T) {
	recorder := progrock.New()
	assert.NotNil(t, recorder)
	assert.NoError(t, recorder.Close())
}

func TestRecorder_SpanLifecycle(t *testing.T) {
	recorder := progrock.New()
	defer func() { assert.NoError(t, recorder.Close()) }()

	_, span := recorder.Start(t.Context(), "resolve /remote/app.apk")
	n, err := span.Write([]byte("copying\n"))
	require.NoError(t, err)
	assert.Equal(t, len("copying\n"), n)
	span.SetAttribute("checksum", "sha256:deadbeef")
	span.RecordError(errors.New("loader failed"))
	span.End()

	_, cached := recorder.Start(t.Context(), "resolve /remote/lib.so", ports.WithCached())
	cached.End()
}
