package nats

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubjectsAndKeys(t *testing.T) {
	assert.Equal(t, "labwiz.records.patent", SubjectForForm("patent"))
	assert.Equal(t, "labwiz.records.animal_lab", SubjectForForm("animal.lab"))
	assert.Equal(t, "patent.new", DraftKey("patent", ""))
	assert.Equal(t, "patent.c9v2", DraftKey("patent", "c9v2"))
}

func TestEmbeddedLifecycle(t *testing.T) {
	ctx := context.Background()

	ns, err := StartEmbeddedNATS(t.TempDir())
	require.NoError(t, err)

	nc, err := ConnectInProcess(ns)
	require.NoError(t, err)

	js, err := CreateJetStream(nc)
	require.NoError(t, err)

	stream, err := SetupStream(ctx, js)
	require.NoError(t, err)
	info, err := stream.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, StreamName, info.Config.Name)

	// Setup is idempotent.
	_, err = SetupStream(ctx, js)
	require.NoError(t, err)

	kv, err := SetupDrafts(ctx, js)
	require.NoError(t, err)
	_, err = kv.Put(ctx, DraftKey("patent", ""), []byte(`{}`))
	require.NoError(t, err)

	_, err = js.Publish(ctx, SubjectForForm("patent"), []byte(`{}`))
	require.NoError(t, err)

	require.NoError(t, Shutdown(nc, ns))
	assert.False(t, nc.IsConnected())
}

func TestShutdownNil(t *testing.T) {
	assert.NoError(t, Shutdown(nil, nil))
}
