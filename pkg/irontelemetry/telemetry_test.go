package irontelemetry

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func initDefault(t *testing.T, ft *fakeTransport) *Client {
	t.Helper()
	client, err := Init(testDSN, WithTransport(ft), WithStorageDir(t.TempDir()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close() })
	return client
}

func TestPackageLevel_NotInitialized(t *testing.T) {
	require.NoError(t, Close()) // ensure no default client

	result := CaptureMessage(context.Background(), "hi", SeverityInfo)
	require.False(t, result.Success)
	require.Equal(t, errNotInitialized, result.Error)

	result = CaptureException(context.Background(), errors.New("boom"), nil)
	require.False(t, result.Success)
	require.Equal(t, errNotInitialized, result.Error)

	require.Nil(t, CurrentClient())
	require.Nil(t, StartJourney("nope"))
	_, err := StartStep("nope", "")
	require.Error(t, err)
	require.NoError(t, Flush(context.Background()))

	// Context setters are silent no-ops.
	AddBreadcrumb("ignored", CategoryCustom, SeverityInfo, nil)
	SetUser("u-1", "", nil)
	SetTag("k", "v")
	SetExtra("k", "v")
	ClearUser()
}

func TestPackageLevel_InitInstallsDefault(t *testing.T) {
	ft := newFakeTransport()
	client := initDefault(t, ft)

	require.Same(t, client, CurrentClient())

	SetTag("region", "us-east-1")
	AddBreadcrumb("warmed up", CategoryConsole, SeverityDebug, nil)

	result := CaptureMessage(context.Background(), "hello", SeverityInfo)
	require.True(t, result.Success)

	sent := ft.sentEvents()
	require.Len(t, sent, 1)
	require.Equal(t, "us-east-1", sent[0].Tags["region"])
	require.Len(t, sent[0].Breadcrumbs, 1)
}

func TestPackageLevel_JourneyFlow(t *testing.T) {
	ft := newFakeTransport()
	initDefault(t, ft)

	j := StartJourney("onboarding")
	require.NotNil(t, j)

	step, err := StartStep("welcome", "ui")
	require.NoError(t, err)

	CaptureMessage(context.Background(), "hi", SeverityInfo)

	step.End()
	j.End()

	sent := ft.sentEvents()
	require.Len(t, sent, 1)
	require.NotNil(t, sent[0].Journey)
	require.Equal(t, "onboarding", sent[0].Journey.Name)
	require.Equal(t, "welcome", sent[0].Journey.CurrentStep)
}

func TestPackageLevel_CloseUninstalls(t *testing.T) {
	ft := newFakeTransport()
	initDefault(t, ft)

	require.NoError(t, Close())
	require.Nil(t, CurrentClient())
	require.Equal(t, 1, ft.closes)

	// Repeated Close is a no-op.
	require.NoError(t, Close())
	require.Equal(t, 1, ft.closes)
}
