package validate

import (
	"context"
	"testing"

	"haspd/internal/designer"
	"haspd/internal/devices"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChecker struct {
	known map[string]bool
}

func (f *fakeChecker) ValidateEntityExists(_ context.Context, entityID string) (bool, string) {
	if f.known[entityID] {
		return true, ""
	}
	return false, "entity not found"
}

type fakeFinder struct {
	device *devices.Device
	err    error
}

func (f *fakeFinder) FindDevice(_ context.Context, _ string) (*devices.Device, error) {
	return f.device, f.err
}

func onlinePanel() *devices.Device {
	return &devices.Device{
		DeviceID:   "abc123",
		Name:       "Kitchen Panel",
		Model:      "Lanbon L8",
		Online:     true,
		Resolution: &devices.Resolution{Width: 480, Height: 320, Model: "Lanbon L8"},
	}
}

func newTestService(known map[string]bool, finder *fakeFinder) *Service {
	return NewService(&fakeChecker{known: known}, finder)
}

func TestValidConfigurationPasses(t *testing.T) {
	svc := newTestService(map[string]bool{"light.kitchen": true}, &fakeFinder{device: onlinePanel()})

	objects := []designer.Object{
		{ID: 1, Type: "btn", X: 10, Y: 20, Width: 100, Height: 50, EntityID: "light.kitchen", Page: 1},
		{ID: 2, Type: "label", X: 10, Y: 100, Width: 100, Height: 30, Page: 1},
	}

	res := svc.Configuration(context.Background(), objects, "abc123", DefaultOptions())
	assert.True(t, res.Passed)
	assert.Empty(t, res.Errors)
	assert.Empty(t, res.Warnings)
}

func TestMissingEntityFlagged(t *testing.T) {
	svc := newTestService(map[string]bool{}, &fakeFinder{device: onlinePanel()})

	objects := []designer.Object{
		{ID: 1, Type: "btn", X: 0, Y: 0, Width: 50, Height: 30, EntityID: "light.gone", Page: 1},
	}

	res := svc.Configuration(context.Background(), objects, "abc123", DefaultOptions())
	assert.False(t, res.Passed)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, TypeEntity, res.Errors[0].Type)
	assert.Equal(t, "light.gone", res.Errors[0].EntityID)
	require.NotNil(t, res.Errors[0].ObjectID)
	assert.Equal(t, 1, *res.Errors[0].ObjectID)
}

func TestMissingEntityFlagsEveryReferencingObject(t *testing.T) {
	svc := newTestService(map[string]bool{}, &fakeFinder{device: onlinePanel()})

	objects := []designer.Object{
		{ID: 1, Type: "btn", X: 0, Y: 0, Width: 50, Height: 30, EntityID: "light.gone", Page: 1},
		{ID: 2, Type: "sw", X: 100, Y: 0, Width: 50, Height: 30, EntityID: "light.gone", Page: 1},
	}

	res := svc.Configuration(context.Background(), objects, "abc123", DefaultOptions())
	assert.Len(t, res.Errors, 2)
}

func TestOutOfBounds(t *testing.T) {
	svc := newTestService(map[string]bool{}, &fakeFinder{device: onlinePanel()})

	// x=450, w=100 overruns a 480px-wide panel
	objects := []designer.Object{
		{ID: 1, Type: "btn", X: 450, Y: 20, Width: 100, Height: 50, Page: 1},
	}

	res := svc.Configuration(context.Background(), objects, "abc123", DefaultOptions())
	assert.False(t, res.Passed)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, TypeCoordinate, res.Errors[0].Type)
}

func TestInBoundsButtonPasses(t *testing.T) {
	svc := newTestService(map[string]bool{}, &fakeFinder{device: onlinePanel()})

	objects := []designer.Object{
		{ID: 1, Type: "btn", X: 10, Y: 20, Width: 100, Height: 50, Page: 1},
	}

	res := svc.Configuration(context.Background(), objects, "abc123", DefaultOptions())
	assert.True(t, res.Passed)
}

func TestDuplicateObjectIDs(t *testing.T) {
	svc := newTestService(map[string]bool{}, &fakeFinder{device: onlinePanel()})

	objects := []designer.Object{
		{ID: 1, Type: "btn", X: 0, Y: 0, Width: 50, Height: 30, Page: 1},
		{ID: 1, Type: "label", X: 200, Y: 0, Width: 50, Height: 30, Page: 1},
	}

	res := svc.Configuration(context.Background(), objects, "abc123", DefaultOptions())
	assert.False(t, res.Passed)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, TypeObjectID, res.Errors[0].Type)
}

func TestOverlapIsWarningOnly(t *testing.T) {
	svc := newTestService(map[string]bool{}, &fakeFinder{device: onlinePanel()})

	objects := []designer.Object{
		{ID: 1, Type: "btn", X: 0, Y: 0, Width: 100, Height: 100, Page: 1},
		{ID: 2, Type: "btn", X: 50, Y: 50, Width: 100, Height: 100, Page: 1},
	}

	res := svc.Configuration(context.Background(), objects, "abc123", DefaultOptions())
	assert.True(t, res.Passed, "overlaps never block")
	assert.Empty(t, res.Errors)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, TypeOverlap, res.Warnings[0].Type)
}

func TestNoOverlapAcrossPages(t *testing.T) {
	svc := newTestService(map[string]bool{}, &fakeFinder{device: onlinePanel()})

	objects := []designer.Object{
		{ID: 1, Type: "btn", X: 0, Y: 0, Width: 100, Height: 100, Page: 1},
		{ID: 2, Type: "btn", X: 0, Y: 0, Width: 100, Height: 100, Page: 2},
	}

	res := svc.Configuration(context.Background(), objects, "abc123", DefaultOptions())
	assert.Empty(t, res.Warnings)
}

func TestTouchingEdgesDoNotOverlap(t *testing.T) {
	a := designer.Object{X: 0, Y: 0, Width: 100, Height: 50}
	b := designer.Object{X: 100, Y: 0, Width: 100, Height: 50}
	assert.False(t, rectanglesOverlap(a, b))
}

func TestUnknownDeviceShortCircuits(t *testing.T) {
	svc := newTestService(map[string]bool{}, &fakeFinder{device: nil})

	// duplicate ids on purpose: they must not be reported once the
	// device check fails
	objects := []designer.Object{
		{ID: 1, Type: "btn", X: 0, Y: 0, Width: 50, Height: 30, Page: 1},
		{ID: 1, Type: "btn", X: 100, Y: 0, Width: 50, Height: 30, Page: 1},
	}

	res := svc.Configuration(context.Background(), objects, "missing", DefaultOptions())
	assert.False(t, res.Passed)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, TypeDevice, res.Errors[0].Type)
}

func TestOfflineDeviceBlocks(t *testing.T) {
	dev := onlinePanel()
	dev.Online = false
	svc := newTestService(map[string]bool{}, &fakeFinder{device: dev})

	res := svc.Configuration(context.Background(), nil, "abc123", DefaultOptions())
	assert.False(t, res.Passed)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, TypeDevice, res.Errors[0].Type)
	assert.Contains(t, res.Errors[0].Message, "offline")
}

func TestPageRecordsSkipBoundsAndOverlap(t *testing.T) {
	svc := newTestService(map[string]bool{}, &fakeFinder{device: onlinePanel()})

	objects := []designer.Object{
		{ID: 0, Type: "page", Page: 1},
		{ID: 1, Type: "btn", X: 0, Y: 0, Width: 50, Height: 30, Page: 1},
	}

	res := svc.Configuration(context.Background(), objects, "abc123", DefaultOptions())
	assert.True(t, res.Passed)
	assert.Empty(t, res.Warnings)
}

func TestDisabledChecksSkip(t *testing.T) {
	svc := newTestService(map[string]bool{}, &fakeFinder{device: nil})

	objects := []designer.Object{
		{ID: 1, Type: "btn", X: 0, Y: 0, Width: 50, Height: 30, EntityID: "light.gone", Page: 1},
	}

	res := svc.Configuration(context.Background(), objects, "missing", Options{})
	assert.True(t, res.Passed)
	assert.Empty(t, res.Errors)
}
