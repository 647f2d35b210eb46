package calib

import (
	"testing"

	"github.com/stretchr/testify/require"

	"rebar-inspect/pkg/geometry"
)

func TestComputeScale(t *testing.T) {
	s, err := ComputeScale(200, 100)
	require.NoError(t, err)
	require.InDelta(t, 2.0, s, 1e-9)

	// Linear in |pixelWidth|: drag direction is irrelevant.
	neg, err := ComputeScale(-200, 100)
	require.NoError(t, err)
	require.Equal(t, s, neg)

	double, err := ComputeScale(400, 100)
	require.NoError(t, err)
	require.InDelta(t, 2*s, double, 1e-9)

	// Zero only at zero pixel width.
	zero, err := ComputeScale(0, 100)
	require.NoError(t, err)
	require.Equal(t, 0.0, zero)
}

func TestComputeScaleRejectsBadReferenceLength(t *testing.T) {
	_, err := ComputeScale(200, 0)
	require.Error(t, err)
	_, err = ComputeScale(200, -5)
	require.Error(t, err)
}

func TestReferenceFrameNoise(t *testing.T) {
	require.True(t, ReferenceFrame{PixelWidth: 0, PhysicalLengthMm: 100}.Noise())
	require.True(t, ReferenceFrame{PixelWidth: 5, PhysicalLengthMm: 100}.Noise())
	require.True(t, ReferenceFrame{PixelWidth: -5, PhysicalLengthMm: 100}.Noise())
	require.False(t, ReferenceFrame{PixelWidth: 5.1, PhysicalLengthMm: 100}.Noise())
	require.False(t, ReferenceFrame{PixelWidth: 200, PhysicalLengthMm: 100}.Noise())
}

func TestConversionsRoundTrip(t *testing.T) {
	const scale = 2.5
	require.InDelta(t, 40.0, PixelsToMm(100, scale), 1e-9)
	require.InDelta(t, 100.0, MmToPixels(40, scale), 1e-9)
	require.InDelta(t, 123.0, PixelsToMm(MmToPixels(123, scale), scale), 1e-9)
}

func TestDiameterEstimateUsesMinorAxis(t *testing.T) {
	// 20x24 px box at 2 px/mm: minor side 20 px -> 10.0 mm.
	d, err := DiameterEstimateMm(geometry.NewRect(0, 0, 20, 24), 2)
	require.NoError(t, err)
	require.Equal(t, 10.0, d)

	// Rounded to one decimal.
	d, err = DiameterEstimateMm(geometry.NewRect(0, 0, 25, 31), 2)
	require.NoError(t, err)
	require.Equal(t, 12.5, d)

	_, err = DiameterEstimateMm(geometry.NewRect(0, 0, 20, 24), 0)
	require.Error(t, err)
}
