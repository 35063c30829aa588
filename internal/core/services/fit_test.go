package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const epsilon = 1e-9

func TestFitTransform(t *testing.T) {
	tests := []struct {
		name                       string
		elemW, elemH, pageW, pageH float64
		margin                     float64
	}{
		{name: "wide element on wide page", elemW: 40, elemH: 30, pageW: 100, pageH: 50},
		{name: "tall element", elemW: 10, elemH: 80, pageW: 100, pageH: 50},
		{name: "element larger than page", elemW: 500, elemH: 400, pageW: 100, pageH: 50},
		{name: "exact fit", elemW: 100, elemH: 50, pageW: 100, pageH: 50},
		{name: "with margin", elemW: 40, elemH: 30, pageW: 100, pageH: 50, margin: 5},
		{name: "square in portrait", elemW: 20, elemH: 20, pageW: 30, pageH: 90, margin: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := FitTransform(tt.elemW, tt.elemH, tt.pageW, tt.pageH, tt.margin)

			// Uniform scale.
			assert.InDelta(t, tr.ScaleX, tr.ScaleY, epsilon)

			// Scaled box fits inside the margin-reduced target.
			scaledW := tt.elemW * tr.ScaleX
			scaledH := tt.elemH * tr.ScaleY
			assert.LessOrEqual(t, scaledW, tt.pageW-2*tt.margin+epsilon)
			assert.LessOrEqual(t, scaledH, tt.pageH-2*tt.margin+epsilon)

			// Tighter axis is filled exactly.
			filledW := scaledW >= tt.pageW-2*tt.margin-epsilon
			filledH := scaledH >= tt.pageH-2*tt.margin-epsilon
			assert.True(t, filledW || filledH, "one axis must touch the target box")

			// Centred on both axes.
			assert.InDelta(t, (tt.pageW-scaledW)/2, tr.TranslateX, epsilon)
			assert.InDelta(t, (tt.pageH-scaledH)/2, tr.TranslateY, epsilon)
		})
	}
}

func TestFitTransformUpscalesSmallElements(t *testing.T) {
	tr := FitTransform(10, 5, 100, 50, 0)
	assert.InDelta(t, 10.0, tr.ScaleX, epsilon)
	assert.InDelta(t, 0.0, tr.TranslateX, epsilon)
	assert.InDelta(t, 0.0, tr.TranslateY, epsilon)
}
