package services

import "github.com/arcline-labs/chartpress/internal/core/domain"

// FitTransform computes the absolute transform that centres an element
// of size elemW x elemH inside a page of pageW x pageH, leaving margin
// clear on every side.
//
// Scaling policy: uniform. One scale factor is applied to both axes so
// the chart's aspect ratio is preserved; the scaled bounding box
// exactly touches the target box on its tighter axis and is centred on
// the other.
func FitTransform(elemW, elemH, pageW, pageH, margin float64) domain.Transform {
	targetW := pageW - 2*margin
	targetH := pageH - 2*margin

	scale := targetW / elemW
	if s := targetH / elemH; s < scale {
		scale = s
	}

	return domain.Transform{
		ScaleX:     scale,
		ScaleY:     scale,
		TranslateX: (pageW - elemW*scale) / 2,
		TranslateY: (pageH - elemH*scale) / 2,
	}
}
