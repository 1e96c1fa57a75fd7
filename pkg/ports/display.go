package ports

import "image"

// Detections is the set of categories known at a point in the video.
// A nil Categories slice means no result was known.
type Detections struct {
	TimestampMs int
	Categories  []Category
}

// Seconds returns the timestamp in seconds.
func (d Detections) Seconds() float64 {
	return float64(d.TimestampMs) / 1000
}

// Known reports whether any classification result was known.
func (d Detections) Known() bool {
	return d.Categories != nil
}

// Preview is a display-ready frame together with the categories computed for it.
type Preview struct {
	TimestampMs int
	Image       image.Image
	Categories  []Category
}

// DisplaySink receives run output for presentation.
type DisplaySink interface {
	// ShowPreview replaces the currently shown preview.
	ShowPreview(p Preview)

	// AppendDetections appends an entry to the detections log.
	AppendDetections(d Detections)

	// ShowError reports a run failure to the user.
	ShowError(err error)
}

// ProgressSink receives run progress in whole seconds.
type ProgressSink interface {
	SetMax(seconds int)
	SetProgress(seconds int)
}

// CloneCategories returns a copy of categories, preserving nil.
func CloneCategories(categories []Category) []Category {
	if categories == nil {
		return nil
	}
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}
