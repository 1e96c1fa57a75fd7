package display

import "github.com/user/vidaction/pkg/ports"

type teeDisplay []ports.DisplaySink

// Tee returns a DisplaySink that forwards every call to each sink in order.
func Tee(sinks ...ports.DisplaySink) ports.DisplaySink {
	return teeDisplay(sinks)
}

func (t teeDisplay) ShowPreview(p ports.Preview) {
	for _, s := range t {
		s.ShowPreview(p)
	}
}

func (t teeDisplay) AppendDetections(d ports.Detections) {
	for _, s := range t {
		s.AppendDetections(d)
	}
}

func (t teeDisplay) ShowError(err error) {
	for _, s := range t {
		s.ShowError(err)
	}
}

type teeProgress []ports.ProgressSink

// TeeProgress returns a ProgressSink that forwards every call to each sink in order.
func TeeProgress(sinks ...ports.ProgressSink) ports.ProgressSink {
	return teeProgress(sinks)
}

func (t teeProgress) SetMax(seconds int) {
	for _, s := range t {
		s.SetMax(seconds)
	}
}

func (t teeProgress) SetProgress(seconds int) {
	for _, s := range t {
		s.SetProgress(seconds)
	}
}
