// Package display delivers run output to display sinks off the sampling goroutine.
package display

import (
	"sync"

	"github.com/user/vidaction/pkg/ports"
)

// Dispatcher implements ports.DisplaySink and ports.ProgressSink by queueing
// every call and replaying it on a single goroutine in arrival order.
// Calls never block on the downstream sinks.
//
// Preview images are passed through without copying; producers must not
// reuse an image after handing it over.
type Dispatcher struct {
	display  ports.DisplaySink
	progress ports.ProgressSink
	logger   ports.Logger

	mu      sync.Mutex
	cond    *sync.Cond
	queue   []func()
	busy    bool
	closed  bool
	stopped chan struct{}
}

// NewDispatcher starts a dispatcher in front of display and progress.
// Either may be nil, in which case those calls are dropped.
func NewDispatcher(display ports.DisplaySink, progress ports.ProgressSink, logger ports.Logger) *Dispatcher {
	d := &Dispatcher{
		display:  display,
		progress: progress,
		logger:   logger.WithComponent("display"),
		stopped:  make(chan struct{}),
	}
	d.cond = sync.NewCond(&d.mu)
	go d.loop()
	return d
}

func (d *Dispatcher) loop() {
	defer close(d.stopped)
	for {
		d.mu.Lock()
		for len(d.queue) == 0 && !d.closed {
			d.cond.Wait()
		}
		if len(d.queue) == 0 && d.closed {
			d.mu.Unlock()
			return
		}
		fn := d.queue[0]
		d.queue[0] = nil
		d.queue = d.queue[1:]
		d.busy = true
		d.mu.Unlock()

		fn()

		d.mu.Lock()
		d.busy = false
		d.cond.Broadcast()
		d.mu.Unlock()
	}
}

func (d *Dispatcher) enqueue(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		d.logger.Debug("Dropping display update after close")
		return
	}
	d.queue = append(d.queue, fn)
	d.cond.Broadcast()
}

// ShowPreview queues a preview.
func (d *Dispatcher) ShowPreview(p ports.Preview) {
	if d.display == nil {
		return
	}
	p.Categories = ports.CloneCategories(p.Categories)
	d.enqueue(func() { d.display.ShowPreview(p) })
}

// AppendDetections queues a detections log entry.
func (d *Dispatcher) AppendDetections(det ports.Detections) {
	if d.display == nil {
		return
	}
	det.Categories = ports.CloneCategories(det.Categories)
	d.enqueue(func() { d.display.AppendDetections(det) })
}

// ShowError queues an error report.
func (d *Dispatcher) ShowError(err error) {
	if d.display == nil {
		return
	}
	d.enqueue(func() { d.display.ShowError(err) })
}

// SetMax queues a progress maximum.
func (d *Dispatcher) SetMax(seconds int) {
	if d.progress == nil {
		return
	}
	d.enqueue(func() { d.progress.SetMax(seconds) })
}

// SetProgress queues a progress update.
func (d *Dispatcher) SetProgress(seconds int) {
	if d.progress == nil {
		return
	}
	d.enqueue(func() { d.progress.SetProgress(seconds) })
}

// Flush blocks until every queued call has been delivered.
func (d *Dispatcher) Flush() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for len(d.queue) > 0 || d.busy {
		d.cond.Wait()
	}
}

// Close delivers what is queued and stops the dispatcher.
// Calls made after Close are dropped.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		d.cond.Broadcast()
	}
	d.mu.Unlock()
	<-d.stopped
}

var (
	_ ports.DisplaySink  = (*Dispatcher)(nil)
	_ ports.ProgressSink = (*Dispatcher)(nil)
)
