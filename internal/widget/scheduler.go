package widget

import "time"

// Scheduler runs one-shot callbacks after a delay. Scheduled callbacks are
// never cancelled by the widget.
type Scheduler interface {
	AfterFunc(d time.Duration, f func())
}

// TimerScheduler schedules callbacks on runtime timers.
type TimerScheduler struct{}

func (TimerScheduler) AfterFunc(d time.Duration, f func()) {
	time.AfterFunc(d, f)
}
