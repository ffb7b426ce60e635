package poll

import "time"

// Clock abstracts wall time so the acquisition loop can be driven by
// a fake clock in tests.
type Clock interface {
	Now() time.Time
	// Sleep blocks for d or until the done channel closes
	Sleep(d time.Duration, done <-chan struct{})
}

// SystemClock is the real clock used outside tests
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

func (SystemClock) Sleep(d time.Duration, done <-chan struct{}) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-done:
	}
}
