// Package clock abstracts the time source so window arithmetic can be
// driven deterministically in tests.
package clock

import (
	"sync"
	"time"
)

type Clock interface {
	Now() time.Time
}

var RealClockProvider = sync.OnceValue(func() Clock {
	return RealClock{}
})

type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now()
}

// NowFunc adapts a plain function to a Clock.
type NowFunc func() time.Time

func (f NowFunc) Now() time.Time {
	return f()
}
