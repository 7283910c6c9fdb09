// Package clock позволяет подменять текущее время в расчётах и тестах.
package clock

import "time"

// Clock возвращает текущее время.
type Clock interface {
	Now() time.Time
}

// Real использует системные часы.
type Real struct{}

func (Real) Now() time.Time {
	return time.Now().UTC()
}

// Fake возвращает зафиксированное время, которое можно сдвигать вручную.
type Fake struct {
	now time.Time
}

// NewFake создаёт часы, остановленные на моменте t.
func NewFake(t time.Time) *Fake {
	return &Fake{now: t.UTC()}
}

func (c *Fake) Now() time.Time {
	return c.now
}

// Advance сдвигает часы на d.
func (c *Fake) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}
