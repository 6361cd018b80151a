package providers

import (
	"time"

	"github.com/bububa/atomic-assistant/components/systemprompt"
)

// Clock provides the current time so the model can resolve relative dates
type Clock struct {
	title    string
	location *time.Location
	now      func() time.Time
}

var _ systemprompt.ContextProvider = (*Clock)(nil)

// NewClock returns a Clock in loc, nil loc means local time
func NewClock(loc *time.Location) *Clock {
	if loc == nil {
		loc = time.Local
	}
	return &Clock{
		title:    "Current time",
		location: loc,
		now:      time.Now,
	}
}

// WithNow overrides the time source
func (c *Clock) WithNow(fn func() time.Time) *Clock {
	c.now = fn
	return c
}

func (c *Clock) Title() string {
	return c.title
}

func (c *Clock) Info() string {
	now := c.now().In(c.location)
	return now.Format(time.RFC3339) + " (" + now.Format("Monday") + ", time zone " + c.location.String() + ")"
}
