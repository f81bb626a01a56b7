package templates

import (
	"fmt"
	"time"
)

// Option pattern
type Option func(*EmailData)

func WithTime(t time.Time) Option {
	return func(d *EmailData) {
		d.Time = t.UTC().Format("02 January 2006, 15:04")
	}
}

func WithActionURL(url string) Option { return func(d *EmailData) { d.ActionURL = url } }

// WithExpiresIn sets both the absolute expiry and a human readable lifetime.
func WithExpiresIn(now time.Time, dur time.Duration) Option {
	return func(d *EmailData) {
		utc := now.Add(dur).UTC()
		d.ExpiresAt = utc
		d.ExpiresAtText = utc.Format("02 January 2006, 15:04")
		d.ExpiresIn = humanDuration(dur)
	}
}

func humanDuration(d time.Duration) string {
	switch {
	case d >= time.Hour && d%time.Hour == 0:
		if h := int(d / time.Hour); h != 1 {
			return fmt.Sprintf("%d hours", h)
		}
		return "1 hour"
	case d >= time.Minute:
		return fmt.Sprintf("%d minutes", int(d/time.Minute))
	default:
		return fmt.Sprintf("%d seconds", int(d/time.Second))
	}
}

// NewEmailData fills the common fields and applies the options.
func NewEmailData(brand Brand, typ string, name, email string, opts ...Option) EmailData {
	d := EmailData{
		Name:  name,
		Email: email,
		Type:  typ,
		Brand: brand,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}
