// Package form holds the current values of the generation form. Hosts push
// change events into a Collector and the studio reads a Snapshot when the
// user triggers a generation.
package form

import (
	"encoding/base64"
	"strings"
	"sync"

	"veostudio/internal/domain"
)

const (
	DefaultDurationSeconds = 5
	DefaultAspectRatio     = domain.AspectRatioSquare
	DefaultImageMIMEType   = "image/png"
)

// Options seeds a Collector. Zero values fall back to the package defaults.
type Options struct {
	DurationSeconds int
	AspectRatio     domain.AspectRatio
	ImageMIMEType   string
}

// Collector stores the latest value reported for each input. Fields are
// updated independently; nothing is validated beyond type coercion.
type Collector struct {
	mu        sync.RWMutex
	prompt    string
	image     string
	imageMIME string
	duration  int
	aspect    domain.AspectRatio
}

func NewCollector(opts Options) *Collector {
	duration := opts.DurationSeconds
	if duration <= 0 {
		duration = DefaultDurationSeconds
	}
	aspect := opts.AspectRatio
	if aspect == "" {
		aspect = DefaultAspectRatio
	}
	mime := strings.TrimSpace(opts.ImageMIMEType)
	if mime == "" {
		mime = DefaultImageMIMEType
	}
	return &Collector{duration: duration, aspect: aspect, imageMIME: mime}
}

func (c *Collector) SetPrompt(text string) {
	c.mu.Lock()
	c.prompt = text
	c.mu.Unlock()
}

// SetImage stores data base64 encoded. An empty payload is a change event
// without a selected file and keeps the previous image.
func (c *Collector) SetImage(data []byte) {
	if len(data) == 0 {
		return
	}
	encoded := base64.StdEncoding.EncodeToString(data)
	c.mu.Lock()
	c.image = encoded
	c.mu.Unlock()
}

func (c *Collector) ClearImage() {
	c.mu.Lock()
	c.image = ""
	c.mu.Unlock()
}

func (c *Collector) SetDuration(seconds int) {
	c.mu.Lock()
	c.duration = seconds
	c.mu.Unlock()
}

// SetDurationText coerces the raw text of a number input. Text without a
// leading integer stores 0, which leaves the duration to the service.
func (c *Collector) SetDurationText(text string) {
	seconds, _ := parseLeadingInt(text)
	c.SetDuration(seconds)
}

func (c *Collector) SetAspectRatio(ratio string) {
	c.mu.Lock()
	c.aspect = domain.AspectRatio(ratio)
	c.mu.Unlock()
}

// Snapshot returns a copy of the current inputs.
func (c *Collector) Snapshot() domain.Inputs {
	c.mu.RLock()
	defer c.mu.RUnlock()
	in := domain.Inputs{
		Prompt:          c.prompt,
		DurationSeconds: c.duration,
		AspectRatio:     c.aspect,
	}
	if c.image != "" {
		in.Image = &domain.SourceImage{Data: c.image, MIMEType: c.imageMIME}
	}
	return in
}

// parseLeadingInt parses an optional sign followed by decimal digits after
// leading whitespace, ignoring anything that follows them.
func parseLeadingInt(text string) (int, bool) {
	s := strings.TrimLeft(text, " \t\r\n")
	neg := false
	if s != "" && (s[0] == '-' || s[0] == '+') {
		neg = s[0] == '-'
		s = s[1:]
	}
	n, digits := 0, 0
	for _, r := range s {
		if r < '0' || r > '9' {
			break
		}
		n = n*10 + int(r-'0')
		digits++
		if n > 1<<30 {
			break
		}
	}
	if digits == 0 {
		return 0, false
	}
	if neg {
		n = -n
	}
	return n, true
}
