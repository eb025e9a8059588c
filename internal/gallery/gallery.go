// Package gallery implements the per-product image carousel.
package gallery

import (
	"context"
	"log/slog"
	"strconv"
	"sync"

	"github.com/TiagoSD22/amigurumi-store/internal/domain"
	"github.com/TiagoSD22/amigurumi-store/internal/events"
	"github.com/TiagoSD22/amigurumi-store/pkg/logger"
)

// Orientation is the aspect class of a loaded image.
type Orientation string

const (
	OrientationUnknown   Orientation = "unknown"
	OrientationLandscape Orientation = "landscape"
	OrientationPortrait  Orientation = "portrait"
	OrientationSquare    Orientation = "square"
)

// Aspect ratio bounds of the square band, inclusive.
const (
	landscapeAbove = 1.1
	portraitBelow  = 0.9
)

// NoImage is returned by Current for a product without images.
var NoImage = domain.ProductImage{}

// Classify maps natural image dimensions to an orientation. Dimensions that
// are not positive carry no usable metadata and classify as square.
func Classify(width, height int) Orientation {
	if width <= 0 || height <= 0 {
		return OrientationSquare
	}
	ratio := float64(width) / float64(height)
	switch {
	case ratio > landscapeAbove:
		return OrientationLandscape
	case ratio < portraitBelow:
		return OrientationPortrait
	default:
		return OrientationSquare
	}
}

type imageStatus struct {
	orientation Orientation
	failed      bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithRecorder sets the event sink for image load notifications.
func WithRecorder(r events.Recorder) Option {
	return func(c *Controller) { c.recorder = r }
}

// WithLogger sets the logger for image failures.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithName labels events emitted by the controller, typically with the
// product id.
func WithName(name string) Option {
	return func(c *Controller) { c.name = name }
}

// Controller is the cursor over one product's images. The first image is
// shown initially; navigation wraps in both directions.
type Controller struct {
	name     string
	recorder events.Recorder
	logger   *slog.Logger

	mu     sync.Mutex
	images []domain.ProductImage
	status []imageStatus
	index  int
}

// New creates a controller over a copy of images.
func New(images []domain.ProductImage, opts ...Option) *Controller {
	c := &Controller{
		name:     "gallery",
		recorder: events.Nop{},
		logger:   slog.Default(),
		images:   append([]domain.ProductImage(nil), images...),
		status:   make([]imageStatus, len(images)),
	}
	for i := range c.status {
		c.status[i].orientation = OrientationUnknown
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logger.Component(c.logger, "gallery")
	return c
}

// Len is the number of images.
func (c *Controller) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.images)
}

// Index is the cursor position.
func (c *Controller) Index() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index
}

// HasMultiple reports whether navigation controls apply.
func (c *Controller) HasMultiple() bool {
	return c.Len() > 1
}

// Current returns the image under the cursor, or NoImage and false.
func (c *Controller) Current() (domain.ProductImage, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.images) == 0 {
		return NoImage, false
	}
	return c.images[c.index], true
}

// Next advances the cursor, wrapping from the last image to the first.
func (c *Controller) Next() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n := len(c.images); n > 1 {
		c.index = (c.index + 1) % n
	}
}

// Previous moves the cursor back, wrapping from the first image to the last.
func (c *Controller) Previous() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n := len(c.images); n > 1 {
		c.index = (c.index - 1 + n) % n
	}
}

// Goto jumps to image i. Out-of-range indexes are ignored.
func (c *Controller) Goto(i int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i < 0 || i >= len(c.images) {
		return false
	}
	c.index = i
	return true
}

// ImageLoaded records the natural size of image i once it has loaded and
// returns its orientation. Reporting the same image again reclassifies it.
func (c *Controller) ImageLoaded(ctx context.Context, i, width, height int) Orientation {
	o := Classify(width, height)

	c.mu.Lock()
	if i < 0 || i >= len(c.status) {
		c.mu.Unlock()
		return OrientationUnknown
	}
	c.status[i] = imageStatus{orientation: o}
	c.mu.Unlock()

	c.recorder.Record(ctx, events.New(events.TypeImageLoaded, c.name, map[string]string{
		"index":       strconv.Itoa(i),
		"width":       strconv.Itoa(width),
		"height":      strconv.Itoa(height),
		"orientation": string(o),
	}))
	return o
}

// ImageFailed marks image i as failed so a placeholder can be shown. The
// cursor does not move.
func (c *Controller) ImageFailed(ctx context.Context, i int, err error) {
	c.mu.Lock()
	if i < 0 || i >= len(c.status) {
		c.mu.Unlock()
		return
	}
	c.status[i].failed = true
	url := c.images[i].URL
	c.mu.Unlock()

	attrs := map[string]string{"index": strconv.Itoa(i), "url": url}
	if err != nil {
		attrs["error"] = err.Error()
	}
	c.logger.WarnContext(ctx, "image failed to load", slog.Int("index", i), slog.String("url", url))
	c.recorder.Record(ctx, events.New(events.TypeImageFailed, c.name, attrs))
}

// Orientation returns the recorded orientation of image i.
func (c *Controller) Orientation(i int) Orientation {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i < 0 || i >= len(c.status) {
		return OrientationUnknown
	}
	return c.status[i].orientation
}

// Failed reports whether image i failed to load.
func (c *Controller) Failed(i int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return i >= 0 && i < len(c.status) && c.status[i].failed
}

// Snapshot is the serializable carousel state.
type Snapshot struct {
	Index       int                   `json:"index"`
	Length      int                   `json:"length"`
	HasMultiple bool                  `json:"has_multiple"`
	Current     *domain.ProductImage  `json:"current"`
	Orientation Orientation           `json:"orientation"`
	Failed      bool                  `json:"failed"`
	Images      []domain.ProductImage `json:"images,omitempty"`
}

// Snapshot captures the carousel. Images are listed only when controls apply.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Snapshot{
		Index:       c.index,
		Length:      len(c.images),
		HasMultiple: len(c.images) > 1,
		Orientation: OrientationUnknown,
	}
	if len(c.images) == 0 {
		return s
	}
	current := c.images[c.index]
	s.Current = &current
	s.Orientation = c.status[c.index].orientation
	s.Failed = c.status[c.index].failed
	if s.HasMultiple {
		s.Images = append([]domain.ProductImage(nil), c.images...)
	}
	return s
}
