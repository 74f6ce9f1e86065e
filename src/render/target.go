package render

import (
	"errors"
	"image"
	"image/png"
	"io"
	"sync"
	"sync/atomic"

	"github.com/Akima-zed/teleSport/src/render/uihelpers"
)

// ErrNothingRendered is returned when exporting a target that shows no chart.
var ErrNothingRendered = errors.New("render: no chart on target")

// Surface is a mount point a Renderer can draw into.
type Surface interface {
	ID() string
	Mounted() bool
	// Size is the pixel size charts should be rendered at.
	Size() (int, int)
	// Present replaces the displayed image; nil clears it.
	Present(image.Image)
}

// ImageTarget is an in-memory Surface: the rendered chart is kept as an image and can be
// exported as PNG. It starts unmounted, like a canvas that is not attached yet.
type ImageTarget struct {
	id      string
	width   int
	height  int
	mounted atomic.Bool

	mu     sync.Mutex
	img    image.Image
	frames int
}

// NewImageTarget sizes the target for a viewport width using the responsive chart rules.
func NewImageTarget(id string, viewportW int) *ImageTarget {
	w, h := uihelpers.ComputeChartDimensions(viewportW)
	return &ImageTarget{id: id, width: w, height: h}
}

func (t *ImageTarget) ID() string       { return t.id }
func (t *ImageTarget) Mounted() bool    { return t.mounted.Load() }
func (t *ImageTarget) Size() (int, int) { return t.width, t.height }

// Mount marks the target attached.
func (t *ImageTarget) Mount() { t.mounted.Store(true) }

// Unmount marks the target detached. The last image stays until a chart is destroyed.
func (t *ImageTarget) Unmount() { t.mounted.Store(false) }

// Present stores img and counts non-nil frames.
func (t *ImageTarget) Present(img image.Image) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.img = img
	if img != nil {
		t.frames++
	}
}

// Image returns the displayed image, nil when cleared.
func (t *ImageTarget) Image() image.Image {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.img
}

// Frames counts how many images were presented.
func (t *ImageTarget) Frames() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.frames
}

// WritePNG encodes the displayed image.
func (t *ImageTarget) WritePNG(w io.Writer) error {
	img := t.Image()
	if img == nil {
		return ErrNothingRendered
	}
	return png.Encode(w, img)
}
