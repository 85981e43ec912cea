package soft

import (
	"fmt"
	"image"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/gekko3d/shadowpong/lightrt/core"
	"github.com/go-gl/mathgl/mgl32"
)

var (
	transparent = mgl32.Vec4{0, 0, 0, 0}
	opaqueBlack = mgl32.Vec4{0, 0, 0, 1}
)

type Options struct {
	Width  int
	Height int
	// Workers bounds the goroutines used inside one pass. Zero means NumCPU.
	Workers int
	// Text draws score text into the foreground. Nil disables text.
	Text *core.TextRenderer
	// Background is stretched over the whole frame. Nil means black.
	Background image.Image
}

// Targets are the render targets of one screen size. They are only ever
// replaced as a whole.
type Targets struct {
	Width      int
	Height     int
	Foreground *image.RGBA
	Occlusion  *core.OcclusionMap
	Shadow     *Target
	Light      *Target
	Background *Target
	Scene      *Target
}

// Pipeline renders frames on the CPU with the same passes and blend order as
// the GPU backend.
type Pipeline struct {
	mu sync.Mutex

	gen        *core.OcclusionGenerator
	text       *core.TextRenderer
	background image.Image

	// tasks feeds the band workers; closing stop makes every worker return.
	tasks   chan worker.Task
	stop    chan int
	workers int
	taskID  int
	closed  bool

	targets *Targets
}

func NewPipeline(cfg core.LightConfig, opts Options) (*Pipeline, error) {
	gen, err := core.NewOcclusionGenerator(cfg)
	if err != nil {
		return nil, err
	}
	if err := core.ValidateScreenSize(opts.Width, opts.Height); err != nil {
		return nil, err
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	p := &Pipeline{
		gen:        gen,
		text:       opts.Text,
		background: opts.Background,
		workers:    workers,
		tasks:      make(chan worker.Task, 4*workers),
		stop:       make(chan int),
	}

	t, err := p.newTargets(opts.Width, opts.Height)
	if err != nil {
		return nil, err
	}
	p.targets = t
	for i := range workers {
		worker.NewWorker(i, p.tasks, p.stop, time.Second, nil).Start()
	}
	return p, nil
}

func (p *Pipeline) newTargets(width, height int) (*Targets, error) {
	if err := core.ValidateScreenSize(width, height); err != nil {
		return nil, err
	}

	t := &Targets{
		Width:      width,
		Height:     height,
		Foreground: image.NewRGBA(image.Rect(0, 0, width, height)),
		Occlusion:  core.NewOcclusionMap(p.gen.RayCount()),
		Shadow:     NewTarget(width, height),
		Light:      NewTarget(width, height),
		Background: NewTarget(width, height),
		Scene:      NewTarget(width, height),
	}
	t.Background.Clear(opaqueBlack)
	if p.background != nil {
		t.Background.LoadImage(ScaleBackground(p.background, width, height))
	}
	return t, nil
}

// Resize recreates every target for the new size. On failure the pipeline is
// left without targets and RenderFrame reports ErrNotReady until a later
// Resize succeeds.
func (p *Pipeline) Resize(width, height int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return core.ErrNotReady
	}
	p.targets = nil
	t, err := p.newTargets(width, height)
	if err != nil {
		return fmt.Errorf("resize to %dx%d: %w", width, height, err)
	}
	p.targets = t
	return nil
}

// SetBackground replaces the background image and rescales it.
func (p *Pipeline) SetBackground(img image.Image) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.background = img
	if p.targets == nil {
		return
	}
	p.targets.Background.Clear(opaqueBlack)
	if img != nil {
		p.targets.Background.LoadImage(ScaleBackground(img, p.targets.Width, p.targets.Height))
	}
}

// Size returns the current target size, or zero when not ready.
func (p *Pipeline) Size() (int, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.targets == nil {
		return 0, 0
	}
	return p.targets.Width, p.targets.Height
}

// RenderFrame runs all passes for frame and returns the composite.
func (p *Pipeline) RenderFrame(frame core.Frame) (*image.RGBA, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	t := p.targets
	if t == nil {
		return nil, core.ErrNotReady
	}
	if frame.Size.X() <= 0 || frame.Size.Y() <= 0 {
		return nil, fmt.Errorf("%w: empty logical frame size %v", core.ErrFrameAborted, frame.Size)
	}

	params := frame.Light
	params.ScreenSize = mgl32.Vec2{float32(t.Width), float32(t.Height)}
	scale := mgl32.Vec2{float32(t.Width) / frame.Size.X(), float32(t.Height) / frame.Size.Y()}

	// 1. occluders
	clear(t.Foreground.Pix)
	DrawShapes(t.Foreground, frame.Occluders, scale)
	DrawTexts(t.Foreground, p.text, frame.Texts, scale)

	// 2.
	t.Shadow.Clear(opaqueBlack)
	t.Light.Clear(opaqueBlack)

	// 3. occlusion
	layer := core.RGBALayer{Img: t.Foreground}
	p.parallel(t.Occlusion.Len(), func(i0, i1 int) {
		for i := i0; i < i1; i++ {
			t.Occlusion.Texels[i] = p.gen.March(layer, params.Pos, i)
		}
	})

	// 4. shadow mask
	p.parallel(t.Height, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < t.Width; x++ {
				coord := core.FragmentCoord(x, y, t.Width, t.Height)
				t.Shadow.Set(x, y, core.ShadowFragment(coord, params, t.Occlusion))
			}
		}
	})

	// 5. glow
	p.parallel(t.Height, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < t.Width; x++ {
				coord := core.FragmentCoord(x, y, t.Width, t.Height)
				t.Light.Set(x, y, core.GlowFragment(coord, params, t.Occlusion))
			}
		}
	})

	// 6. background, shadow, foreground, light
	p.parallel(t.Height, func(y0, y1 int) {
		t.Scene.CopyRows(t.Background, y0, y1)
		t.Scene.CompositeRows(t.Shadow, BlendMultiply, y0, y1)
		for y := y0; y < y1; y++ {
			row := t.Foreground.Pix[t.Foreground.PixOffset(0, y):]
			for x := 0; x < t.Width; x++ {
				fg := Straight(row[x*4], row[x*4+1], row[x*4+2], row[x*4+3])
				if fg[3] > 0 {
					t.Scene.Blend(x, y, fg, BlendAlpha)
				}
			}
		}
		t.Scene.CompositeRows(t.Light, BlendAdd, y0, y1)
	})

	// 7. overlay
	out := t.Scene.RGBA()
	DrawShapes(out, frame.Overlay, scale)
	return out, nil
}

// Close releases the targets and ends the band workers. No task is in flight
// here since every pass waits for its bands under the same lock. The pipeline
// cannot render afterwards; closing twice is a no-op.
func (p *Pipeline) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	p.targets = nil
	close(p.stop)
}

// parallel splits [0, n) into bands, runs them on the band workers and waits
// for all of them before returning. Task ids restart with every batch.
func (p *Pipeline) parallel(n int, fn func(lo, hi int)) {
	bands := p.workers * 2
	if bands > n {
		bands = n
	}
	if bands <= 1 {
		fn(0, n)
		return
	}

	p.taskID = 0
	var wg sync.WaitGroup
	size := (n + bands - 1) / bands
	for lo := 0; lo < n; lo += size {
		hi := min(lo+size, n)
		wg.Add(1)
		id := p.taskID
		p.taskID++
		p.tasks <- worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()
				fn(lo, hi)
				return nil, nil
			},
		}
	}
	wg.Wait()
}
