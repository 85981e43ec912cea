package gpu

import (
	"fmt"
	"image"
	"sync"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/shadowpong/lightrt/core"
	"github.com/gekko3d/shadowpong/lightrt/shaders"
	"github.com/go-gl/mathgl/mgl32"
	xdraw "golang.org/x/image/draw"
)

type Options struct {
	Text       *core.TextRenderer
	Background image.Image
}

// Renderer runs the lighting passes on the GPU and presents to the surface
// of its Context.
type Renderer struct {
	mu sync.Mutex

	ctx      *Context
	device   *wgpu.Device
	queue    *wgpu.Queue
	rayCount int

	paramsBuf      *wgpu.Buffer
	shapeParamsBuf *wgpu.Buffer

	lightLayout *wgpu.BindGroupLayout
	blitLayout  *wgpu.BindGroupLayout
	shapeLayout *wgpu.BindGroupLayout

	occlusionPipeline *wgpu.RenderPipeline
	shadowPipeline    *wgpu.RenderPipeline
	lightPipeline     *wgpu.RenderPipeline

	blitCopy          *wgpu.RenderPipeline
	blitMultiply      *wgpu.RenderPipeline
	blitPremultiplied *wgpu.RenderPipeline
	blitAdditive      *wgpu.RenderPipeline

	shapeForeground *wgpu.RenderPipeline
	shapeSurface    *wgpu.RenderPipeline
	shapeBG         *wgpu.BindGroup

	linearSampler  *wgpu.Sampler
	nearestSampler *wgpu.Sampler

	text         *core.TextRenderer
	textPipeline *wgpu.RenderPipeline
	textBG       *wgpu.BindGroup

	background   renderTarget
	backgroundBG *wgpu.BindGroup

	occluderBuf *wgpu.Buffer
	overlayBuf  *wgpu.Buffer
	textBuf     *wgpu.Buffer

	targets *Targets

	// owned is everything init creates; Release frees it last.
	owned    releaseStack
	released bool
}

func NewRenderer(ctx *Context, cfg core.LightConfig, opts Options) (*Renderer, error) {
	if err := CheckRayCount(cfg.RayCount, ctx.MaxTextureDimension2D()); err != nil {
		return nil, err
	}
	set, err := shaders.Load(cfg)
	if err != nil {
		return nil, err
	}

	r := &Renderer{
		ctx:      ctx,
		device:   ctx.Device,
		queue:    ctx.Queue,
		rayCount: cfg.RayCount,
		text:     opts.Text,
	}
	if err := r.init(set, ctx.Config.Format); err != nil {
		r.Release()
		return nil, err
	}
	if err := r.SetBackground(opts.Background); err != nil {
		r.Release()
		return nil, err
	}

	width, height := int(ctx.Config.Width), int(ctx.Config.Height)
	if width > 0 && height > 0 {
		t, err := r.newTargets(width, height)
		if err != nil {
			r.Release()
			return nil, err
		}
		r.targets = t
	}
	return r, nil
}

func (r *Renderer) init(set *shaders.Set, surfaceFormat wgpu.TextureFormat) error {
	var err error
	fail := func(what string, err error) error {
		return fmt.Errorf("%w: failed to create %s: %v", core.ErrResourceCreation, what, err)
	}

	r.paramsBuf, err = r.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "LightParams",
		Size:  uint64(core.LightParamsLayout().Size),
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fail("light params buffer", err)
	}
	r.owned.push(r.paramsBuf)
	r.shapeParamsBuf, err = r.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "ShapeParams",
		Size:  uint64(unsafe.Sizeof(ShapeParams{})),
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fail("shape params buffer", err)
	}
	r.owned.push(r.shapeParamsBuf)

	r.linearSampler, err = r.device.CreateSampler(&wgpu.SamplerDescriptor{
		MinFilter:     wgpu.FilterModeLinear,
		MagFilter:     wgpu.FilterModeLinear,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return fail("linear sampler", err)
	}
	r.owned.push(r.linearSampler)
	r.nearestSampler, err = r.device.CreateSampler(&wgpu.SamplerDescriptor{
		MinFilter:     wgpu.FilterModeNearest,
		MagFilter:     wgpu.FilterModeNearest,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return fail("nearest sampler", err)
	}
	r.owned.push(r.nearestSampler)

	r.lightLayout, err = r.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "LightBGL",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageFragment,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: uint64(core.LightParamsLayout().Size),
				},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageFragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeUnfilterableFloat,
					ViewDimension: wgpu.TextureViewDimension2D,
				},
			},
		},
	})
	if err != nil {
		return fail("light bind group layout", err)
	}
	r.owned.push(r.lightLayout)

	r.blitLayout, err = r.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "BlitBGL",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageFragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeFloat,
					ViewDimension: wgpu.TextureViewDimension2D,
				},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageFragment,
				Sampler:    wgpu.SamplerBindingLayout{Type: wgpu.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		return fail("blit bind group layout", err)
	}
	r.owned.push(r.blitLayout)

	r.shapeLayout, err = r.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "ShapeBGL",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: uint64(unsafe.Sizeof(ShapeParams{})),
				},
			},
		},
	})
	if err != nil {
		return fail("shape bind group layout", err)
	}
	r.owned.push(r.shapeLayout)

	r.shapeBG, err = r.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "ShapeBG",
		Layout: r.shapeLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: r.shapeParamsBuf, Size: uint64(unsafe.Sizeof(ShapeParams{}))},
		},
	})
	if err != nil {
		return fail("shape bind group", err)
	}
	r.owned.push(r.shapeBG)

	lightPL, err := r.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		BindGroupLayouts: []*wgpu.BindGroupLayout{r.lightLayout},
	})
	if err != nil {
		return fail("light pipeline layout", err)
	}
	defer lightPL.Release()
	blitPL, err := r.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		BindGroupLayouts: []*wgpu.BindGroupLayout{r.blitLayout},
	})
	if err != nil {
		return fail("blit pipeline layout", err)
	}
	defer blitPL.Release()
	shapePL, err := r.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		BindGroupLayouts: []*wgpu.BindGroupLayout{r.shapeLayout},
	})
	if err != nil {
		return fail("shape pipeline layout", err)
	}
	defer shapePL.Release()

	modules := map[string]string{
		"Occlusion": set.Occlusion,
		"Shadows":   set.Shadows,
		"Lights":    set.Lights,
		"Blit":      set.Blit,
		"Shape":     set.Shape,
		"Text":      set.Text,
	}
	mods := make(map[string]*wgpu.ShaderModule, len(modules))
	for label, code := range modules {
		mod, err := r.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
			Label:          label,
			WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: code},
		})
		if err != nil {
			return fail(label+" shader", err)
		}
		defer mod.Release()
		mods[label] = mod
	}

	passes := []struct {
		dst  **wgpu.RenderPipeline
		desc fullscreenDesc
	}{
		{&r.occlusionPipeline, fullscreenDesc{"OcclusionPipeline", mods["Occlusion"], lightPL, occlusionFormat, nil}},
		{&r.shadowPipeline, fullscreenDesc{"ShadowPipeline", mods["Shadows"], lightPL, layerFormat, nil}},
		{&r.lightPipeline, fullscreenDesc{"LightPipeline", mods["Lights"], lightPL, layerFormat, nil}},
		{&r.blitCopy, fullscreenDesc{"BlitCopy", mods["Blit"], blitPL, surfaceFormat, nil}},
		{&r.blitMultiply, fullscreenDesc{"BlitMultiply", mods["Blit"], blitPL, surfaceFormat, &BlendMultiply}},
		{&r.blitPremultiplied, fullscreenDesc{"BlitPremultiplied", mods["Blit"], blitPL, surfaceFormat, &BlendPremultiplied}},
		{&r.blitAdditive, fullscreenDesc{"BlitAdditive", mods["Blit"], blitPL, surfaceFormat, &BlendAdditive}},
	}
	for _, p := range passes {
		*p.dst, err = fullscreenPipeline(r.device, p.desc)
		if err != nil {
			return fail(p.desc.label, err)
		}
		r.owned.push(*p.dst)
	}

	if r.shapeForeground, err = r.shapePipeline(mods["Shape"], shapePL, layerFormat); err != nil {
		return fail("foreground shape pipeline", err)
	}
	r.owned.push(r.shapeForeground)
	if r.shapeSurface, err = r.shapePipeline(mods["Shape"], shapePL, surfaceFormat); err != nil {
		return fail("overlay shape pipeline", err)
	}
	r.owned.push(r.shapeSurface)

	if r.text != nil {
		if err := r.setupText(mods["Text"]); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) shapePipeline(module *wgpu.ShaderModule, layout *wgpu.PipelineLayout, format wgpu.TextureFormat) (*wgpu.RenderPipeline, error) {
	return r.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "ShapePipeline",
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{{
				ArrayStride: uint64(unsafe.Sizeof(ShapeInstance{})),
				StepMode:    wgpu.VertexStepModeInstance,
				Attributes: []wgpu.VertexAttribute{
					{Format: wgpu.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
					{Format: wgpu.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},
					{Format: wgpu.VertexFormatFloat32x4, Offset: 16, ShaderLocation: 2},
					{Format: wgpu.VertexFormatUint32, Offset: 32, ShaderLocation: 3},
				},
			}},
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{{
				Format:    format,
				Blend:     &BlendAlpha,
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology: wgpu.PrimitiveTopologyTriangleList,
		},
		Multisample: defaultMultisample,
	})
}

func (r *Renderer) setupText(module *wgpu.ShaderModule) error {
	atlas := r.text.AtlasImage
	w, h := atlas.Bounds().Dx(), atlas.Bounds().Dy()
	tex, err := r.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "Text Atlas",
		Size:          wgpu.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1},
		Format:        wgpu.TextureFormatR8Unorm,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension:     wgpu.TextureDimension2D,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return fmt.Errorf("%w: failed to create text atlas: %v", core.ErrResourceCreation, err)
	}
	r.owned.push(tex)
	r.queue.WriteTexture(tex.AsImageCopy(), atlas.Pix, &wgpu.TextureDataLayout{
		Offset:       0,
		BytesPerRow:  uint32(atlas.Stride),
		RowsPerImage: uint32(h),
	}, &wgpu.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1})

	view, err := tex.CreateView(nil)
	if err != nil {
		return fmt.Errorf("%w: failed to create text atlas view: %v", core.ErrResourceCreation, err)
	}
	r.owned.push(view)

	r.textPipeline, err = r.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: "Text Pipeline",
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{{
				ArrayStride: uint64(unsafe.Sizeof(core.TextVertex{})),
				StepMode:    wgpu.VertexStepModeVertex,
				Attributes: []wgpu.VertexAttribute{
					{Format: wgpu.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
					{Format: wgpu.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},
					{Format: wgpu.VertexFormatFloat32x4, Offset: 16, ShaderLocation: 2},
				},
			}},
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{{
				Format:    layerFormat,
				Blend:     &BlendAlpha,
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology: wgpu.PrimitiveTopologyTriangleList,
		},
		Multisample: defaultMultisample,
	})
	if err != nil {
		return fmt.Errorf("%w: failed to create text pipeline: %v", core.ErrResourceCreation, err)
	}
	r.owned.push(r.textPipeline)

	layout := r.textPipeline.GetBindGroupLayout(0)
	defer layout.Release()
	r.textBG, err = r.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: layout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: view},
			{Binding: 1, Sampler: r.nearestSampler},
		},
	})
	if err != nil {
		return fmt.Errorf("%w: failed to create text bind group: %v", core.ErrResourceCreation, err)
	}
	r.owned.push(r.textBG)
	return nil
}

func (r *Renderer) lightBindGroup(label string, view *wgpu.TextureView) (*wgpu.BindGroup, error) {
	bg, err := r.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  label,
		Layout: r.lightLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: r.paramsBuf, Size: uint64(core.LightParamsLayout().Size)},
			{Binding: 1, TextureView: view},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create %s: %v", core.ErrResourceCreation, label, err)
	}
	return bg, nil
}

func (r *Renderer) blitBindGroup(label string, view *wgpu.TextureView) (*wgpu.BindGroup, error) {
	bg, err := r.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  label,
		Layout: r.blitLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: view},
			{Binding: 1, Sampler: r.linearSampler},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create %s: %v", core.ErrResourceCreation, label, err)
	}
	return bg, nil
}

// SetBackground uploads img as the bottom layer. Nil uploads a black texel.
func (r *Renderer) SetBackground(img image.Image) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.released {
		return core.ErrNotReady
	}

	var rgba *image.RGBA
	if img == nil {
		rgba = image.NewRGBA(image.Rect(0, 0, 1, 1))
		rgba.Pix[3] = 255
	} else {
		b := img.Bounds()
		rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		xdraw.Draw(rgba, rgba.Bounds(), img, b.Min, xdraw.Src)
	}
	w, h := uint32(rgba.Bounds().Dx()), uint32(rgba.Bounds().Dy())

	tex, err := r.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "Background",
		Size:          wgpu.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		Format:        layerFormat,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension:     wgpu.TextureDimension2D,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return fmt.Errorf("%w: failed to create background: %v", core.ErrResourceCreation, err)
	}
	r.queue.WriteTexture(tex.AsImageCopy(), rgba.Pix, &wgpu.TextureDataLayout{
		Offset:       0,
		BytesPerRow:  uint32(rgba.Stride),
		RowsPerImage: h,
	}, &wgpu.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1})

	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return fmt.Errorf("%w: failed to create background view: %v", core.ErrResourceCreation, err)
	}
	bg, err := r.blitBindGroup("BackgroundBG", view)
	if err != nil {
		view.Release()
		tex.Release()
		return err
	}

	if r.backgroundBG != nil {
		r.backgroundBG.Release()
	}
	r.background.release()
	r.background = renderTarget{Texture: tex, View: view}
	r.backgroundBG = bg
	return nil
}

// Resize reconfigures the surface and swaps in targets of the new size.
// Until a Resize succeeds RenderFrame reports ErrNotReady.
func (r *Renderer) Resize(width, height int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.released {
		return core.ErrNotReady
	}
	if r.targets != nil {
		r.targets.release()
		r.targets = nil
	}
	t, err := r.newTargets(width, height)
	if err != nil {
		return fmt.Errorf("resize to %dx%d: %w", width, height, err)
	}
	r.ctx.Configure(width, height)
	r.targets = t
	return nil
}

// ensureBuffer grows buf to hold at least size bytes.
func (r *Renderer) ensureBuffer(buf **wgpu.Buffer, label string, size uint64, usage wgpu.BufferUsage) error {
	if *buf != nil && (*buf).GetSize() >= size {
		return nil
	}
	if *buf != nil {
		(*buf).Release()
		*buf = nil
	}
	// 50% headroom
	b, err := r.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  size + size/2,
		Usage: usage | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return err
	}
	*buf = b
	return nil
}

func (r *Renderer) upload(buf **wgpu.Buffer, label string, data []byte) (bool, error) {
	if len(data) == 0 {
		return false, nil
	}
	if err := r.ensureBuffer(buf, label, uint64(len(data)), wgpu.BufferUsageVertex); err != nil {
		return false, err
	}
	r.queue.WriteBuffer(*buf, 0, data)
	return true, nil
}

// RenderFrame encodes the seven compositor steps and presents the result.
func (r *Renderer) RenderFrame(frame core.Frame) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t := r.targets
	if t == nil {
		return core.ErrNotReady
	}
	if frame.Size.X() <= 0 || frame.Size.Y() <= 0 {
		return fmt.Errorf("%w: empty logical frame size %v", core.ErrFrameAborted, frame.Size)
	}

	params := frame.Light
	params.ScreenSize = mgl32.Vec2{float32(t.Width), float32(t.Height)}
	r.queue.WriteBuffer(r.paramsBuf, 0, params.Bytes())
	r.queue.WriteBuffer(r.shapeParamsBuf, 0, shapeParamsBytes(frame.Size))

	occluders := PackShapes(frame.Occluders)
	overlay := PackShapes(frame.Overlay)
	hasOccluders, err := r.upload(&r.occluderBuf, "Occluders", bytesOf(occluders))
	if err != nil {
		return fmt.Errorf("%w: occluder upload: %v", core.ErrFrameAborted, err)
	}
	hasOverlay, err := r.upload(&r.overlayBuf, "Overlay", bytesOf(overlay))
	if err != nil {
		return fmt.Errorf("%w: overlay upload: %v", core.ErrFrameAborted, err)
	}
	var textVertices []core.TextVertex
	if r.text != nil && r.textPipeline != nil {
		textVertices = r.text.BuildVertices(frame.Texts, frame.Size.X(), frame.Size.Y())
	}
	hasText, err := r.upload(&r.textBuf, "Text VB", bytesOf(textVertices))
	if err != nil {
		return fmt.Errorf("%w: text upload: %v", core.ErrFrameAborted, err)
	}

	next, err := r.ctx.Surface.GetCurrentTexture()
	if err != nil {
		return fmt.Errorf("%w: GetCurrentTexture: %v", core.ErrFrameAborted, err)
	}
	defer next.Release()
	view, err := next.CreateView(nil)
	if err != nil {
		return fmt.Errorf("%w: surface view: %v", core.ErrFrameAborted, err)
	}
	defer view.Release()

	encoder, err := r.device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("%w: CreateCommandEncoder: %v", core.ErrFrameAborted, err)
	}

	// 1. occluders
	pass := colorPass(encoder, t.Foreground.View, wgpu.LoadOpClear, clearTransparent)
	if hasOccluders {
		pass.SetPipeline(r.shapeForeground)
		pass.SetBindGroup(0, r.shapeBG, nil)
		pass.SetVertexBuffer(0, r.occluderBuf, 0, r.occluderBuf.GetSize())
		pass.Draw(6, uint32(len(occluders)), 0, 0)
	}
	if hasText {
		pass.SetPipeline(r.textPipeline)
		pass.SetBindGroup(0, r.textBG, nil)
		pass.SetVertexBuffer(0, r.textBuf, 0, r.textBuf.GetSize())
		pass.Draw(uint32(len(textVertices)), 1, 0, 0)
	}
	if err := pass.End(); err != nil {
		return fmt.Errorf("%w: foreground pass: %v", core.ErrFrameAborted, err)
	}

	// 2-5. each mask pass clears its own target to opaque black
	masks := []struct {
		name     string
		view     *wgpu.TextureView
		pipeline *wgpu.RenderPipeline
		bg       *wgpu.BindGroup
	}{
		{"occlusion", t.Occlusion.View, r.occlusionPipeline, t.occlusionBG},
		{"shadow", t.Shadow.View, r.shadowPipeline, t.shadingBG},
		{"light", t.Light.View, r.lightPipeline, t.shadingBG},
	}
	for _, m := range masks {
		pass := colorPass(encoder, m.view, wgpu.LoadOpClear, clearBlack)
		pass.SetPipeline(m.pipeline)
		pass.SetBindGroup(0, m.bg, nil)
		pass.Draw(3, 1, 0, 0)
		if err := pass.End(); err != nil {
			return fmt.Errorf("%w: %s pass: %v", core.ErrFrameAborted, m.name, err)
		}
	}

	// 6. background, shadow, foreground, light
	pass = colorPass(encoder, view, wgpu.LoadOpClear, clearBlack)
	layers := []struct {
		pipeline *wgpu.RenderPipeline
		bg       *wgpu.BindGroup
	}{
		{r.blitCopy, r.backgroundBG},
		{r.blitMultiply, t.shadowBG},
		{r.blitPremultiplied, t.foregroundBG},
		{r.blitAdditive, t.lightBG},
	}
	for _, l := range layers {
		pass.SetPipeline(l.pipeline)
		pass.SetBindGroup(0, l.bg, nil)
		pass.Draw(3, 1, 0, 0)
	}

	// 7. overlay
	if hasOverlay {
		pass.SetPipeline(r.shapeSurface)
		pass.SetBindGroup(0, r.shapeBG, nil)
		pass.SetVertexBuffer(0, r.overlayBuf, 0, r.overlayBuf.GetSize())
		pass.Draw(6, uint32(len(overlay)), 0, 0)
	}
	if err := pass.End(); err != nil {
		return fmt.Errorf("%w: present pass: %v", core.ErrFrameAborted, err)
	}

	cmd, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("%w: encoder finish: %v", core.ErrFrameAborted, err)
	}
	r.queue.Submit(cmd)
	r.ctx.Surface.Present()
	return nil
}

// Release frees every GPU resource in the reverse of its creation order.
// It is safe to call more than once, and the Renderer refuses work after it.
func (r *Renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.released = true
	if r.targets != nil {
		r.targets.release()
		r.targets = nil
	}
	for _, b := range []*wgpu.Buffer{r.textBuf, r.overlayBuf, r.occluderBuf} {
		if b != nil {
			b.Release()
		}
	}
	r.occluderBuf, r.overlayBuf, r.textBuf = nil, nil, nil
	if r.backgroundBG != nil {
		r.backgroundBG.Release()
		r.backgroundBG = nil
	}
	r.background.release()
	r.background = renderTarget{}

	r.owned.release()
	r.textBG, r.textPipeline = nil, nil
	r.shapeSurface, r.shapeForeground = nil, nil
	r.blitAdditive, r.blitPremultiplied, r.blitMultiply, r.blitCopy = nil, nil, nil, nil
	r.lightPipeline, r.shadowPipeline, r.occlusionPipeline = nil, nil, nil
	r.shapeBG = nil
	r.shapeLayout, r.blitLayout, r.lightLayout = nil, nil, nil
	r.nearestSampler, r.linearSampler = nil, nil
	r.shapeParamsBuf, r.paramsBuf = nil, nil
}
