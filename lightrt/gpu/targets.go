package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/shadowpong/lightrt/core"
)

const (
	layerFormat     = wgpu.TextureFormatRGBA8Unorm
	occlusionFormat = wgpu.TextureFormatRGBA16Float
)

type renderTarget struct {
	Texture *wgpu.Texture
	View    *wgpu.TextureView
}

func newRenderTarget(device *wgpu.Device, label string, width, height uint32, format wgpu.TextureFormat) (renderTarget, error) {
	tex, err := device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         label,
		Size:          wgpu.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        format,
		Usage:         wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding,
	})
	if err != nil {
		return renderTarget{}, fmt.Errorf("%w: failed to create %s: %v", core.ErrResourceCreation, label, err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return renderTarget{}, fmt.Errorf("%w: failed to create %s view: %v", core.ErrResourceCreation, label, err)
	}
	return renderTarget{Texture: tex, View: view}, nil
}

func (t renderTarget) release() {
	if t.View != nil {
		t.View.Release()
	}
	if t.Texture != nil {
		t.Texture.Release()
	}
}

// Targets are the four render targets and the bind groups reading them.
type Targets struct {
	Width  uint32
	Height uint32

	Foreground renderTarget
	Occlusion  renderTarget
	Shadow     renderTarget
	Light      renderTarget

	occlusionBG  *wgpu.BindGroup
	shadingBG    *wgpu.BindGroup
	foregroundBG *wgpu.BindGroup
	shadowBG     *wgpu.BindGroup
	lightBG      *wgpu.BindGroup
}

func (r *Renderer) newTargets(width, height int) (*Targets, error) {
	if err := core.ValidateScreenSize(width, height); err != nil {
		return nil, err
	}

	t := &Targets{Width: uint32(width), Height: uint32(height)}
	var err error
	defer func() {
		if err != nil {
			t.release()
		}
	}()

	if t.Foreground, err = newRenderTarget(r.device, "Foreground", t.Width, t.Height, layerFormat); err != nil {
		return nil, err
	}
	if t.Occlusion, err = newRenderTarget(r.device, "Occlusion", uint32(r.rayCount), 1, occlusionFormat); err != nil {
		return nil, err
	}
	if t.Shadow, err = newRenderTarget(r.device, "Shadow", t.Width, t.Height, layerFormat); err != nil {
		return nil, err
	}
	if t.Light, err = newRenderTarget(r.device, "Light", t.Width, t.Height, layerFormat); err != nil {
		return nil, err
	}

	if t.occlusionBG, err = r.lightBindGroup("OcclusionBG", t.Foreground.View); err != nil {
		return nil, err
	}
	if t.shadingBG, err = r.lightBindGroup("ShadingBG", t.Occlusion.View); err != nil {
		return nil, err
	}
	if t.foregroundBG, err = r.blitBindGroup("ForegroundBlitBG", t.Foreground.View); err != nil {
		return nil, err
	}
	if t.shadowBG, err = r.blitBindGroup("ShadowBlitBG", t.Shadow.View); err != nil {
		return nil, err
	}
	if t.lightBG, err = r.blitBindGroup("LightBlitBG", t.Light.View); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Targets) release() {
	for _, bg := range []*wgpu.BindGroup{t.occlusionBG, t.shadingBG, t.foregroundBG, t.shadowBG, t.lightBG} {
		if bg != nil {
			bg.Release()
		}
	}
	t.Foreground.release()
	t.Occlusion.release()
	t.Shadow.release()
	t.Light.release()
}
