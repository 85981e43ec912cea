package gpu

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// Blend states of the compositor. Alpha is always kept from the destination
// except for the foreground layers.
var (
	BlendAlpha = wgpu.BlendState{
		Color: wgpu.BlendComponent{
			Operation: wgpu.BlendOperationAdd,
			SrcFactor: wgpu.BlendFactorSrcAlpha,
			DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
		},
		Alpha: wgpu.BlendComponent{
			Operation: wgpu.BlendOperationAdd,
			SrcFactor: wgpu.BlendFactorOne,
			DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
		},
	}

	// BlendPremultiplied composites a layer that was itself drawn with
	// BlendAlpha into a transparent target.
	BlendPremultiplied = wgpu.BlendState{
		Color: wgpu.BlendComponent{
			Operation: wgpu.BlendOperationAdd,
			SrcFactor: wgpu.BlendFactorOne,
			DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
		},
		Alpha: wgpu.BlendComponent{
			Operation: wgpu.BlendOperationAdd,
			SrcFactor: wgpu.BlendFactorOne,
			DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
		},
	}

	// BlendMultiply is dst * src.
	BlendMultiply = wgpu.BlendState{
		Color: wgpu.BlendComponent{
			Operation: wgpu.BlendOperationAdd,
			SrcFactor: wgpu.BlendFactorDst,
			DstFactor: wgpu.BlendFactorZero,
		},
		Alpha: wgpu.BlendComponent{
			Operation: wgpu.BlendOperationAdd,
			SrcFactor: wgpu.BlendFactorZero,
			DstFactor: wgpu.BlendFactorOne,
		},
	}

	// BlendAdditive is dst + src.
	BlendAdditive = wgpu.BlendState{
		Color: wgpu.BlendComponent{
			Operation: wgpu.BlendOperationAdd,
			SrcFactor: wgpu.BlendFactorOne,
			DstFactor: wgpu.BlendFactorOne,
		},
		Alpha: wgpu.BlendComponent{
			Operation: wgpu.BlendOperationAdd,
			SrcFactor: wgpu.BlendFactorZero,
			DstFactor: wgpu.BlendFactorOne,
		},
	}
)

var (
	clearTransparent = wgpu.Color{R: 0, G: 0, B: 0, A: 0}
	clearBlack       = wgpu.Color{R: 0, G: 0, B: 0, A: 1}
)

var defaultMultisample = wgpu.MultisampleState{
	Count: 1,
	Mask:  0xFFFFFFFF,
}

type fullscreenDesc struct {
	label  string
	module *wgpu.ShaderModule
	layout *wgpu.PipelineLayout
	format wgpu.TextureFormat
	blend  *wgpu.BlendState
}

// fullscreenPipeline builds a pipeline drawing one oversized triangle.
func fullscreenPipeline(device *wgpu.Device, d fullscreenDesc) (*wgpu.RenderPipeline, error) {
	return device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  d.label,
		Layout: d.layout,
		Vertex: wgpu.VertexState{
			Module:     d.module,
			EntryPoint: "vs_main",
		},
		Fragment: &wgpu.FragmentState{
			Module:     d.module,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{{
				Format:    d.format,
				Blend:     d.blend,
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology: wgpu.PrimitiveTopologyTriangleList,
		},
		Multisample: defaultMultisample,
	})
}

func colorPass(encoder *wgpu.CommandEncoder, view *wgpu.TextureView, load wgpu.LoadOp, clear wgpu.Color) *wgpu.RenderPassEncoder {
	return encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     load,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: clear,
		}},
	})
}
