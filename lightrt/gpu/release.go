package gpu

// releaser is any webgpu handle with a Release method.
type releaser interface {
	Release()
}

// releaseStack holds the handles a Renderer creates once at startup and
// frees them in the reverse of their creation order.
type releaseStack []releaser

func (s *releaseStack) push(handles ...releaser) {
	*s = append(*s, handles...)
}

func (s *releaseStack) release() {
	for i := len(*s) - 1; i >= 0; i-- {
		(*s)[i].Release()
	}
	*s = nil
}
