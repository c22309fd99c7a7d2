package renderer

import "github.com/go-gl/mathgl/mgl32"

// DoubleBuffer is a read/write pair of same-format targets. Which slot is
// read is decided by parity alone, so Swap never allocates and read and
// write can never be the same target.
type DoubleBuffer struct {
	targets [2]*RenderTarget
	parity  uint8
}

// NewDoubleBuffer pairs two distinct targets; a starts as read.
func NewDoubleBuffer(a, b *RenderTarget) *DoubleBuffer {
	if a == b {
		panic("renderer: double buffer needs two distinct targets")
	}
	return &DoubleBuffer{targets: [2]*RenderTarget{a, b}}
}

func (d *DoubleBuffer) Read() *RenderTarget  { return d.targets[d.parity] }
func (d *DoubleBuffer) Write() *RenderTarget { return d.targets[d.parity^1] }

// Swap exchanges the read and write roles.
func (d *DoubleBuffer) Swap() { d.parity ^= 1 }

func (d *DoubleBuffer) Width() int  { return d.targets[0].Width }
func (d *DoubleBuffer) Height() int { return d.targets[0].Height }

func (d *DoubleBuffer) TexelSize() mgl32.Vec2 { return d.targets[0].TexelSize() }

// replace installs new storage after a resize; read becomes slot 0.
func (d *DoubleBuffer) replace(read, write *RenderTarget) {
	d.targets = [2]*RenderTarget{read, write}
	d.parity = 0
}

// Release frees both targets.
func (d *DoubleBuffer) Release() {
	if d == nil {
		return
	}
	d.targets[0].Release()
	d.targets[1].Release()
}
