package gpu

import (
	"errors"
	"fmt"
	"strings"
)

// ErrIncompleteFramebuffer is returned when a framebuffer cannot be
// rendered to with its attachment.
var ErrIncompleteFramebuffer = errors.New("gpu: framebuffer incomplete")

// AllocationError reports a texture or framebuffer that could not be
// created. There is no recovery path; callers treat it as fatal.
type AllocationError struct {
	Resource string
	Width    int
	Height   int
	Format   Format
	Err      error
}

func (e *AllocationError) Error() string {
	return fmt.Sprintf("gpu: allocating %s %dx%d %s: %v", e.Resource, e.Width, e.Height, e.Format, e.Err)
}

func (e *AllocationError) Unwrap() error { return e.Err }

// ShaderCompileError reports a failed compile or link. Log holds the
// driver diagnostics.
type ShaderCompileError struct {
	Program  string
	Stage    string // "vertex", "fragment" or "link"
	Keywords []string
	Log      string
}

func (e *ShaderCompileError) Error() string {
	kw := ""
	if len(e.Keywords) > 0 {
		kw = " [" + strings.Join(e.Keywords, ",") + "]"
	}
	return fmt.Sprintf("gpu: %s%s %s failed: %s", e.Program, kw, e.Stage, strings.TrimSpace(e.Log))
}
