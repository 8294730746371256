package segment

import (
	"fmt"

	"github.com/kikiluvv/gifslice/internal/frame"
)

// Scene is a contiguous run of sampled frames between two detected visual
// discontinuities. Frames are immutable after emission; only Name and
// Selected may change, and Selected is carried for downstream display
// without being interpreted here.
type Scene struct {
	Ordinal  int
	Name     string
	Selected bool
	Frames   *frame.Sequence
}

func newScene(ordinal int, frames *frame.Sequence) Scene {
	return Scene{
		Ordinal: ordinal,
		Name:    fmt.Sprintf("Scene %d", ordinal+1),
		Frames:  frames,
	}
}
