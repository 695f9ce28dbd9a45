package emit

import (
	"fmt"

	"xfer-generator/internal/walk"
)

// GenerationFailure reports a blueprint that could not be rendered
// into a well-formed routine. Raw holds the unformatted text when the
// failure happened at the formatting stage.
type GenerationFailure struct {
	Triple walk.Triple
	Raw    []byte
	Err    error
}

func (e *GenerationFailure) Error() string {
	if e.Triple != (walk.Triple{}) {
		return fmt.Sprintf("generation failed for %s: %v", e.Triple, e.Err)
	}

	return fmt.Sprintf("generation failed: %v", e.Err)
}

func (e *GenerationFailure) Unwrap() error { return e.Err }
