package conversation

import (
	"errors"
	"fmt"
)

// Sentinel errors for conversation operations.
var (
	// ErrInvalidConfig indicates invalid conversation configuration.
	ErrInvalidConfig = errors.New("invalid conversation configuration")

	// ErrUnsupportedModel indicates the model's message framing is not implemented.
	ErrUnsupportedModel = errors.New("unsupported model")

	// ErrEncoderUnavailable indicates no tokenizer could be loaded for a model.
	ErrEncoderUnavailable = errors.New("encoder unavailable")
)

// UnsupportedModelError is returned when token estimation is requested for a
// model family whose framing convention is not implemented.
type UnsupportedModelError struct {
	Model string
}

// Error returns a formatted error message.
func (e *UnsupportedModelError) Error() string {
	return fmt.Sprintf("token estimation is not implemented for model %q", e.Model)
}

// Is reports whether target is ErrUnsupportedModel.
func (e *UnsupportedModelError) Is(target error) bool {
	return target == ErrUnsupportedModel
}
