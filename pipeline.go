package stencil

import (
	"errors"
	"fmt"
	"slices"

	"github.com/arloliu/stencil/kernel"
)

// Verdict codes broadcast by the coordinator during the validate phase.
const (
	verdictAccept = iota
	verdictMalformedShape
	verdictSizeMismatch
	verdictUnknown
)

// Validate checks an encoded input [H, Wd, p0 ... p(H*Wd-1)] and returns
// its shape.
//
// Returns:
//   - Shape: Declared shape when the input is well formed
//   - error: ErrSizeMismatch when the input is shorter than its header or its
//     length is not 2+H*Wd; ErrMalformedShape when H <= 0, Wd <= 0 or
//     H*Wd exceeds MaxElements
func Validate(input []int) (Shape, error) {
	if len(input) < HeaderLen {
		return Shape{}, fmt.Errorf("%w: %d elements, header needs %d", ErrSizeMismatch, len(input), HeaderLen)
	}

	shape := Shape{Height: input[0], Width: input[1]}
	if shape.Height <= 0 || shape.Width <= 0 {
		return Shape{}, fmt.Errorf("%w: %s", ErrMalformedShape, shape)
	}
	if shape.Height > MaxElements/shape.Width {
		return Shape{}, fmt.Errorf("%w: %s exceeds %d elements", ErrMalformedShape, shape, MaxElements)
	}
	if want := shape.InputLen(); len(input) != want {
		return Shape{}, fmt.Errorf("%w: %s needs %d elements, got %d", ErrSizeMismatch, shape, want, len(input))
	}

	return shape, nil
}

// EncodeInput builds the flat encoded input for pixels of the given shape.
//
// Parameters:
//   - shape: Image shape
//   - pixels: Row-major pixels, len == shape.Elements()
//
// Returns:
//   - []int: [H, Wd, pixels...]
//   - error: ErrMalformedShape or ErrSizeMismatch
//
// Example:
//
//	input, err := stencil.EncodeInput(stencil.Shape{Height: 2, Width: 2}, []int{1, 2, 3, 4})
func EncodeInput(shape Shape, pixels []int) ([]int, error) {
	input := make([]int, 0, HeaderLen+len(pixels))
	input = append(input, shape.Height, shape.Width)
	input = append(input, pixels...)

	if _, err := Validate(input); err != nil {
		return nil, err
	}

	return input, nil
}

// Reference validates an encoded input and smooths it on a single worker.
//
// Its output is the ground truth that Engine.Run must match bit for bit for
// every world size.
//
// Returns:
//   - []int: H*Wd smoothed pixels
//   - error: Validation error
func Reference(input []int) ([]int, error) {
	shape, err := Validate(input)
	if err != nil {
		return nil, err
	}

	return kernel.Reference(slices.Clip(input[HeaderLen:]), shape.Height, shape.Width), nil
}

// verdictOf maps a validation error to the code broadcast to every rank.
func verdictOf(err error) int {
	switch {
	case err == nil:
		return verdictAccept
	case errors.Is(err, ErrMalformedShape):
		return verdictMalformedShape
	case errors.Is(err, ErrSizeMismatch):
		return verdictSizeMismatch
	default:
		return verdictUnknown
	}
}

// rejection is the error a non-coordinator returns for a negative verdict.
func rejection(code int) error {
	switch code {
	case verdictMalformedShape:
		return fmt.Errorf("%w: %w", ErrRejected, ErrMalformedShape)
	case verdictSizeMismatch:
		return fmt.Errorf("%w: %w", ErrRejected, ErrSizeMismatch)
	default:
		return fmt.Errorf("%w: verdict %d", ErrRejected, code)
	}
}
