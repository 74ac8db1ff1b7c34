package stencil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		input   []int
		want    Shape
		wantErr error
	}{
		{"empty", nil, Shape{}, ErrSizeMismatch},
		{"header only short", []int{3}, Shape{}, ErrSizeMismatch},
		{"zero height", []int{0, 3}, Shape{}, ErrMalformedShape},
		{"negative width", []int{2, -1, 1, 2}, Shape{}, ErrMalformedShape},
		{"too many elements", []int{1 << 20, 1 << 20}, Shape{}, ErrMalformedShape},
		{"too short", []int{2, 2, 1, 2, 3}, Shape{}, ErrSizeMismatch},
		{"too long", []int{1, 2, 1, 2, 3}, Shape{}, ErrSizeMismatch},
		{"single pixel", []int{1, 1, 9}, Shape{Height: 1, Width: 1}, nil},
		{"two by three", []int{2, 3, 1, 2, 3, 4, 5, 6}, Shape{Height: 2, Width: 3}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Validate(tt.input)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestEncodeInput(t *testing.T) {
	input, err := EncodeInput(Shape{Height: 2, Width: 2}, []int{1, 2, 3, 4})
	require.NoError(t, err)
	require.Equal(t, []int{2, 2, 1, 2, 3, 4}, input)

	_, err = EncodeInput(Shape{Height: 2, Width: 2}, []int{1, 2, 3})
	require.ErrorIs(t, err, ErrSizeMismatch)

	_, err = EncodeInput(Shape{Height: 0, Width: 2}, nil)
	require.ErrorIs(t, err, ErrMalformedShape)
}

func TestReference(t *testing.T) {
	input := []int{3, 3, 1, 2, 3, 4, 5, 6, 7, 8, 9}

	out, err := Reference(input)
	require.NoError(t, err)
	require.Equal(t, []int{2, 2, 3, 4, 5, 5, 6, 7, 8}, out)
	require.Equal(t, []int{3, 3, 1, 2, 3, 4, 5, 6, 7, 8, 9}, input)

	_, err = Reference([]int{3, 3, 1})
	require.ErrorIs(t, err, ErrSizeMismatch)
}

func TestVerdictRoundTrip(t *testing.T) {
	require.Equal(t, verdictAccept, verdictOf(nil))

	for _, cause := range []error{ErrMalformedShape, ErrSizeMismatch} {
		_, err := Validate(badInputFor(cause))
		rejected := rejection(verdictOf(err))

		require.ErrorIs(t, rejected, ErrRejected)
		require.ErrorIs(t, rejected, cause)
	}

	require.ErrorIs(t, rejection(verdictUnknown), ErrRejected)
	require.Equal(t, verdictUnknown, verdictOf(ErrCollectiveFailure))
}

func badInputFor(cause error) []int {
	if cause == ErrMalformedShape {
		return []int{-1, 2}
	}

	return []int{2, 2, 1}
}
