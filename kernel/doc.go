// Package kernel implements the fixed 3x3 weighted smoothing stencil.
//
// The weights are
//
//	1 2 1
//	2 4 2
//	1 2 1
//
// normalized by 16 with truncating integer division. Out-of-range taps are
// clamped to the nearest edge pixel (clamp-to-edge), never wrapped or zero-padded.
//
// Apply runs the stencil on one worker's halo-extended row block; Reference
// runs it over a whole image and serves as the correctness oracle.
package kernel
