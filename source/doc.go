// Package source provides built-in image source implementations.
//
// Image sources produce the flat encoded input [H, Wd, pixels...] that the
// coordinator hands to Engine.Run. The package includes:
//
//   - Static: Fixed pixels held in memory
//   - Random: Deterministic pseudo-random pixels in [0, 255]
//
// Custom sources can be implemented by satisfying the types.ImageSource interface.
package source
