// Package types provides core type definitions and interfaces for the stencil library.
//
// This package contains shared types that are used across multiple packages in the
// stencil library. By keeping these types in a separate package, we avoid import cycles
// between the main stencil package and its internal implementations.
//
// Key types:
//   - Shape: Image dimensions and the flat input encoding
//   - RowBlock: One worker's share of image rows
//   - HaloPlan: Per-worker halo rows and scatter/gather windows
//   - Phase: Run lifecycle phase
//   - Communicator: Collective message-passing capability
//   - Transport: Point-to-point delivery underneath a Communicator
//   - Logger: Structured logging interface
//   - MetricsCollector: Metrics recording interface
package types
