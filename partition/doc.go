// Package partition splits image rows across workers and plans the halo rows
// each worker needs for a 3x3 stencil.
//
// Rows distributes H rows over W workers as evenly as possible: every worker
// gets floor(H/W) rows and the first H mod W workers one extra. Halo derives,
// per worker, whether the row above and below must be shipped as well and the
// element windows for the variable-sized scatter and gather. NewPlan bundles
// both for a shape and world size.
//
// All functions are pure and deterministic: the same (H, W) always yields
// the same partition, which is what makes distributed output reproducible.
package partition
