// Package magnet provides core primitives for two-pool magnetization
// simulation.
//
// The package defines the fundamental types shared by every model:
//
//   - [State]: magnetization vector with optional sensitivity blocks
//   - [Params]: physical parameters of the free and semi-solid pools
//   - [GradKind]: closed set of parameter-sensitivity tags
//   - [History]: read access to the solved trajectory for memory models
//
// # Thread Safety
//
// Params and GradKind values are plain data and safe to share. State
// slices are owned by a single solve; for parallel work use
// [ParallelFor] over disjoint outputs.
package magnet
