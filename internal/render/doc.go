// Package render rasterises a surface and the relaxing chain into images.
//
// The surface is shaded once in grey, scaled to the full 0..255 range and
// banded by the configured number of contour lines. Each frame then adds
// the chain: red discs for points, blue downhill vectors, and green
// segments between neighbours.
//
// [FrameWriter] plugs into the relaxation loop as an observer and writes
// progress_NNNN.png files; [GIFRecorder] assembles the same frames into an
// animation.
package render
