// Package scene assembles rig build results into a self-contained batch
// descriptor and serializes it for downstream consumers.
//
// A [Batch] bundles everything a host scene needs to instantiate the rig:
// the validated configuration, the stage conventions, the payload body, and
// one assembly descriptor per cable. Batches serialize to indented JSON via
// [WriteJSON]/[ReadJSON], and their topology renders to Graphviz DOT and
// SVG via [ToDOT] and [RenderSVG].
//
// All geometry inside a batch stays in the canonical Z-up frame; use
// [Batch.StagePosition] to map a point into the stage's own axis
// convention with the batch's floor offset applied.
package scene
