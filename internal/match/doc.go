// Package match reconstructs a clean timeline of discrete match events
// from noisy, periodically sampled telemetry of a two-player stock match.
//
// Responsibilities: temporal smoothing of OCR-sourced percent/stock
// readings, match-start boundary detection, hysteresis-validated stock
// loss and kill confirmation, damage spike and combo extraction,
// edgeguard scoring from damage-flow shape, event deduplication, and
// phase segmentation (game phases, post-respawn windows, stage control).
// Key types: Sample, Timeline, Engine, StockTracker.
//
// The engine is a pure function of its input: identical sample slices
// produce identical timelines, and no state survives between calls.
// Independent matches may be analyzed concurrently.
//
// No SQL/database or HTTP code is allowed in this package.
package match
