// Package pipeline orchestrates one run: installer discovery across the
// scan paths, product identity resolution, record enrichment from the
// extracted descriptors, catalog comparison, and the final report.
//
// Processing is strictly sequential. The catalog endpoints throttle
// aggressive clients, and a deterministic order keeps repeated runs
// byte-identical.
package pipeline
