// Package cluster contains the single-pass site clustering core. It never
// imports app, cli, output, or pipeline; keep it domain-only.
//
// The grouping is greedy and order-sensitive on purpose: downstream genotypers
// depend on today's exact clustering boundaries, so the scan order and the
// window-closing bound are part of the contract, not an implementation detail.
package cluster
