// Package maintenance runs a repository action across organizations and explicit repository targets.
//
// Repositories are visited sequentially. Each result is classified as succeeded, unchanged, skipped,
// planned (dry run) or failed, and failures are aggregated so one broken repository never stops a run.
package maintenance
