// Package handlers provides command handler functions for guestctl.
//
// Each file covers one area:
// - run.go: Message and todo batches (run)
// - pay.go: Payment batches (pay)
// - contract.go: Guestbook reads (stats, read)
// - batch.go: Daemon batch history (batch ls, batch info)
// - chain.go: Shared connection and batch execution helpers
//
// Batch commands run in one of two modes. Locally, the CLI dials the RPC
// endpoint with the key from GUESTBOOK_PRIVATE_KEY and drives the batching
// engine itself. With --api, the batch is serialized and queued on
// guestbookd, and the CLI polls until the daemon reports a terminal status.
// Both modes print the same report and exit non-zero when any operation
// failed or the run was interrupted.
package handlers
