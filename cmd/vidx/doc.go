// Command vidx generates promotional videos for marketplace listings, either
// synchronously with `generate` or via the queued background daemon.
package main
