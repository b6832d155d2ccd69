// Package state keeps per-user conversation progress: the current dialog step
// and the answers collected so far. It knows nothing about Telegram and is safe
// for concurrent use.
package state
