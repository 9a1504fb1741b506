// Package queue implements the pending food request queue each recipient owns.
//
// Normal requests are served first-in first-out. An urgent request jumps to the
// very front, ahead of all queued entries including earlier urgent ones, which
// makes urgent requests last-in first-out relative to each other while always
// preceding normal requests.
//
// Entries are plain values removed by [RequestQueue.Dequeue]; nothing needs to
// be released by the caller. Queues live in memory only and are not persisted.
package queue
