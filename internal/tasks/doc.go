// Package tasks runs request-queue workflows that must share one in-memory registry.
//
// # Scripts
//
// [Session.Run] reads a script with one command per line:
//
//	# morning intake
//	request 101 5
//	urgent 101 9
//	pending 101
//	distribute 101
//	total
//
// Blank lines and # comments are skipped. A failing line is logged, recorded in the
// [SessionResult] and does not stop the run.
//
// # Progress Reporting
//
// Progress is sent as [ProgressUpdate] values over an optional channel. Sends use
// select with default so a slow or absent reader never blocks the script.
package tasks
