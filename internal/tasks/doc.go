// Package tasks turns local playlist definitions into remote playlists with progress reporting.
//
// # Core Operations
//
// [PlaylistEngine] exposes two operations:
//
//  1. [PlaylistEngine.Run] : Create every pending playlist
//     - Loads the dedup log and the definitions not yet recorded in it
//     - Prints a notice and stops when nothing is pending, without touching the network
//     - Authorizes the service once, then builds each definition in file name order
//
//  2. [PlaylistEngine.Build] : Create one playlist
//     - Creates a private playlist for the current user
//     - Searches each query and keeps the first hit, collecting misses
//     - Adds resolved tracks in query order and records the name in the dedup log
//
// # Progress Reporting
//
// Both operations accept an optional channel of [ProgressUpdate]. Sends use select with
// default so a slow or absent reader never stalls a run.
//
// # Failure
//
// The first error aborts the run. Playlists completed before it remain created and recorded,
// so the next run resumes with the remaining definitions.
package tasks
