// Package requestlog provides types and storage for capturing request
// history for user inspection and debugging.
//
// This package serves operators who need to inspect what requests came
// in, which directory operation they hit, and what responses were sent.
// It is distinct from operational logging (which uses log/slog for
// platform debugging).
//
// Entry is the central type representing a captured request/response
// pair. MemoryStore holds entries in a bounded in-memory buffer with
// FIFO eviction and supports real-time subscriptions for streaming
// consumers:
//
//	store := requestlog.NewMemoryStore(1000)
//	store.Log(&requestlog.Entry{
//	    Method:    "GET",
//	    Path:      "/users",
//	    Operation: requestlog.OpList,
//	})
//
// This is a leaf package with no internal dependencies, allowing it to
// be imported by any package without creating import cycles.
package requestlog
