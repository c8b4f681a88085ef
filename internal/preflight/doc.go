// Package preflight provides system validation and pre-flight checks
// to ensure mcp-memoria can run successfully before starting operations.
//
// The package validates:
//   - Disk space availability (minimum 100MB)
//   - Memory availability (minimum 1GB)
//   - Write permissions in the data directory
//   - File descriptor limits (minimum 1024)
//   - Embedder reachability (non-critical; falls back to static embeddings)
//
// Use the Checker type to run all validations:
//
//	checker := preflight.New()
//	results := checker.RunAll(ctx, dataDir, embedderHost)
//	if checker.HasCriticalFailures(results) {
//	    // Handle failures
//	}
package preflight
