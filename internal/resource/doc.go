// Package resource bounds what a run may consume.
//
//   - Memory: every large build allocation is reserved first and fails fast
//     with a diagnostic naming its purpose and size.
//   - Workers: slots for parallel build and evaluation work.
//   - IO: a token bucket over dataset reads and writes.
//
// Usage:
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes:   8 << 30,
//	    MaxWorkers:         runtime.GOMAXPROCS(0),
//	    IOLimitBytesPerSec: 200 << 20,
//	})
//
//	if err := rc.Reserve("proximity graph", size); err != nil {
//	    return err // resource exhaustion is fatal for the run
//	}
//	defer rc.Free(size)
//
// All methods are safe for concurrent use, and a nil *Controller imposes no
// limits at all.
package resource
