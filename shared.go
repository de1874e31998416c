package inputforge

import "sync"

// sharedInput is the process-wide Input behind sharedMu, lazily
// constructed by Shared on first use.
var (
	sharedOnce  sync.Once
	sharedMu    sync.Mutex
	sharedInput *Input
	sharedErr   error
)

// Shared returns the process-wide Input, constructing it with
// DefaultSettings on first call. Every caller gets the same instance;
// callers driving it from more than one goroutine must hold the returned
// lock for the duration of each operation, the same discipline
// original_source/examples/sync.rs documents for its LazyLock<Mutex<Enigo>>.
func Shared() (*Input, *sync.Mutex, error) {
	sharedOnce.Do(func() {
		sharedInput, sharedErr = New(DefaultSettings())
	})
	return sharedInput, &sharedMu, sharedErr
}
