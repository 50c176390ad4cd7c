//go:build !darwin && !linux && !windows

package credstore

// NewSystemStore returns a MemoryStore on platforms without a native
// credential store. Secrets are held in memory only and will not
// persist across restarts.
func NewSystemStore() *MemoryStore {
	return NewMemoryStore()
}
