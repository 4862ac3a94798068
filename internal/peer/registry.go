package peer

import (
	"sync"

	"github.com/1broseidon/peerwin/internal/logical"
	"github.com/1broseidon/peerwin/internal/platform"
)

// Persisted property keys. Together they are the whole cross-process
// schema: a process without access to a window's peer state reads these.
const (
	PropWholeWindow  = "__peer_whole_window"
	PropClientWindow = "__peer_client_window"
)

// Registry maps native peers back to the logical window that owns them.
type Registry struct {
	mu      sync.RWMutex
	windows map[platform.WindowID]logical.ID
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{windows: make(map[platform.WindowID]logical.ID)}
}

// Add records that peer belongs to id.
func (r *Registry) Add(peer platform.WindowID, id logical.ID) {
	if peer == 0 {
		return
	}
	r.mu.Lock()
	r.windows[peer] = id
	r.mu.Unlock()
}

// Remove forgets peer.
func (r *Registry) Remove(peer platform.WindowID) {
	r.mu.Lock()
	delete(r.windows, peer)
	r.mu.Unlock()
}

// Lookup returns the logical window owning peer.
func (r *Registry) Lookup(peer platform.WindowID) (logical.ID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.windows[peer]
	return id, ok
}

// Len returns the number of registered peers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.windows)
}
