package receipts

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// Blob is the content behind an object URL.
type Blob struct {
	Content     []byte
	ContentType string
	FileName    string
}

type entry struct {
	blob      Blob
	expiresAt time.Time
}

// Registry hands out revocable URLs for in-memory blobs. Every URL expires
// after the registry's TTL even if nobody revokes it.
type Registry struct {
	clock clockwork.Clock
	ttl   time.Duration

	mu      sync.RWMutex
	baseURL string
	entries map[string]entry
}

// NewRegistry creates a new Registry
func NewRegistry(clock clockwork.Clock, ttl time.Duration) *Registry {
	return &Registry{
		clock:   clock,
		ttl:     ttl,
		entries: make(map[string]entry),
	}
}

// SetBaseURL sets the origin the preview server listens on. Until it is
// set, URLs use the blob: scheme and can only be resolved in-process.
func (r *Registry) SetBaseURL(baseURL string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.baseURL = strings.TrimRight(baseURL, "/")
}

// Create registers blob and returns its URL handle.
func (r *Registry) Create(blob Blob) *ObjectURL {
	token := uuid.NewString()
	expiresAt := r.clock.Now().Add(r.ttl)

	r.mu.Lock()
	r.entries[token] = entry{blob: blob, expiresAt: expiresAt}
	base := r.baseURL
	r.mu.Unlock()

	url := "blob:" + token
	if base != "" {
		url = base + "/blob/" + token
	}

	return &ObjectURL{
		Token:     token,
		URL:       url,
		ExpiresAt: expiresAt,
		registry:  r,
	}
}

// Resolve returns the blob for token while it is live.
func (r *Registry) Resolve(token string) (Blob, bool) {
	r.mu.RLock()
	e, ok := r.entries[token]
	r.mu.RUnlock()

	if !ok || !r.clock.Now().Before(e.expiresAt) {
		return Blob{}, false
	}
	return e.blob, true
}

// Revoke releases token. It reports whether the token was still registered.
func (r *Registry) Revoke(token string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.entries[token]
	delete(r.entries, token)
	return ok
}

// Sweep drops every expired entry and returns how many were removed.
func (r *Registry) Sweep() int {
	now := r.clock.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for token, e := range r.entries {
		if !now.Before(e.expiresAt) {
			delete(r.entries, token)
			removed++
		}
	}
	return removed
}

// Len is the number of registered URLs, expired or not.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// ObjectURL is a handle on a registered blob. Release it when the preview
// is dismissed.
type ObjectURL struct {
	Token     string
	URL       string
	ExpiresAt time.Time

	registry *Registry
	once     sync.Once
}

// Release revokes the URL. Calling it more than once is harmless.
func (u *ObjectURL) Release() {
	u.once.Do(func() {
		u.registry.Revoke(u.Token)
	})
}
