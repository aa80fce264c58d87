package checkout

import "sync"

// RedirectRecorder remembers where the user should be sent next.
type RedirectRecorder struct {
	mu   sync.Mutex
	dest string
}

func (r *RedirectRecorder) Navigate(dest string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dest = dest
}

func (r *RedirectRecorder) Destination() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dest, r.dest != ""
}
