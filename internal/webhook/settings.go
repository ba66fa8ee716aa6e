package webhook

import "sync"

// Settings holds the process-wide outbound webhook URL. The URL is
// replaced wholesale by the configuration endpoint and read by the
// Notifier on every delivery.
type Settings struct {
	mu  sync.RWMutex
	url string
}

// NewSettings returns a Settings seeded with the initial URL. An empty
// initial value means no webhook is configured yet.
func NewSettings(initial string) *Settings {
	return &Settings{url: initial}
}

// URL returns the configured target and whether one is set.
func (s *Settings) URL() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.url, s.url != ""
}

func (s *Settings) Set(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.url = url
}
