package backend

import (
	"sync"
	"time"
)

// MemoryCookies is a CookieAdapter for long-lived contexts without HTTP
// cookies: the observer's UI session, tools, tests. Values live for the
// process (or until their max age passes).
type MemoryCookies struct {
	mu     sync.Mutex
	values map[string]memoryCookie
}

type memoryCookie struct {
	value     string
	expiresAt time.Time // zero means no expiry
}

func NewMemoryCookies() *MemoryCookies {
	return &MemoryCookies{values: make(map[string]memoryCookie)}
}

var _ CookieAdapter = (*MemoryCookies)(nil)

func (m *MemoryCookies) Get(name string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cookie, ok := m.values[name]
	if !ok {
		return "", false
	}
	if !cookie.expiresAt.IsZero() && time.Now().After(cookie.expiresAt) {
		delete(m.values, name)
		return "", false
	}
	return cookie.value, true
}

func (m *MemoryCookies) Set(name, value string, maxAge time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cookie := memoryCookie{value: value}
	if maxAge > 0 {
		cookie.expiresAt = time.Now().Add(maxAge)
	}
	m.values[name] = cookie
}

func (m *MemoryCookies) Clear(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, name)
}
