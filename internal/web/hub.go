package web

import (
	"strings"
	"sync"
)

type resourceKey struct {
	kind string
	id   string
}

func (k resourceKey) String() string {
	kind := strings.TrimSpace(k.kind)
	id := strings.TrimSpace(k.id)
	if id == "" {
		return kind
	}
	return kind + ":" + id
}

type resourceHub struct {
	mu   sync.Mutex
	subs map[chan struct{}]struct{}
}

func newResourceHub() *resourceHub {
	return &resourceHub{subs: map[chan struct{}]struct{}{}}
}

func (h *resourceHub) subscribe() (ch chan struct{}, cancel func()) {
	ch = make(chan struct{}, 8)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
}

// broadcast never blocks; a subscriber with a full buffer already has a
// pending refresh.
func (h *resourceHub) broadcast() {
	h.mu.Lock()
	for ch := range h.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	h.mu.Unlock()
}

func (h *resourceHub) size() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

type resourceBroadcaster struct {
	mu   sync.Mutex
	hubs map[string]*resourceHub
}

func newResourceBroadcaster() *resourceBroadcaster {
	return &resourceBroadcaster{hubs: map[string]*resourceHub{}}
}

func (b *resourceBroadcaster) hubFor(key resourceKey) *resourceHub {
	k := key.String()
	if k == "" {
		k = "uploads"
	}
	b.mu.Lock()
	h := b.hubs[k]
	if h == nil {
		h = newResourceHub()
		b.hubs[k] = h
	}
	b.mu.Unlock()
	return h
}

func (b *resourceBroadcaster) notify(key resourceKey) {
	b.mu.Lock()
	h := b.hubs[key.String()]
	b.mu.Unlock()
	if h != nil {
		h.broadcast()
	}
}

// drop forgets the hub for key after waking its subscribers one last time so
// they can notice the resource is gone.
func (b *resourceBroadcaster) drop(key resourceKey) {
	b.mu.Lock()
	h := b.hubs[key.String()]
	delete(b.hubs, key.String())
	b.mu.Unlock()
	if h != nil {
		h.broadcast()
	}
}
