package event

import "sync"

type Handler func(payload interface{})

// Bus is the in-process pub/sub fabric connecting the engine to side
// listeners (audit, metrics). Handlers run asynchronously; publishers never
// block on a slow listener.
type Bus struct {
	handlers map[string][]Handler
	mu       sync.RWMutex
}

func NewBus() *Bus {
	return &Bus{
		handlers: make(map[string][]Handler),
	}
}

func (b *Bus) Subscribe(name string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[name] = append(b.handlers[name], handler)
}

func (b *Bus) Publish(name string, payload interface{}) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if hs, ok := b.handlers[name]; ok {
		for _, h := range hs {
			go h(payload)
		}
	}
}
