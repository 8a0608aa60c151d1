package event

import (
	"fmt"
	"sort"
	"sync"

	"github.com/shopsphere/backend/internal/domain/shared"
)

// DecodeFunc turns a stored payload back into a concrete integration event
type DecodeFunc func(payload []byte) (shared.IntegrationEvent, error)

// DispatchRegistry maps event type discriminators to decoders. The set of
// known types is fixed at wiring time; the relay refuses payloads whose
// discriminator has no entry rather than guessing.
type DispatchRegistry struct {
	mu       sync.RWMutex
	decoders map[string]DecodeFunc
}

// NewDispatchRegistry creates an empty dispatch registry
func NewDispatchRegistry() *DispatchRegistry {
	return &DispatchRegistry{
		decoders: make(map[string]DecodeFunc),
	}
}

// Register binds a decoder to an event type discriminator. Registering the
// same discriminator twice replaces the previous decoder.
func (r *DispatchRegistry) Register(eventType string, decode DecodeFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decoders[eventType] = decode
}

// Decode resolves the discriminator and decodes the payload. An unknown
// discriminator is an error the caller handles like any other publish failure.
func (r *DispatchRegistry) Decode(eventType string, payload []byte) (shared.IntegrationEvent, error) {
	r.mu.RLock()
	decode, ok := r.decoders[eventType]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown event type: %s", eventType)
	}

	event, err := decode(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s event: %w", eventType, err)
	}
	return event, nil
}

// IsRegistered checks if an event type has a decoder
func (r *DispatchRegistry) IsRegistered(eventType string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.decoders[eventType]
	return ok
}

// RegisteredTypes returns all registered discriminators in sorted order
func (r *DispatchRegistry) RegisteredTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.decoders))
	for t := range r.decoders {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
