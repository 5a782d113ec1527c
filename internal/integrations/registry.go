// Файл: internal/integrations/registry.go
package integrations

import (
	"fmt"
	"sync"
)

// RegistryInterface - упорядоченный набор проверок.
type RegistryInterface interface {
	// Register добавляет проверку в конец списка.
	Register(probe Probe) error

	// Get находит проверку по имени.
	Get(name string) (Probe, error)

	// All возвращает проверки в порядке регистрации.
	All() []Probe
}

type Registry struct {
	probes map[string]Probe
	order  []string
	mu     sync.RWMutex
}

func NewRegistry() RegistryInterface {
	return &Registry{
		probes: make(map[string]Probe),
	}
}

func (r *Registry) Register(probe Probe) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := probe.Name()
	if _, exists := r.probes[name]; exists {
		return fmt.Errorf("проверка с именем '%s' уже зарегистрирована", name)
	}

	r.probes[name] = probe
	r.order = append(r.order, name)
	return nil
}

func (r *Registry) Get(name string) (Probe, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	probe, exists := r.probes[name]
	if !exists {
		return nil, fmt.Errorf("проверка с именем '%s' не найдена", name)
	}
	return probe, nil
}

func (r *Registry) All() []Probe {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Probe, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.probes[name])
	}
	return out
}
