package catalog

import (
	"sync"

	"github.com/google/uuid"

	"github.com/eclipse-fog05/fog05-net-linux/internal/model"
	"github.com/eclipse-fog05/fog05-net-linux/internal/vnerr"
)

// Memory is an in-memory LocalCatalog. It is safe for concurrent use; the
// orchestrator otherwise serializes per-network-id access itself (see
// internal/orchestrator), so Memory only needs to protect its own maps.
type Memory struct {
	mu         sync.RWMutex
	networks   map[uuid.UUID]*model.VirtualNetwork
	interfaces map[uuid.UUID]*model.VirtualInterface
	namespaces map[uuid.UUID]*model.NetworkNamespace
}

// NewMemory returns an empty in-memory catalog.
func NewMemory() *Memory {
	return &Memory{
		networks:   make(map[uuid.UUID]*model.VirtualNetwork),
		interfaces: make(map[uuid.UUID]*model.VirtualInterface),
		namespaces: make(map[uuid.UUID]*model.NetworkNamespace),
	}
}

func (m *Memory) GetNetwork(id uuid.UUID) (*model.VirtualNetwork, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, ok := m.networks[id]
	return n, ok
}

func (m *Memory) PutNetwork(n *model.VirtualNetwork) error {
	if n == nil {
		return vnerr.New(vnerr.HardFailure, "nil network")
	}
	if n.Internals != nil {
		data, err := n.Internals.MarshalBinary()
		if err != nil {
			return vnerr.Wrap(vnerr.EncodingError, "marshal plugin internals", err)
		}
		restored := &model.PluginInternals{}
		if err := restored.UnmarshalBinary(data); err != nil {
			return vnerr.Wrap(vnerr.EncodingError, "unmarshal plugin internals", err)
		}
		n.Internals = restored
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.networks[n.ID] = n
	return nil
}

func (m *Memory) RemoveNetwork(id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.networks, id)
}

func (m *Memory) ListNetworks() []*model.VirtualNetwork {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.VirtualNetwork, 0, len(m.networks))
	for _, n := range m.networks {
		out = append(out, n)
	}
	return out
}

func (m *Memory) GetInterface(id uuid.UUID) (*model.VirtualInterface, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i, ok := m.interfaces[id]
	return i, ok
}

func (m *Memory) PutInterface(i *model.VirtualInterface) error {
	if i == nil {
		return vnerr.New(vnerr.HardFailure, "nil interface")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.interfaces[i.ID] = i
	return nil
}

func (m *Memory) RemoveInterface(id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.interfaces, id)
}

func (m *Memory) ListInterfaces() []*model.VirtualInterface {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.VirtualInterface, 0, len(m.interfaces))
	for _, i := range m.interfaces {
		out = append(out, i)
	}
	return out
}

func (m *Memory) GetNamespace(id uuid.UUID) (*model.NetworkNamespace, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, ok := m.namespaces[id]
	return n, ok
}

func (m *Memory) PutNamespace(n *model.NetworkNamespace) error {
	if n == nil {
		return vnerr.New(vnerr.HardFailure, "nil namespace")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.namespaces[n.ID] = n
	return nil
}

func (m *Memory) RemoveNamespace(id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.namespaces, id)
}

func (m *Memory) ListNamespaces() []*model.NetworkNamespace {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.NetworkNamespace, 0, len(m.namespaces))
	for _, n := range m.namespaces {
		out = append(out, n)
	}
	return out
}

// AttachChild records childID in parentID's bridge children set and sets
// childID's parent pointer, maintaining invariant I3 on both sides under a
// single lock.
func (m *Memory) AttachChild(parentID, childID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	parent, ok := m.interfaces[parentID]
	if !ok {
		return vnerr.New(vnerr.NotFound, "parent interface")
	}
	if parent.Kind.Tag != model.KindBridge {
		return vnerr.New(vnerr.WrongKind, "parent is not a bridge")
	}
	child, ok := m.interfaces[childID]
	if !ok {
		return vnerr.New(vnerr.NotFound, "child interface")
	}
	if parent.Kind.Bridge.Children == nil {
		parent.Kind.Bridge.Children = make(map[uuid.UUID]struct{})
	}
	parent.Kind.Bridge.Children[childID] = struct{}{}
	child.Parent = &parentID
	return nil
}

// DetachChild is the inverse of AttachChild.
func (m *Memory) DetachChild(parentID, childID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	parent, ok := m.interfaces[parentID]
	if ok && parent.Kind.Tag == model.KindBridge && parent.Kind.Bridge.Children != nil {
		delete(parent.Kind.Bridge.Children, childID)
	}
	if child, ok := m.interfaces[childID]; ok {
		child.Parent = nil
	}
	return nil
}

// AddToNamespace records ifaceID in nsID's interface list and sets the
// interface's namespace pointer, maintaining invariant I4 on both sides.
func (m *Memory) AddToNamespace(nsID, ifaceID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ns, ok := m.namespaces[nsID]
	if !ok {
		return vnerr.New(vnerr.NotFound, "namespace")
	}
	iface, ok := m.interfaces[ifaceID]
	if !ok {
		return vnerr.New(vnerr.NotFound, "interface")
	}
	for _, existing := range ns.Interfaces {
		if existing == ifaceID {
			iface.Namespace = &nsID
			return nil
		}
	}
	ns.Interfaces = append(ns.Interfaces, ifaceID)
	iface.Namespace = &nsID
	return nil
}

// RemoveFromNamespace is the inverse of AddToNamespace.
func (m *Memory) RemoveFromNamespace(nsID, ifaceID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ns, ok := m.namespaces[nsID]; ok {
		kept := ns.Interfaces[:0]
		for _, id := range ns.Interfaces {
			if id != ifaceID {
				kept = append(kept, id)
			}
		}
		ns.Interfaces = kept
	}
	if iface, ok := m.interfaces[ifaceID]; ok {
		iface.Namespace = nil
	}
	return nil
}

var _ LocalCatalog = (*Memory)(nil)
