// Package catalog defines the local and global catalog collaborator
// interfaces the orchestrator reads and mutates, plus an in-memory
// implementation of the local one suitable for a single-node agent. No
// implementation of the (external, cluster-wide) global catalog is
// provided here.
package catalog

import (
	"github.com/google/uuid"

	"github.com/eclipse-fog05/fog05-net-linux/internal/model"
)

// LocalCatalog is the per-node bookkeeping collaborator: typed get/put/
// remove for each entity kind the orchestrator tracks. It is the catalog
// of record for "has been realized on this kernel."
type LocalCatalog interface {
	GetNetwork(id uuid.UUID) (*model.VirtualNetwork, bool)
	PutNetwork(n *model.VirtualNetwork) error
	RemoveNetwork(id uuid.UUID)
	ListNetworks() []*model.VirtualNetwork

	GetInterface(id uuid.UUID) (*model.VirtualInterface, bool)
	PutInterface(i *model.VirtualInterface) error
	RemoveInterface(id uuid.UUID)
	ListInterfaces() []*model.VirtualInterface

	GetNamespace(id uuid.UUID) (*model.NetworkNamespace, bool)
	PutNamespace(n *model.NetworkNamespace) error
	RemoveNamespace(id uuid.UUID)
	ListNamespaces() []*model.NetworkNamespace

	// AttachChild/DetachChild and AddToNamespace/RemoveFromNamespace
	// maintain invariants I3 and I4 (spec §3) transactionally: every
	// orchestrator mutation that moves an existing interface under a
	// bridge or into a namespace goes through these rather than touching
	// Kind.Bridge.Children or the Namespace/Parent fields inline. Records
	// built in one go by network construction set both sides of those
	// relations directly before they are stored.
	AttachChild(parentID, childID uuid.UUID) error
	DetachChild(parentID, childID uuid.UUID) error
	AddToNamespace(nsID, ifaceID uuid.UUID) error
	RemoveFromNamespace(nsID, ifaceID uuid.UUID) error
}

// GlobalCatalog is the cluster-wide collaborator supplying desired-state
// VirtualNetwork parameters; it is an external collaborator per spec and
// this repo does not provide a production implementation of it, only the
// interface the orchestrator consumes.
type GlobalCatalog interface {
	DesiredNetwork(id uuid.UUID) (*model.VirtualNetwork, bool)
}
