package types

// Store receives write-through copies of every engine mutation. The engine's
// in-memory maps stay authoritative; the store only mirrors them so state can
// be restored at startup.
type Store interface {
	Save(records ...any) error
	Delete(records ...any) error
}

// NopStore discards all writes. Used by tests and the smoketest.
type NopStore struct{}

func (NopStore) Save(records ...any) error   { return nil }
func (NopStore) Delete(records ...any) error { return nil }

// Ownership is the engine-wide administrator singleton. It is shared by every
// component that gates mutations on the administrator identity.
type Ownership struct {
	owner string
}

func NewOwnership(owner string) *Ownership {
	return &Ownership{owner: owner}
}

func (o *Ownership) Owner() string { return o.owner }

func (o *Ownership) Is(addr string) bool { return addr == o.owner }

// Transfer reassigns the administrator. Returns false when caller is not the
// current owner; the caller maps that to its component error.
func (o *Ownership) Transfer(caller, next string) bool {
	if caller != o.owner || next == "" {
		return false
	}
	o.owner = next
	return true
}
