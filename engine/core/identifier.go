package core

import "fmt"

// IdentifierPool hands out reusable numeric ids. Freed slots are
// recycled before the pool grows.
type IdentifierPool struct {
	owners []interface{}
}

func NewIdentifierPool() *IdentifierPool {
	return &IdentifierPool{
		owners: make([]interface{}, 0, 100),
	}
}

// Acquire claims the first free slot for the owner, growing the pool
// when none is free.
func (p *IdentifierPool) Acquire(owner interface{}) uint32 {
	for i := range p.owners {
		if p.owners[i] == nil {
			p.owners[i] = owner
			return uint32(i)
		}
	}
	p.owners = append(p.owners, owner)
	return uint32(len(p.owners) - 1)
}

// Release frees a slot, making its id available again.
func (p *IdentifierPool) Release(id uint32) error {
	if int(id) >= len(p.owners) {
		return fmt.Errorf("identifier release: id '%d' out of range (max=%d); nothing was done", id, len(p.owners))
	}
	p.owners[id] = nil
	return nil
}
