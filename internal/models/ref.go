package models

// Ref is an entity's position in the Organization → Project → Task → Comment
// chain. Zero fields are levels above or below the entity.
type Ref struct {
	OrganizationID uint64
	ProjectID      uint64
	TaskID         uint64
}

// Entity is implemented by the four tenant-owned record types. The concrete
// type decides how the owning organization is reached.
type Entity interface {
	entity()
}

func (*Organization) entity() {}
func (*Project) entity()      {}
func (*Task) entity()         {}
func (*Comment) entity()      {}
