package ecs

import "strconv"

// ID packs a 32-bit generation above a 32-bit slot index.
type ID uint64

const (
	indexBits = 32
	indexMask = 1<<indexBits - 1

	// NullIndex is the index carried by ids that never referred to a slot.
	NullIndex = indexMask
)

// NullID never resolves in any allocator.
const NullID = ID(NullIndex)

func makeID(gen, index uint32) ID {
	return ID(uint64(gen)<<indexBits | uint64(index))
}

// Index returns the slot position encoded in the id.
func (id ID) Index() uint32 {
	return uint32(uint64(id) & indexMask)
}

// Generation returns how many times the slot was reused before this id.
func (id ID) Generation() uint32 {
	return uint32(uint64(id) >> indexBits)
}

func (id ID) String() string {
	return strconv.FormatUint(uint64(id.Generation()), 10) + ":" + strconv.FormatUint(uint64(id.Index()), 10)
}

// Entity identifies one simulated object.
type Entity ID

// NullEntity is returned wherever no entity applies.
const NullEntity = Entity(NullID)

func (e Entity) Index() uint32 {
	return ID(e).Index()
}

func (e Entity) Generation() uint32 {
	return ID(e).Generation()
}

func (e Entity) String() string {
	return "entity(" + ID(e).String() + ")"
}

// Valid reports whether e is anything other than the null entity. It says
// nothing about liveness; use World.Exists for that.
func (e Entity) Valid() bool {
	return e != NullEntity
}
