package rt

import "github.com/google/uuid"

// Guid is the runtime's 128-bit globally unique identifier value, grounded
// in original_source's RTGuidTests.cpp (New/Empty/IsValid/ToBytes/FromBytes)
// and backed here by google/uuid rather than a hand-rolled RFC 4122
// generator, since the example pack's wudi-hey module already pulls in
// google/uuid for exactly this purpose.
type Guid struct {
	id uuid.UUID
}

// NewGuid generates a random (version 4) Guid.
func NewGuid() Guid { return Guid{id: uuid.New()} }

// EmptyGuid returns the all-zero Guid, matching rt_guid_empty.
func EmptyGuid() Guid { return Guid{} }

// IsEmpty reports whether g is the all-zero Guid.
func (g Guid) IsEmpty() bool { return g.id == uuid.Nil }

// IsValid reports whether s parses as a well-formed Guid string.
func IsValid(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// String renders the canonical 8-4-4-4-12 hyphenated form.
func (g Guid) String() string { return g.id.String() }

// ToBytes returns the 16-byte big-endian representation.
func (g Guid) ToBytes() [16]byte { return g.id }

// FromBytes reconstructs a Guid from a 16-byte representation.
func FromBytes(b [16]byte) Guid { return Guid{id: uuid.UUID(b)} }

// ParseGuid parses s into a Guid, reporting an error for malformed input
// rather than trapping — guid parsing is an ordinary fallible conversion,
// not one of the VM's checked-arithmetic/cast opcodes.
func ParseGuid(s string) (Guid, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return Guid{}, err
	}
	return Guid{id: id}, nil
}

// Eq reports whether two Guids are equal.
func (g Guid) Eq(other Guid) bool { return g.id == other.id }
