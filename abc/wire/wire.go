package wire

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// cborEncMode encodes in canonical mode so equal snapshots produce equal
// bytes.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("wire: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Marshal serializes a snapshot to CBOR bytes.
func Marshal(s *MethodSnapshot) ([]byte, error) {
	return cborEncMode.Marshal(s)
}

// Unmarshal deserializes a snapshot from CBOR bytes.
func Unmarshal(data []byte) (*MethodSnapshot, error) {
	var s MethodSnapshot
	if err := cbor.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("wire: unmarshal snapshot: %w", err)
	}
	return &s, nil
}

// MarshalUnit serializes the snapshots of a compilation unit, in method
// order.
func MarshalUnit(methods []*MethodSnapshot) ([]byte, error) {
	return cborEncMode.Marshal(methods)
}

// UnmarshalUnit deserializes the snapshots of a compilation unit.
func UnmarshalUnit(data []byte) ([]*MethodSnapshot, error) {
	var methods []*MethodSnapshot
	if err := cbor.Unmarshal(data, &methods); err != nil {
		return nil, fmt.Errorf("wire: unmarshal unit: %w", err)
	}
	return methods, nil
}
