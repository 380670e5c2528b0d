package identity

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// BaseUIDLength is the number of characters in a base UID.
	BaseUIDLength = 9
	// KeyLength is the total length of a concatenated identity key.
	KeyLength = 14
	// FirstVariant is the variant assigned on first export.
	FirstVariant = "AA"
	// LastVariant is the final usable variant code.
	LastVariant = "ZZ"
	// MaxVersion is the largest version representable in the 3-digit field.
	MaxVersion = 999
)

// AssetIdentity is the stable identity of one packaged asset.
type AssetIdentity struct {
	BaseUID string
	Variant string
	Version int
}

// Key returns the 14-character concatenated identity key.
func (id AssetIdentity) Key() string {
	return fmt.Sprintf("%s%s%03d", id.BaseUID, id.Variant, id.Version)
}

// Line returns the base UID plus variant, identifying one version series.
func (id AssetIdentity) Line() string {
	return id.BaseUID + id.Variant
}

func (id AssetIdentity) String() string {
	return id.Key()
}

// Validate checks the structural invariants of the identity fields.
func (id AssetIdentity) Validate() error {
	if len(id.BaseUID) != BaseUIDLength {
		return fmt.Errorf("base uid %q must be %d characters", id.BaseUID, BaseUIDLength)
	}
	for _, r := range id.BaseUID {
		if !isAlnum(r) {
			return fmt.Errorf("base uid %q must be alphanumeric", id.BaseUID)
		}
	}
	if !validVariant(id.Variant) {
		return fmt.Errorf("variant %q must be two letters AA..ZZ", id.Variant)
	}
	if id.Version < 1 || id.Version > MaxVersion {
		return fmt.Errorf("version %d out of range 1..%d", id.Version, MaxVersion)
	}
	return nil
}

// ParseKey splits a 14-character identity key into its fields.
func ParseKey(key string) (AssetIdentity, error) {
	key = strings.TrimSpace(key)
	if len(key) != KeyLength {
		return AssetIdentity{}, fmt.Errorf("identity key %q must be %d characters", key, KeyLength)
	}
	version, err := strconv.Atoi(key[BaseUIDLength+2:])
	if err != nil {
		return AssetIdentity{}, fmt.Errorf("identity key %q has invalid version field: %w", key, err)
	}
	id := AssetIdentity{
		BaseUID: key[:BaseUIDLength],
		Variant: key[BaseUIDLength : BaseUIDLength+2],
		Version: version,
	}
	if err := id.Validate(); err != nil {
		return AssetIdentity{}, err
	}
	return id, nil
}

// NextVariant returns the variant code following the given one.
func NextVariant(variant string) (string, bool) {
	if !validVariant(variant) || variant == LastVariant {
		return "", false
	}
	letters := []byte(variant)
	if letters[1] == 'Z' {
		letters[0]++
		letters[1] = 'A'
	} else {
		letters[1]++
	}
	return string(letters), true
}

func validVariant(variant string) bool {
	if len(variant) != 2 {
		return false
	}
	for i := 0; i < 2; i++ {
		if variant[i] < 'A' || variant[i] > 'Z' {
			return false
		}
	}
	return true
}

func isAlnum(r rune) bool {
	switch {
	case r >= '0' && r <= '9', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		return true
	}
	return false
}
