package identity

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"

	"assetpack/internal/services"
)

// Kind selects the allocation behavior.
type Kind string

const (
	// KindCreateNew mints a fresh base UID with variant AA, version 1.
	KindCreateNew Kind = "create_new"
	// KindNewVariant keeps the base UID and advances to the next unused variant.
	KindNewVariant Kind = "new_variant"
	// KindNewVersion keeps base UID and variant and increments the version.
	KindNewVersion Kind = "new_version"
)

// LibraryIndex is the read side of the library the allocator consults.
// Allocation is a pure computation over this index, not a reservation;
// callers must re-check uniqueness under a lock before committing.
type LibraryIndex interface {
	// BaseUIDExists reports whether any asset uses the given base UID.
	BaseUIDExists(ctx context.Context, baseUID string) (bool, error)
	// Variants returns the variant codes in use under a base UID.
	Variants(ctx context.Context, baseUID string) ([]string, error)
	// LatestVersion returns the highest committed version for a base UID and
	// variant, with ok=false when the pair has no versions yet.
	LatestVersion(ctx context.Context, baseUID, variant string) (version int, ok bool, err error)
}

// Allocator computes the next identity for an export.
type Allocator struct {
	index LibraryIndex
}

// NewAllocator constructs an allocator over the given library index.
func NewAllocator(index LibraryIndex) *Allocator {
	return &Allocator{index: index}
}

const freshUIDAttempts = 5

// Allocate computes an identity for the requested kind. KindNewVariant and
// KindNewVersion require an existing identity.
func (a *Allocator) Allocate(ctx context.Context, kind Kind, existing *AssetIdentity) (AssetIdentity, error) {
	switch kind {
	case KindCreateNew:
		return a.allocateNew(ctx)
	case KindNewVariant:
		if existing == nil {
			return AssetIdentity{}, services.Wrap(services.ErrValidation, "allocating", "new variant", "existing identity required", nil)
		}
		return a.allocateVariant(ctx, *existing)
	case KindNewVersion:
		if existing == nil {
			return AssetIdentity{}, services.Wrap(services.ErrValidation, "allocating", "new version", "existing identity required", nil)
		}
		return a.allocateVersion(ctx, *existing)
	default:
		return AssetIdentity{}, services.Wrap(services.ErrValidation, "allocating", "select kind", fmt.Sprintf("unknown allocation kind %q", kind), nil)
	}
}

func (a *Allocator) allocateNew(ctx context.Context) (AssetIdentity, error) {
	for attempt := 0; attempt < freshUIDAttempts; attempt++ {
		baseUID := newBaseUID()
		exists, err := a.index.BaseUIDExists(ctx, baseUID)
		if err != nil {
			return AssetIdentity{}, fmt.Errorf("check base uid: %w", err)
		}
		if !exists {
			return AssetIdentity{BaseUID: baseUID, Variant: FirstVariant, Version: 1}, nil
		}
	}
	return AssetIdentity{}, services.Wrap(services.ErrIdentityCollision, "allocating", "mint base uid", "repeated collisions minting a fresh base uid", nil)
}

func (a *Allocator) allocateVariant(ctx context.Context, existing AssetIdentity) (AssetIdentity, error) {
	if err := existing.Validate(); err != nil {
		return AssetIdentity{}, services.Wrap(services.ErrValidation, "allocating", "new variant", err.Error(), nil)
	}
	used, err := a.index.Variants(ctx, existing.BaseUID)
	if err != nil {
		return AssetIdentity{}, fmt.Errorf("list variants: %w", err)
	}
	usedSet := make(map[string]struct{}, len(used))
	for _, variant := range used {
		usedSet[strings.ToUpper(strings.TrimSpace(variant))] = struct{}{}
	}

	candidate := FirstVariant
	for {
		if _, taken := usedSet[candidate]; !taken {
			return AssetIdentity{BaseUID: existing.BaseUID, Variant: candidate, Version: 1}, nil
		}
		next, ok := NextVariant(candidate)
		if !ok {
			return AssetIdentity{}, services.Wrap(services.ErrIdentityExhausted, "allocating", "new variant",
				fmt.Sprintf("variant space AA..ZZ exhausted for base uid %s", existing.BaseUID), nil)
		}
		candidate = next
	}
}

func (a *Allocator) allocateVersion(ctx context.Context, existing AssetIdentity) (AssetIdentity, error) {
	if err := existing.Validate(); err != nil {
		return AssetIdentity{}, services.Wrap(services.ErrValidation, "allocating", "new version", err.Error(), nil)
	}
	latest, ok, err := a.index.LatestVersion(ctx, existing.BaseUID, existing.Variant)
	if err != nil {
		return AssetIdentity{}, fmt.Errorf("look up latest version: %w", err)
	}
	next := existing.Version + 1
	if ok && latest >= existing.Version {
		next = latest + 1
	}
	if next > MaxVersion {
		return AssetIdentity{}, services.Wrap(services.ErrIdentityExhausted, "allocating", "new version",
			fmt.Sprintf("version space exhausted for %s%s", existing.BaseUID, existing.Variant), nil)
	}
	return AssetIdentity{BaseUID: existing.BaseUID, Variant: existing.Variant, Version: next}, nil
}

// newBaseUID derives a 9-character lowercase base-36 token from UUID entropy.
func newBaseUID() string {
	id := uuid.New()
	value := new(big.Int).SetBytes(id[:])
	encoded := value.Text(36)
	// 16 bytes encode to ~25 base-36 digits, always enough for 9.
	return encoded[:BaseUIDLength]
}
