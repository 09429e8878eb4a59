// Package keys is the registry of logical storage domains and the keys derived from them.
//
// Keys are laid out as "<namespace>:<domain>" and, for partitioned domains,
// "<namespace>:<domain>-<id>". The layout is persisted on devices, so renaming a
// domain or namespace orphans existing data and must be treated as a migration.
package keys

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultNamespace is the namespace the mobile app has always used
const DefaultNamespace = "com.mrapps.appdaloja"

// ErrEmptyNamespace is returned when a registry is created without a namespace
var ErrEmptyNamespace = errors.New("namespace must not be empty")

// Domain is a logical area of the store
type Domain string

const (
	UniqueID     Domain = "uniqueId"
	Global       Domain = "global"
	Profile      Domain = "profile"
	TempProfile  Domain = "tempProfile"
	StoreProfile Domain = "store"
	Ads          Domain = "ads"
	AdsUpdatedAt Domain = "adsUpdatedAt"
	Config       Domain = "config"
)

// Domains returns every known domain
func Domains() []Domain {
	return []Domain{UniqueID, Global, Profile, TempProfile, StoreProfile, Ads, AdsUpdatedAt, Config}
}

// Partitioned reports whether the domain holds one value per entity id
func (d Domain) Partitioned() bool {
	return d == Ads || d == AdsUpdatedAt
}

// Registry derives storage keys within one namespace
type Registry struct {
	namespace string
}

// New creates a registry for namespace
func New(namespace string) (Registry, error) {
	namespace = strings.TrimSpace(namespace)
	if namespace == "" {
		return Registry{}, ErrEmptyNamespace
	}
	return Registry{namespace: namespace}, nil
}

// Default returns the registry for DefaultNamespace
func Default() Registry {
	return Registry{namespace: DefaultNamespace}
}

// Namespace returns the registry namespace
func (r Registry) Namespace() string {
	return r.namespace
}

// Key returns "<namespace>:<domain>"
func (r Registry) Key(d Domain) string {
	return r.namespace + ":" + string(d)
}

// Partition returns "<namespace>:<domain>-<id>"
func (r Registry) Partition(d Domain, id string) string {
	return r.partitionPrefix(d) + id
}

// Pattern returns a glob matching every partition of d
func (r Registry) Pattern(d Domain) string {
	return r.partitionPrefix(d) + "*"
}

// PartitionID extracts the entity id from a partitioned key of domain d
func (r Registry) PartitionID(d Domain, key string) (string, bool) {
	prefix := r.partitionPrefix(d)
	if !strings.HasPrefix(key, prefix) || len(key) == len(prefix) {
		return "", false
	}
	return strings.TrimPrefix(key, prefix), true
}

func (r Registry) partitionPrefix(d Domain) string {
	return r.Key(d) + "-"
}

// Validate checks that every domain maps to a distinct key and that no
// partition prefix shadows another domain's partitions
func (r Registry) Validate() error {
	if r.namespace == "" {
		return ErrEmptyNamespace
	}

	seen := make(map[string]Domain)
	for _, d := range Domains() {
		key := r.Key(d)
		if other, ok := seen[key]; ok {
			return fmt.Errorf("domains %q and %q share key %q", other, d, key)
		}
		seen[key] = d
	}

	for _, a := range Domains() {
		if !a.Partitioned() {
			continue
		}
		for _, b := range Domains() {
			if a == b || !b.Partitioned() {
				continue
			}
			if strings.HasPrefix(r.partitionPrefix(b), r.partitionPrefix(a)) {
				return fmt.Errorf("partitions of %q shadow partitions of %q", a, b)
			}
		}
	}
	return nil
}
