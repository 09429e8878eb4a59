// Package cacheerr holds the sentinel errors shared by the cache drivers.
package cacheerr

import "errors"

// ErrKeyNotFound is returned by every driver when a key is absent or expired.
var ErrKeyNotFound = errors.New("key not found")
