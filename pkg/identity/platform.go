package identity

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"runtime"
	"strings"
)

// DefaultMachineIDPaths are the locations of the OS machine id, in lookup order
var DefaultMachineIDPaths = []string{
	"/etc/machine-id",
	"/var/lib/dbus/machine-id",
}

// HostPlatform reads the identifier of the machine the process runs on
type HostPlatform struct {
	Paths []string
	GOOS  string
}

// NewHostPlatform returns a HostPlatform for the current OS
func NewHostPlatform() *HostPlatform {
	return &HostPlatform{
		Paths: DefaultMachineIDPaths,
		GOOS:  runtime.GOOS,
	}
}

// RequiresSync is true on iOS, where the vendor identifier must be synced first
func (p *HostPlatform) RequiresSync() bool {
	return p.GOOS == "ios"
}

// SyncUniqueID re-reads the machine id
func (p *HostPlatform) SyncUniqueID(ctx context.Context) (string, error) {
	return p.UniqueID(ctx)
}

// UniqueID returns the first non-empty machine id found
func (p *HostPlatform) UniqueID(ctx context.Context) (string, error) {
	for _, path := range p.Paths {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return "", err
		}
		if id := strings.TrimSpace(string(data)); id != "" {
			return id, nil
		}
	}
	return "", ErrPlatformUnavailable
}

// StaticPlatform always reports the same identifier
type StaticPlatform struct {
	ID string
}

func (p StaticPlatform) RequiresSync() bool { return false }

func (p StaticPlatform) SyncUniqueID(ctx context.Context) (string, error) {
	return p.UniqueID(ctx)
}

func (p StaticPlatform) UniqueID(context.Context) (string, error) {
	if p.ID == "" {
		return "", ErrPlatformUnavailable
	}
	return p.ID, nil
}

var (
	_ Platform = (*HostPlatform)(nil)
	_ Platform = StaticPlatform{}
)
