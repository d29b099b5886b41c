// Package deps inspects the host for the native runtimes webpage renders with.
package deps

import (
	"context"
	"os/exec"
	"strings"

	"github.com/bnema/webpage/internal/application/port"
)

// PkgConfigClient uses pkg-config to query module versions.
type PkgConfigClient struct {
	// lookPath defaults to exec.LookPath.
	lookPath func(string) (string, error)
}

// NewPkgConfigClient creates a pkg-config client.
func NewPkgConfigClient() *PkgConfigClient {
	return &PkgConfigClient{lookPath: exec.LookPath}
}

// PkgConfigModVersion returns the version pkg-config reports for pkgName.
// A non-empty prefix is prepended to the pkg-config search path.
func (p *PkgConfigClient) PkgConfigModVersion(ctx context.Context, pkgName, prefix string) (string, error) {
	if p == nil || p.lookPath == nil {
		return "", &port.PkgConfigError{
			Kind:    port.PkgConfigErrorKindCommandMissing,
			Package: pkgName,
			Err:     port.ErrPkgConfigMissing,
		}
	}
	pc, err := p.lookPath("pkg-config")
	if err != nil {
		return "", &port.PkgConfigError{
			Kind:    port.PkgConfigErrorKindCommandMissing,
			Package: pkgName,
			Err:     port.ErrPkgConfigMissing,
		}
	}

	cmd := exec.CommandContext(ctx, pc, "--modversion", pkgName)
	cmd.Env = CommandEnvWithPrefix(prefix)

	out, err := cmd.CombinedOutput()
	if err != nil {
		output := strings.TrimSpace(string(out))
		if ctx.Err() != nil {
			return "", &port.PkgConfigError{
				Kind:    port.PkgConfigErrorKindUnknown,
				Package: pkgName,
				Output:  output,
				Err:     ctx.Err(),
			}
		}
		return "", &port.PkgConfigError{
			Kind:    port.PkgConfigErrorKindPackageMissing,
			Package: pkgName,
			Output:  output,
			Err:     port.ErrPkgConfigPackageMissing,
		}
	}

	return strings.TrimSpace(string(out)), nil
}
