package deps

import (
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
)

// ApplyPrefixEnv prepends search paths below prefix to the process
// environment. Used before GTK starts so a WebKitGTK installed under /opt
// finds its typelibs and data files.
func ApplyPrefixEnv(prefix string) {
	if strings.TrimSpace(prefix) == "" {
		return
	}
	for key, values := range prefixEnv(prefix, runtime.GOARCH) {
		_ = os.Setenv(key, prependPathList(os.Getenv(key), values...))
	}
}

// CommandEnvWithPrefix returns an environment suitable for exec.Cmd.Env
// with the prefix search paths prepended. Entries are sorted by key.
func CommandEnvWithPrefix(prefix string) []string {
	if strings.TrimSpace(prefix) == "" {
		return os.Environ()
	}

	env := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	for k, values := range prefixEnv(prefix, runtime.GOARCH) {
		env[k] = prependPathList(env[k], values...)
	}

	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+env[k])
	}
	return out
}

// multiarchTriple maps GOARCH to the Debian multiarch library directory.
func multiarchTriple(goarch string) string {
	switch goarch {
	case "amd64":
		return "x86_64-linux-gnu"
	case "arm64":
		return "aarch64-linux-gnu"
	case "riscv64":
		return "riscv64-linux-gnu"
	default:
		return ""
	}
}

func prefixEnv(prefix, goarch string) map[string][]string {
	prefix = filepath.Clean(prefix)

	libDirs := []string{
		filepath.Join(prefix, "lib"),
		filepath.Join(prefix, "lib64"),
	}
	if triple := multiarchTriple(goarch); triple != "" {
		libDirs = append(libDirs, filepath.Join(prefix, "lib", triple))
	}

	under := func(sub string) []string {
		out := make([]string, 0, len(libDirs))
		for _, dir := range libDirs {
			out = append(out, filepath.Join(dir, sub))
		}
		return out
	}

	return map[string][]string{
		"PKG_CONFIG_PATH": append(under("pkgconfig"), filepath.Join(prefix, "share", "pkgconfig")),
		"LD_LIBRARY_PATH": libDirs,
		"GI_TYPELIB_PATH": under("girepository-1.0"),
		"XDG_DATA_DIRS":   {filepath.Join(prefix, "share")},
	}
}

func prependPathList(existing string, values ...string) string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(values)+4)

	add := func(p string) {
		p = strings.TrimSpace(p)
		if p == "" {
			return
		}
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}

	for _, v := range values {
		add(v)
	}
	if existing != "" {
		for _, v := range strings.Split(existing, ":") {
			add(v)
		}
	}

	return strings.Join(out, ":")
}
