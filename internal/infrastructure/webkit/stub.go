//go:build !webkit_cgo

package webkit

// IsNativeAvailable reports whether WebKitGTK support was compiled in.
func IsNativeAvailable() bool {
	return false
}
