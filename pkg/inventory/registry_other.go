//go:build !windows

package inventory

// NewSystemSource returns an empty Source on platforms without an uninstall
// registry. Components running outside Windows see every product as absent.
func NewSystemSource() Source {
	return StaticSource(nil)
}
