//go:build windows

package execx

// executableExt returns the extension probed for bare program names under
// the path prefix.
func executableExt() string { return ".exe" }
