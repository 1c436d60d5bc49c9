//go:build !windows

package execx

func executableExt() string { return "" }
