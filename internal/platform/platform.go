// Package platform detects the host operating system and maps it onto
// the kernel's closed Platform vocabulary, the way the rest of the
// codebase branches on runtime.GOOS rather than pulling in a detection
// library.
package platform

import (
	"runtime"

	"github.com/jholhewres/policyguard/pkg/kernel"
)

// Detect maps runtime.GOOS onto kernel.Platform. Any GOOS other than the
// three the kernel recognizes falls back to Linux, since policyguardd's
// supported desktop targets are Linux, macOS, and Windows.
func Detect() kernel.Platform {
	switch runtime.GOOS {
	case "darwin":
		return kernel.PlatformMacOS
	case "windows":
		return kernel.PlatformWindows
	default:
		return kernel.PlatformLinux
	}
}
