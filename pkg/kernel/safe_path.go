package kernel

import (
	"os"
	"path/filepath"
	"strings"
)

// systemPathBlocklist is a belt-and-braces denial of common footguns, even
// if a safe root is misconfigured to include one. It carries both Unix
// and Windows system-path prefixes, since policyguardd targets all three
// desktop platforms; the matching itself stays a case-folded substring
// check rather than component-level, OS-native matching, which remains
// documented future work rather than something silently fixed here.
var systemPathBlocklist = []string{
	"/etc/", "/usr/bin/", "/bin/", "/sbin/", "/boot/", "/dev/", "/proc/", "/sys/",
	"/windows/", "/program files/", "/program files (x86)/", "/programdata/",
}

// resolveSafePathKeys is the field precedence used by the legacy
// single-field SafePath wrapper.
var resolveSafePathKeys = []string{"path", "source", "destination", "dest"}

// ResolveSafePath canonicalizes path and checks it against the system-path
// blocklist and containment within safeDirs. It denies non-existent paths
// by design (step 2): a caller wishing to create a new file must pre-create
// the parent directory, or the tool executor must retry resolution against
// the parent.
func ResolveSafePath(path string, safeDirs []string) (string, error) {
	// 1. Absolute-ize against CWD.
	abs := path
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return "", Invalid("cannot resolve current working directory")
		}
		abs = filepath.Join(cwd, path)
	}

	// 2. Canonicalize: resolve symlinks, eliminate . and ...
	canonical, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", Denied("Path cannot be resolved")
	}

	// 3. System-path blocklist, case-folded substring check.
	lowered := strings.ToLower(filepath.ToSlash(canonical)) + "/"
	for _, blocked := range systemPathBlocklist {
		if strings.Contains(lowered, blocked) {
			return "", Denied("System paths are not allowed")
		}
	}

	// 4. Containment: canonicalize each safe dir, skip those that fail,
	// and accept the first canonical prefix match.
	for _, dir := range safeDirs {
		canonicalDir, err := filepath.EvalSymlinks(dir)
		if err != nil {
			continue
		}
		if isPathPrefix(canonicalDir, canonical) {
			return canonical, nil
		}
	}

	// 5. No safe directory contained it.
	return "", Denied("Path not within safe directories")
}

// isPathPrefix reports whether candidate is root itself or lives under
// root, compared component-wise on canonical forms to avoid trailing
// separator and partial-segment false positives (e.g. /home/u vs
// /home/user).
func isPathPrefix(root, candidate string) bool {
	root = filepath.Clean(root)
	candidate = filepath.Clean(candidate)

	if root == candidate {
		return true
	}

	sep := string(filepath.Separator)
	if !strings.HasSuffix(root, sep) {
		root += sep
	}
	return strings.HasPrefix(candidate, root)
}

// ResolveSafePathFromParams pulls the first present field among path,
// source, destination, dest (in that precedence) and resolves it, failing
// Invalid when none of those fields is present. Tools with two distinct
// path endpoints (move_file, rename_file, copy_file) must not rely on
// this single-field resolver — Authorize calls ResolveSafePath once per
// endpoint for those instead, so a destination outside the safe
// directories is caught even when the source is fine.
func ResolveSafePathFromParams(p Params, safeDirs []string) (string, error) {
	_, value, ok := p.FirstString(resolveSafePathKeys...)
	if !ok {
		return "", Invalid("no path/source/destination/dest parameter present")
	}
	return ResolveSafePath(value, safeDirs)
}
