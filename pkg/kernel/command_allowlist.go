package kernel

import "fmt"

// AllowlistedCommand documents one entry in the command allowlist: the
// canonical binary locations per platform, and the human-readable argv
// shape that ValidateCommand enforces for it. FullPaths and ArgPatterns
// exist for documentation/introspection — the validator itself matches on
// command name and argv shape, not on these strings.
type AllowlistedCommand struct {
	Name        string
	FullPaths   map[Platform]string
	ArgPatterns []string
}

// CommandCatalogue is the fixed, build-time table of allowlisted commands.
// It renders to documentation; it is not read by ValidateCommand, whose
// dispatch is a compiled switch so the shape rules stay exhaustive and
// reviewable in one place.
var CommandCatalogue = []AllowlistedCommand{
	{
		Name: "xdg-open",
		FullPaths: map[Platform]string{
			PlatformLinux: "/usr/bin/xdg-open",
		},
		ArgPatterns: []string{"<path-or-url>"},
	},
	{
		Name: "open",
		FullPaths: map[Platform]string{
			PlatformMacOS: "/usr/bin/open",
		},
		ArgPatterns: []string{"<path-or-url>"},
	},
	{
		Name: "start",
		FullPaths: map[Platform]string{
			PlatformWindows: `C:\Windows\System32\start.exe`,
		},
		ArgPatterns: []string{"<path-or-url>"},
	},
	{Name: "uname", ArgPatterns: []string{"-a"}},
	{Name: "df", ArgPatterns: []string{"-h"}},
	{Name: "free", ArgPatterns: []string{"-h"}},
	{Name: "ps", ArgPatterns: []string{"aux"}},
	{Name: "kill", ArgPatterns: []string{"-TERM <pid>"}},
	{Name: "git", ArgPatterns: []string{"clone <repo-url> <dest-path>"}},
	{Name: "curl", ArgPatterns: []string{"-L <url> -o <dest-path>"}},
	{Name: "tar", ArgPatterns: []string{"-xzf <tarball> -C <dest-path>"}},
	{Name: "apt", ArgPatterns: []string{"remove <package>"}},
	{Name: "dnf", ArgPatterns: []string{"remove <package>"}},
	{Name: "snap", ArgPatterns: []string{"remove <package>"}},
	{Name: "pacman", ArgPatterns: []string{"-R <package>"}},
	{Name: "flatpak", ArgPatterns: []string{"uninstall <target>"}},
	{Name: "brew", ArgPatterns: []string{"uninstall <target>"}},
	{Name: "winget", ArgPatterns: []string{"uninstall --id <id>"}},
}

// ValidateCommand checks an already-parsed {command, args} pair against
// the fixed argv-shape table. It is total: every input yields Ok or a
// *ToolError of KindDenied; it never panics and never returns Invalid
// (Invalid is reserved for the param-extraction wrapper). Any command name
// outside the switch, or any argv length/positional-literal mismatch,
// falls through to Denied — the default is always denial.
func ValidateCommand(command string, args []string) error {
	switch command {
	case "xdg-open", "open", "start":
		if len(args) == 1 {
			return nil
		}

	case "uname":
		if equalArgs(args, "-a") {
			return nil
		}

	case "df", "free":
		if equalArgs(args, "-h") {
			return nil
		}

	case "ps":
		if equalArgs(args, "aux") {
			return nil
		}

	case "kill":
		if len(args) == 2 && args[0] == "-TERM" {
			return nil
		}

	case "git":
		if len(args) == 3 && args[0] == "clone" {
			return nil
		}

	case "curl":
		if len(args) == 4 && args[0] == "-L" && args[2] == "-o" {
			return nil
		}

	case "tar":
		if len(args) == 4 && args[0] == "-xzf" && args[2] == "-C" {
			return nil
		}

	case "apt", "dnf", "snap":
		if len(args) == 2 && args[0] == "remove" {
			return nil
		}

	case "pacman":
		if len(args) == 2 && args[0] == "-R" {
			return nil
		}

	case "flatpak", "brew":
		if len(args) == 2 && args[0] == "uninstall" {
			return nil
		}

	case "winget":
		if len(args) == 3 && args[0] == "uninstall" && args[1] == "--id" {
			return nil
		}

	default:
		return Denied(fmt.Sprintf("command %q is not allowlisted", command))
	}

	return Denied(fmt.Sprintf("invalid args for %s", command))
}

// equalArgs reports whether args is exactly the given literal sequence.
func equalArgs(args []string, want ...string) bool {
	if len(args) != len(want) {
		return false
	}
	for i := range args {
		if args[i] != want[i] {
			return false
		}
	}
	return true
}

// ValidateCommandParams extracts and type-checks command/args from a raw
// ToolCall payload before delegating to ValidateCommand. Missing fields or
// a wrong JSON shape for either is an Invalid request, not a Denied one —
// the argv-shape table never runs against malformed input.
func ValidateCommandParams(p Params) error {
	command, ok := p.String("command")
	if !ok {
		return Invalid("missing or non-string \"command\" parameter")
	}
	args, ok := p.StringSlice("args")
	if !ok {
		return Invalid("missing or non-array-of-strings \"args\" parameter")
	}
	return ValidateCommand(command, args)
}
