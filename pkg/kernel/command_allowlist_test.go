package kernel

import "testing"

func TestValidateCommand_KnownShapes(t *testing.T) {
	cases := []struct {
		command string
		args    []string
	}{
		{"xdg-open", []string{"https://example.com"}},
		{"open", []string{"/tmp/file.txt"}},
		{"start", []string{"C:\\file.txt"}},
		{"uname", []string{"-a"}},
		{"df", []string{"-h"}},
		{"free", []string{"-h"}},
		{"ps", []string{"aux"}},
		{"kill", []string{"-TERM", "1234"}},
		{"git", []string{"clone", "https://example.com/r.git", "/tmp/r"}},
		{"curl", []string{"-L", "https://x", "-o", "/home/u/f"}},
		{"tar", []string{"-xzf", "/tmp/a.tgz", "-C", "/tmp/out"}},
		{"apt", []string{"remove", "pkg"}},
		{"dnf", []string{"remove", "pkg"}},
		{"snap", []string{"remove", "pkg"}},
		{"pacman", []string{"-R", "pkg"}},
		{"flatpak", []string{"uninstall", "org.pkg"}},
		{"brew", []string{"uninstall", "pkg"}},
		{"winget", []string{"uninstall", "--id", "Vendor.App"}},
	}
	for _, tc := range cases {
		if err := ValidateCommand(tc.command, tc.args); err != nil {
			t.Errorf("ValidateCommand(%q, %v) = %v, want nil", tc.command, tc.args, err)
		}
	}
}

func TestValidateCommand_RejectsUnknownCommand(t *testing.T) {
	err := ValidateCommand("rm", []string{"-rf", "/"})
	if !IsDenied(err) {
		t.Fatalf("want Denied, got %v", err)
	}
}

func TestValidateCommand_RejectsMismatchedArgvShape(t *testing.T) {
	// Missing -o flag for curl.
	err := ValidateCommand("curl", []string{"-L", "https://x", "/home/u/f"})
	if !IsDenied(err) {
		t.Fatalf("want Denied, got %v", err)
	}
}

func TestValidateCommand_WrongLiteralPosition(t *testing.T) {
	err := ValidateCommand("tar", []string{"-xzf", "/tmp/a.tgz", "-z", "/tmp/out"})
	if !IsDenied(err) {
		t.Fatalf("want Denied, got %v", err)
	}
}

func TestValidateCommand_NeverPanicsOrInvalid(t *testing.T) {
	// Exercise a wide variety of shapes; the function must always return
	// either nil or a Denied ToolError — never Invalid, never panic.
	inputs := [][]string{
		nil, {}, {""}, {"a", "b", "c", "d", "e"},
	}
	commands := []string{"", "curl", "kill", "git", "unknown-thing", "winget"}
	for _, cmd := range commands {
		for _, args := range inputs {
			err := ValidateCommand(cmd, args)
			if err != nil && !IsDenied(err) {
				t.Fatalf("ValidateCommand(%q, %v) returned non-Denied error: %v", cmd, args, err)
			}
		}
	}
}

func TestValidateCommandParams_MissingCommand(t *testing.T) {
	err := ValidateCommandParams(Params{"args": []string{"-a"}})
	if !IsInvalid(err) {
		t.Fatalf("want Invalid, got %v", err)
	}
}

func TestValidateCommandParams_MissingArgs(t *testing.T) {
	err := ValidateCommandParams(Params{"command": "uname"})
	if !IsInvalid(err) {
		t.Fatalf("want Invalid, got %v", err)
	}
}

func TestValidateCommandParams_WrongType(t *testing.T) {
	err := ValidateCommandParams(Params{"command": 5, "args": []string{"-a"}})
	if !IsInvalid(err) {
		t.Fatalf("want Invalid, got %v", err)
	}
}

func TestValidateCommandParams_OkFromJSONShapedArgs(t *testing.T) {
	// Params decoded from JSON carry []any, not []string.
	p := Params{
		"command": "curl",
		"args":    []any{"-L", "https://x", "-o", "/home/u/f"},
	}
	if err := ValidateCommandParams(p); err != nil {
		t.Fatalf("want nil, got %v", err)
	}
}
