package kernel

// ToolPolicy is the per-scope decision table: which tools a scope may call
// at all, and which of those additionally require a registered
// confirmation before they run.
type ToolPolicy struct {
	AllowedTools         map[string]bool
	RequiresConfirmation map[string]bool
}

func newPolicy(allowed, confirm []string) ToolPolicy {
	p := ToolPolicy{
		AllowedTools:         make(map[string]bool, len(allowed)),
		RequiresConfirmation: make(map[string]bool, len(confirm)),
	}
	for _, t := range allowed {
		p.AllowedTools[t] = true
	}
	for _, t := range confirm {
		p.RequiresConfirmation[t] = true
	}
	return p
}

// localAIAllowed is the full capability set granted to the on-device
// model: file I/O, window-layout manipulation, download control, command
// execution, process control, and application launch.
var localAIAllowed = []string{
	"read_file", "write_file", "delete_file", "move_file", "rename_file",
	"copy_file", "create_directory", "list_directory",
	"open_tile", "close_tile", "reorganize_layout",
	"download_archive_org", "download_youtube", "list_downloads",
	"pause_download", "resume_download", "cancel_download",
	"run_command", "kill_process",
	"launch_app",
}

var localAIConfirm = []string{
	"delete_file", "move_file", "rename_file", "kill_process",
	"run_command", "launch_app",
}

// cloudAIAllowed is the strict, read-mostly subset granted to the remote
// cloud model, which is treated as less trusted because its prompts may
// be attacker-controlled.
var cloudAIAllowed = []string{
	"read_file", "list_directory",
	"open_tile", "close_tile", "reorganize_layout",
}

// policyTable is the fixed, build-time scope→policy table. It is the sole
// authority for the scope dimension and is never mutated after init.
var policyTable = map[ToolScope]ToolPolicy{
	ScopeLocalAI:    newPolicy(localAIAllowed, localAIConfirm),
	ScopeCloudAI:    newPolicy(cloudAIAllowed, nil),
	ScopeUserDirect: newPolicy(nil, nil),
}

// PolicyFor returns the ToolPolicy for scope. Pure and total over the
// closed scope set; unknown scopes (which cannot occur given the closed
// ToolScope type) resolve to the empty, deny-everything policy.
func PolicyFor(scope ToolScope) ToolPolicy {
	if p, ok := policyTable[scope]; ok {
		return p
	}
	return newPolicy(nil, nil)
}
