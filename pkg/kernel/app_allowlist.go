package kernel

// AllowlistedApp is one entry in the per-platform launchable application
// catalogue. AppID is the platform-native identifier (reverse-DNS, AUMID,
// or vendor.product).
type AllowlistedApp struct {
	AppID       string
	DisplayName string
	Platform    Platform
}

// baseApps is the minimal, OS-native set every role may launch: a file
// manager, a plain text editor, and a terminal. Deliberately excludes any
// third-party install.
var baseApps = map[Platform][]AllowlistedApp{
	PlatformLinux: {
		{AppID: "org.gnome.Nautilus", DisplayName: "Files", Platform: PlatformLinux},
		{AppID: "org.gnome.TextEditor", DisplayName: "Text Editor", Platform: PlatformLinux},
		{AppID: "org.gnome.Terminal", DisplayName: "Terminal", Platform: PlatformLinux},
	},
	PlatformMacOS: {
		{AppID: "com.apple.finder", DisplayName: "Finder", Platform: PlatformMacOS},
		{AppID: "com.apple.TextEdit", DisplayName: "TextEdit", Platform: PlatformMacOS},
		{AppID: "com.apple.Terminal", DisplayName: "Terminal", Platform: PlatformMacOS},
	},
	PlatformWindows: {
		{AppID: "Microsoft.Windows.Explorer", DisplayName: "File Explorer", Platform: PlatformWindows},
		{AppID: "Microsoft.WindowsNotepad_8wekyb3d8bbwe!App", DisplayName: "Notepad", Platform: PlatformWindows},
		{AppID: "Microsoft.WindowsTerminal_8wekyb3d8bbwe!App", DisplayName: "Windows Terminal", Platform: PlatformWindows},
	},
}

// adminApps is appended for Admin role only: the platform-appropriate
// Firefox identifier. Admin is the sole lever for broadening the base set.
var adminApps = map[Platform]AllowlistedApp{
	PlatformLinux:   {AppID: "org.mozilla.firefox", DisplayName: "Firefox", Platform: PlatformLinux},
	PlatformMacOS:   {AppID: "org.mozilla.firefox", DisplayName: "Firefox", Platform: PlatformMacOS},
	PlatformWindows: {AppID: "Mozilla.Firefox", DisplayName: "Firefox", Platform: PlatformWindows},
}

// AllowlistedApps returns the set of launchable apps for platform and
// role. Standard gets the base set; Admin gets the base set plus Firefox.
func AllowlistedApps(platform Platform, role UserRole) []AllowlistedApp {
	apps := append([]AllowlistedApp(nil), baseApps[platform]...)
	if role == RoleAdmin {
		if app, ok := adminApps[platform]; ok {
			apps = append(apps, app)
		}
	}
	return apps
}

// IsAppAllowed is a membership test on AllowlistedApps(platform, role).
func IsAppAllowed(appID string, role UserRole, platform Platform) bool {
	for _, app := range AllowlistedApps(platform, role) {
		if app.AppID == appID {
			return true
		}
	}
	return false
}
