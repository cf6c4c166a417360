package settings

// Role group names seeded at migration time.
const (
	// GroupAdmin is the administrator role name.
	GroupAdmin = "admin"
	// GroupUser is the default role assigned on registration.
	GroupUser = "usuario"
)

// DB config keys and defaults for settings.
const (
	// SiteNameKey is the DB config key for the UI site name.
	SiteNameKey = "SITE_NAME"
	// DefaultSiteName is the fallback UI site name.
	DefaultSiteName = "TopconBlog"
)
