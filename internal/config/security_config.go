package config

type SecurityLevel int

const (
	SecurityPublic        SecurityLevel = iota // No session needed
	SecuritySession                            // Logged-in profile required
	SecurityPlatformAdmin                      // Logged-in platform admin required
)

// RouteSecurityConfig maps named routes to their required security level.
// Routes that are not listed default to SecuritySession.
var RouteSecurityConfig = map[string]SecurityLevel{
	// Auth - Public
	"auth.register": SecurityPublic,
	"auth.login":    SecurityPublic,
	"auth.logout":   SecurityPublic,

	// Loaders - Public
	"health":            SecurityPublic,
	"files":             SecurityPublic,
	"areas":             SecurityPublic,
	"profile.view":      SecurityPublic,
	"organization.list": SecurityPublic,
	"organization.view": SecurityPublic,
	"event.list":        SecurityPublic,
	"event.view":        SecurityPublic,
	"event.document":    SecurityPublic,
	"project.list":      SecurityPublic,
	"project.view":      SecurityPublic,

	// Platform administration
	"admin.reports.list":  SecurityPlatformAdmin,
	"admin.reports.close": SecurityPlatformAdmin,
}

// GetSecurityLevel returns the level for a route name
func GetSecurityLevel(routeName string) SecurityLevel {
	if level, ok := RouteSecurityConfig[routeName]; ok {
		return level
	}
	return SecuritySession
}
