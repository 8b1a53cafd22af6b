package version

// Build metadata, overridable via -ldflags at build time.
var (
	AppName    = "Tunekeeper"
	AppVersion = "dev"
)
