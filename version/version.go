package version

// Set at build time with -ldflags "-X .../version.Version=... -X .../version.Date=...".
var (
	Version = "dev"
	Date    = ""
)
