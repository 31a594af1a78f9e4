package version

// Version is logged at startup. Release builds override it with
// -ldflags "-X github.com/shishobooks/catalog/pkg/version.Version=v1.2.3".
var Version = "dev"
