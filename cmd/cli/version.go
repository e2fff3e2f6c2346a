package cli

import (
	"runtime/debug"
	"strings"
)

const (
	developmentVersionConstant  = "dev"
	buildInfoDevelopmentVersion = "(devel)"
	versionTemplateConstant     = "{{.Name}} version: {{.Version}}\n"
)

// Version is injected at build time with -ldflags "-X github.com/temirov/localignore/cmd/cli.Version=<version>".
var Version string

// VersionResolver yields the version reported by --version.
type VersionResolver func() string

// ResolveVersion prefers the linker-injected version, then the module version recorded in the build info.
func ResolveVersion() string {
	if trimmedVersion := strings.TrimSpace(Version); len(trimmedVersion) > 0 {
		return trimmedVersion
	}

	buildInfo, buildInfoAvailable := debug.ReadBuildInfo()
	if !buildInfoAvailable {
		return developmentVersionConstant
	}

	moduleVersion := strings.TrimSpace(buildInfo.Main.Version)
	if len(moduleVersion) == 0 || moduleVersion == buildInfoDevelopmentVersion {
		return developmentVersionConstant
	}
	return moduleVersion
}
