package cli

import (
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"
)

const (
	versionCommandUseConstant              = "version"
	versionCommandShortDescriptionConstant = "Print the reposync build version"
	versionOutputTemplateConstant          = "reposync version %s\n"
	versionTemplateConstant                = "reposync version {{.Version}}\n"
	develVersionConstant                   = "(devel)"
	unknownVersionConstant                 = "dev"
)

// Version is overridden at link time with -ldflags "-X github.com/temirov/reposync/cmd/cli.Version=v1.2.3".
var Version string

// VersionResolver returns the version string reported by the CLI.
type VersionResolver func() string

func resolveBuildVersion() string {
	if trimmed := strings.TrimSpace(Version); len(trimmed) > 0 {
		return trimmed
	}
	buildInformation, available := debug.ReadBuildInfo()
	if !available {
		return unknownVersionConstant
	}
	moduleVersion := strings.TrimSpace(buildInformation.Main.Version)
	if len(moduleVersion) == 0 || moduleVersion == develVersionConstant {
		return unknownVersionConstant
	}
	return moduleVersion
}

func newVersionCommand(resolver VersionResolver) *cobra.Command {
	return &cobra.Command{
		Use:   versionCommandUseConstant,
		Short: versionCommandShortDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			_, writeError := fmt.Fprintf(command.OutOrStdout(), versionOutputTemplateConstant, resolver())
			return writeError
		},
	}
}
