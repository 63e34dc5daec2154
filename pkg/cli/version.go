package cli

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/fautty/fautty/pkg/cli/internal/output"
	"github.com/spf13/cobra"
)

// VersionOutput represents JSON output format
type VersionOutput struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
	Go      string `json:"go"`
	OS      string `json:"os"`
	Arch    string `json:"arch"`
}

func newVersionCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show fautty version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v := buildVersion()
			if opts.jsonOutput {
				return output.JSON(cmd.OutOrStdout(), v)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "fautty %s (commit %s, built %s) %s %s/%s\n",
				v.Version, v.Commit, v.Date, v.Go, v.OS, v.Arch)
			return nil
		},
	}
}

func buildVersion() VersionOutput {
	v := VersionOutput{
		Version: Version,
		Commit:  Commit,
		Date:    BuildDate,
		Go:      runtime.Version(),
		OS:      runtime.GOOS,
		Arch:    runtime.GOARCH,
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		if v.Version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
			v.Version = info.Main.Version
		}
		for _, setting := range info.Settings {
			switch setting.Key {
			case "vcs.revision":
				if v.Commit == "none" {
					v.Commit = setting.Value
				}
			case "vcs.time":
				if v.Date == "unknown" {
					v.Date = setting.Value
				}
			}
		}
	}
	return v
}
