package root

import (
	"github.com/spf13/cobra"

	"github.com/campushq/labops/cmd/cli/audit"
	"github.com/campushq/labops/cmd/cli/auth"
	"github.com/campushq/labops/cmd/cli/campuses"
	"github.com/campushq/labops/cmd/cli/incidents"
)

// RootCmd is the labops CLI entry point.
var RootCmd = &cobra.Command{
	Use:   "labops",
	Short: "Campus lab operations CLI",
	Long:  "Command line interface for the campus lab operations API",
}

func init() {
	auth.Init(RootCmd)
	campuses.Init(RootCmd)
	incidents.Init(RootCmd)
	audit.Init(RootCmd)
}
