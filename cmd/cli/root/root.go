package root

import (
	"fmt"
	"os"

	"github.com/jobwatch/jobwatch/cmd/cli/apps"
	"github.com/jobwatch/jobwatch/cmd/cli/attach"
	"github.com/jobwatch/jobwatch/cmd/cli/events"
	"github.com/jobwatch/jobwatch/cmd/cli/token"
	"github.com/spf13/cobra"
)

// Exported RootCmd
var RootCmd = &cobra.Command{
	Use:   "jobwatch",
	Short: "Job application watcher CLI",
	Long:  "Command line interface for interacting with the jobwatch API",
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// GetRoot returns the root command with all subcommands registered.
func GetRoot() *cobra.Command {
	apps.InitApps(RootCmd)
	attach.InitAttach(RootCmd)
	events.InitEvents(RootCmd)
	token.InitToken(RootCmd)
	return RootCmd
}
