package token

import (
	"fmt"

	"github.com/jobwatch/jobwatch/cmd/cli/config"
	"github.com/spf13/cobra"
)

//
// ==========================
// Init Token
// ==========================
//

func InitToken(rootCmd *cobra.Command) {

	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Manage the stored API token",
	}

	tokenCmd.AddCommand(setTokenCmd())

	rootCmd.AddCommand(tokenCmd)
}

//
// ==========================
// SET
// ==========================
//

func setTokenCmd() *cobra.Command {

	return &cobra.Command{
		Use:   "set <token>",
		Short: "Store a bearer token for later calls",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {

			if err := config.SaveToken(args[0]); err != nil {
				return err
			}

			fmt.Println("Token saved")
			return nil
		},
	}
}
