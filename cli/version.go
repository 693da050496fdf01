package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dbis-ilm/streamvizzard-provinspector/version"
)

// versionCmd prints the build information embedded in the binary.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "print build information",
	RunE: func(cmd *cobra.Command, args []string) error {
		info, err := json.MarshalIndent(version.GetBuildInfo(), "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(info))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(versionCmd)
}
