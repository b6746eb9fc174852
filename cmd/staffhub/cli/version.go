package cli

import (
	"encoding/json"
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// storeDrivers lists the database.driver values openStore understands.
var storeDrivers = []string{"sqlite", "postgres", "mongodb"}

type versionInfo struct {
	Version   string   `json:"version"`
	Commit    string   `json:"commit"`
	Built     string   `json:"built"`
	GoVersion string   `json:"go_version"`
	Platform  string   `json:"platform"`
	APIBase   string   `json:"api_base"`
	Store     string   `json:"store"`
	Mail      string   `json:"mail"`
	Drivers   []string `json:"drivers"`
}

func newVersionCmd(version, commit, date string) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print build and backend information",
		Long: `Print the build of this binary together with the store and mail drivers
the current configuration selects.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := versionInfo{
				Version:   version,
				Commit:    commit,
				Built:     date,
				GoVersion: runtime.Version(),
				Platform:  runtime.GOOS + "/" + runtime.GOARCH,
				APIBase:   "/api/v1",
				Store:     viper.GetString("database.driver"),
				Mail:      viper.GetString("mail.driver"),
				Drivers:   storeDrivers,
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			}

			fmt.Fprintf(out, "staffhub %s (%s, built %s)\n", info.Version, info.Commit, info.Built)
			fmt.Fprintf(out, "  runtime: %s %s\n", info.GoVersion, info.Platform)
			fmt.Fprintf(out, "  api:     %s\n", info.APIBase)
			fmt.Fprintf(out, "  store:   %s (supported: %s)\n", info.Store, strings.Join(info.Drivers, ", "))
			fmt.Fprintf(out, "  mail:    %s\n", info.Mail)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output version info as JSON")

	return cmd
}
