package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check if the staffhub server is ready",
		Long:  "Query the readiness probe of the configured server and report its store check.",
		RunE: func(cmd *cobra.Command, args []string) error {
			port := viper.GetInt("server.port")
			if port == 0 {
				port = 8080
			}
			host := viper.GetString("server.host")
			if host == "" || host == "0.0.0.0" {
				host = "127.0.0.1"
			}

			readyAddr := fmt.Sprintf("http://%s:%d/readyz", host, port)
			client := &http.Client{Timeout: 2 * time.Second}
			resp, err := client.Get(readyAddr)
			if err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Server is not responding at %s.\n", readyAddr)
				return nil
			}
			defer resp.Body.Close()

			var body struct {
				Status string            `json:"status"`
				Checks map[string]string `json:"checks"`
			}
			json.NewDecoder(resp.Body).Decode(&body)

			fmt.Fprintf(cmd.OutOrStdout(), "Server is %s (%d)\n", body.Status, resp.StatusCode)
			for name, check := range body.Checks {
				fmt.Fprintf(cmd.OutOrStdout(), "  %-8s %s\n", name+":", check)
			}
			return nil
		},
	}
}
