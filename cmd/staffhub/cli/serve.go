package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/staffhub/staffhub/internal/server"
)

const banner = `
     _        __  __ _           _
 ___| |_ __ _/ _|/ _| |__  _   _| |__
/ __| __/ _' | |_| |_| '_ \| | | | '_ \
\__ \ || (_| |  _|  _| | | | |_| | |_) |
|___/\__\__,_|_| |_| |_| |_|\__,_|_.__/
`

func newServeCmd() *cobra.Command {
	var dev bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the staffhub API server",
		Long:  "Start the HTTP server that exposes the authentication and HR APIs.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), dev)
		},
	}

	cmd.Flags().IntP("port", "p", 8080, "HTTP listen port")
	cmd.Flags().String("host", "0.0.0.0", "HTTP listen host")
	cmd.Flags().BoolVar(&dev, "dev", false, "Enable development mode (debug logging, mail outbox, insecure cookies)")

	viper.BindPFlag("server.port", cmd.Flags().Lookup("port"))
	viper.BindPFlag("server.host", cmd.Flags().Lookup("host"))

	return cmd
}

func runServe(ctx context.Context, dev bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if dev {
		viper.SetDefault("mail.driver", "outbox")
		viper.SetDefault("auth.cookie_secure", false)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fmt.Print(banner)
	fmt.Println()

	logger := newLogger(cfg.Log, dev)

	st, err := openStore(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}

	svc, err := newServices(cfg, st, logger)
	if err != nil {
		st.Close()
		return err
	}

	srv := server.New(server.ConfigFrom(cfg, versionString()), svc, logger)

	host := cfg.Server.Host
	fmt.Printf("→ staffhub %s\n", versionString())
	fmt.Printf("→ Listening on http://%s:%d\n", host, cfg.Server.Port)
	fmt.Printf("→ API:        http://%s:%d/api/v1\n", host, cfg.Server.Port)
	fmt.Printf("→ OpenAPI:    http://%s:%d/openapi.json\n", host, cfg.Server.Port)
	fmt.Printf("→ Health:     http://%s:%d/healthz\n", host, cfg.Server.Port)
	fmt.Printf("→ Store:      %s\n", cfg.Database.Driver)
	fmt.Println()

	// ListenAndServe closes the store on shutdown.
	return srv.ListenAndServe()
}
