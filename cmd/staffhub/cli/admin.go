package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/staffhub/staffhub/internal/apperr"
	"github.com/staffhub/staffhub/internal/service"
)

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage super-admin accounts",
		Long:  "Create and list super-admins directly against the configured store. At most two super-admins may exist.",
	}

	cmd.AddCommand(newAdminCreateCmd())
	cmd.AddCommand(newAdminListCmd())

	return cmd
}

// withAdmins opens the store, runs fn with an admin service, and closes the
// store again.
func withAdmins(ctx context.Context, fn func(*service.AdminService) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Log, false)
	st, err := openStore(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	defer st.Close()
	svc, err := newServices(cfg, st, logger)
	if err != nil {
		return err
	}
	return fn(svc.Admins)
}

// ---------- admin create ----------

func newAdminCreateCmd() *cobra.Command {
	var (
		email     string
		password  string
		firstName string
		lastName  string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a super-admin",
		Example: `  staffhub admin create --email ada@acme.test --first-name Ada --last-name Lovelace
  staffhub admin create --email ada@acme.test --first-name Ada --last-name Lovelace --password 'Str0ng!pass'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				pw, err := promptPassword(cmd.OutOrStdout())
				if err != nil {
					return err
				}
				password = pw
			}
			return withAdmins(cmd.Context(), func(admins *service.AdminService) error {
				admin, err := admins.Register(cmd.Context(), service.RegisterAdminInput{
					FirstName: firstName,
					LastName:  lastName,
					Email:     email,
					Password:  password,
				})
				if err != nil {
					return cliError(err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created super-admin %q (%s)\n", admin.Email, admin.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Admin email address (required)")
	cmd.Flags().StringVar(&password, "password", "", "Admin password (prompted if omitted)")
	cmd.Flags().StringVar(&firstName, "first-name", "", "First name (required)")
	cmd.Flags().StringVar(&lastName, "last-name", "", "Last name (required)")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("first-name")
	cmd.MarkFlagRequired("last-name")

	return cmd
}

// promptPassword reads and confirms a password without echo.
func promptPassword(out io.Writer) (string, error) {
	fmt.Fprint(out, "Password: ")
	pwBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	fmt.Fprintln(out)

	fmt.Fprint(out, "Confirm password: ")
	confirmBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return "", fmt.Errorf("failed to read confirmation: %w", err)
	}
	fmt.Fprintln(out)

	if string(pwBytes) != string(confirmBytes) {
		return "", fmt.Errorf("passwords do not match")
	}
	return string(pwBytes), nil
}

// cliError strips internal detail from service errors the same way the API
// does, keeping the cause for internal failures.
func cliError(err error) error {
	if apperr.Status(err) >= 500 {
		return err
	}
	return fmt.Errorf("%s", apperr.Message(err))
}

// ---------- admin list ----------

func newAdminListCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List all super-admins",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAdmins(cmd.Context(), func(admins *service.AdminService) error {
				list, err := admins.List(cmd.Context())
				if err != nil {
					return cliError(err)
				}
				out := cmd.OutOrStdout()

				if jsonOutput {
					enc := json.NewEncoder(out)
					enc.SetIndent("", "  ")
					return enc.Encode(list)
				}

				if len(list) == 0 {
					fmt.Fprintln(out, "No super-admins registered. Use 'staffhub admin create' to create one.")
					return nil
				}

				fmt.Fprintf(out, "%-26s %-30s %-24s %-8s %s\n", "ID", "EMAIL", "NAME", "VERIFIED", "COMPANY")
				fmt.Fprintf(out, "%-26s %-30s %-24s %-8s %s\n", "--", "-----", "----", "--------", "-------")
				for _, a := range list {
					verified := "no"
					if a.IsVerified {
						verified = "yes"
					}
					company := "-"
					if a.Organization != nil {
						company = *a.Organization
					}
					fmt.Fprintf(out, "%-26s %-30s %-24s %-8s %s\n", a.ID, a.Email, a.FirstName+" "+a.LastName, verified, company)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

