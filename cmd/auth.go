package cmd

import (
	"errors"
	"time"

	"github.com/eka-dev/ftracker/auth"
	"github.com/eka-dev/ftracker/pkg/clierr"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func loginCmd(a *app) *cobra.Command {
	var email, googleIDToken string
	var google bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to your ftracker account",
		Long: "Log in with your email and password, or with a Google ID token issued for the ftracker web client. " +
			"The session is stored locally and renewed automatically.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if google || googleIDToken != "" {
				return a.loginWithGoogle(cmd, email, googleIDToken)
			}

			var err error
			if email == "" {
				if email, err = a.promptForInput(cmd, "Email: "); err != nil {
					return validationError(err)
				}
			}
			password, err := a.promptForPassword(cmd, "Password: ")
			if err != nil {
				return validationError(err)
			}

			if err := a.session.Login(cmd.Context(), email, password); err != nil {
				return credentialError(err)
			}
			a.dropCache(cmd)
			cmd.Println("Login was successful.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email (prompted when omitted)")
	cmd.Flags().BoolVarP(&google, "google", "g", false, "Log in with a Google ID token (prompted)")
	cmd.Flags().StringVar(&googleIDToken, "google-id-token", "", "Google ID token to log in with")
	return cmd
}

func (a *app) loginWithGoogle(cmd *cobra.Command, email, idToken string) error {
	if email != "" {
		return clierr.New(clierr.Validation, "--email cannot be combined with Google login.", nil)
	}
	if idToken == "" {
		var err error
		if idToken, err = a.promptForPassword(cmd, "Google ID token: "); err != nil {
			return validationError(err)
		}
	}

	if err := a.session.LoginWithGoogle(cmd.Context(), idToken); err != nil {
		return credentialError(err)
	}
	a.dropCache(cmd)
	cmd.Println("Login with Google was successful.")
	return nil
}

func registerCmd(a *app) *cobra.Command {
	var name, email string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a new ftracker account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if name == "" {
				if name, err = a.promptForInput(cmd, "Name: "); err != nil {
					return validationError(err)
				}
			}
			if email == "" {
				if email, err = a.promptForInput(cmd, "Email: "); err != nil {
					return validationError(err)
				}
			}
			password, err := a.promptForPassword(cmd, "Password: ")
			if err != nil {
				return validationError(err)
			}
			confirm, err := a.promptForPassword(cmd, "Confirm password: ")
			if err != nil {
				return validationError(err)
			}
			if password != confirm {
				return clierr.New(clierr.Validation, "Passwords do not match.", nil)
			}

			if err := a.session.Register(cmd.Context(), name, email, password); err != nil {
				return credentialError(err)
			}
			a.dropCache(cmd)
			cmd.Println("Registration was successful. You are now logged in.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Display name (prompted when omitted)")
	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email (prompted when omitted)")
	return cmd
}

func logoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			message, err := a.session.Logout(cmd.Context())
			a.dropCache(cmd)
			if err != nil {
				if errors.Is(err, auth.ErrNoSession) {
					cmd.Println("You are not logged in.")
					return nil
				}
				st, statusErr := a.session.Status(cmd.Context())
				if statusErr != nil || st.LoggedIn {
					return userError(err)
				}
				log.Warn().Err(err).Msg("Backend logout failed")
				cmd.PrintErrln("Warning: the server did not confirm the logout; the local session was removed.")
				return nil
			}
			if message == "" {
				message = "Logged out."
			}
			cmd.Println(message)
			return nil
		},
	}
}

func statusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether you are logged in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.session.Status(cmd.Context())
			if err != nil {
				return userError(err)
			}
			if !st.LoggedIn {
				cmd.Println("Not logged in.")
				return nil
			}

			cmd.Println("Logged in.")
			cmd.Println("API:", a.cfg.API.BaseURL)
			if !st.HasExpiry {
				return nil
			}
			now := a.now()
			expiresAt := st.ExpiresAt.In(a.location()).Format(time.RFC1123)
			if st.Expired(now) {
				cmd.Printf("Access token expired at %s; it will be renewed on the next request.\n", expiresAt)
			} else {
				cmd.Printf("Access token expires at %s (in %s).\n", expiresAt, st.ExpiresAt.Sub(now).Round(time.Second))
			}
			return nil
		},
	}
}

// dropCache removes cached transactions, which belong to the previous session.
func (a *app) dropCache(cmd *cobra.Command) {
	if a.cache == nil {
		return
	}
	if err := a.cache.Clear(cmd.Context()); err != nil {
		log.Warn().Err(err).Msg("Failed to clear the transaction cache")
	}
}
