package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"clinic-booking-client/internal/account"
	"clinic-booking-client/internal/router"
)

// readSecret returns flagVal, or one line of input when the flag is unset.
func (a *app) readSecret(cmd *cobra.Command, prompt, flagVal string) (string, error) {
	if flagVal != "" {
		return flagVal, nil
	}
	if a.in == nil {
		a.in = bufio.NewReader(cmd.InOrStdin())
	}
	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	line, err := a.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func loginCmd(a *app) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and save the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := a.readSecret(cmd, "Password: ", password)
			if err != nil {
				return err
			}
			u, landing, err := a.accounts.Login(cmd.Context(), email, pw)
			if err != nil {
				return a.report(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Welcome, %s (%s)\nNext: %s\n", u.FullName, u.Role, commandFor(landing))
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (prompted when omitted)")
	return cmd
}

func registerCmd(a *app) *cobra.Command {
	var form account.RegisterForm
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a patient account",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if form.Password, err = a.readSecret(cmd, "Password: ", form.Password); err != nil {
				return err
			}
			if form.ConfirmPassword == "" {
				if form.ConfirmPassword, err = a.readSecret(cmd, "Confirm password: ", ""); err != nil {
					return err
				}
			}
			u, err := a.accounts.Register(cmd.Context(), form)
			if err != nil {
				return a.report(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered %s as %s. Run `clinic login -e %s` to continue.\n", u.FullName, u.Role, u.Email)
			return nil
		},
	}
	cmd.Flags().StringVarP(&form.FullName, "name", "n", "", "Full name")
	cmd.Flags().StringVarP(&form.Email, "email", "e", "", "Email")
	cmd.Flags().StringVarP(&form.Password, "password", "p", "", "Password (prompted when omitted)")
	cmd.Flags().StringVar(&form.ConfirmPassword, "confirm", "", "Password confirmation (prompted when omitted)")
	return cmd
}

func logoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.accounts.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}

func whoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user as the service sees it",
		RunE: a.loggedIn(func(cmd *cobra.Command, args []string) error {
			u, err := a.accounts.Refresh(cmd.Context())
			if err != nil {
				return err
			}
			w := table(cmd.OutOrStdout())
			fmt.Fprintf(w, "ID\t%d\n", u.ID)
			fmt.Fprintf(w, "Name\t%s\n", u.FullName)
			fmt.Fprintf(w, "Email\t%s\n", u.Email)
			fmt.Fprintf(w, "Role\t%s\n", u.Role)
			if u.Department != "" {
				fmt.Fprintf(w, "Department\t%s\n", u.Department)
			}
			fmt.Fprintf(w, "Home\t%s\n", router.DashboardFor(u.Role))
			return w.Flush()
		}),
	}
}
