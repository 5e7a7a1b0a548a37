package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"clinic-booking-client/internal/account"
	"clinic-booking-client/internal/config"
	"clinic-booking-client/internal/gateway"
	"clinic-booking-client/internal/model"
	"clinic-booking-client/internal/router"
	"clinic-booking-client/internal/session"
)

// app is the wiring shared by every command.
type app struct {
	cfg      *config.Config
	log      zerolog.Logger
	sess     session.Store
	api      *gateway.Client
	accounts *account.Service
	in       *bufio.Reader
}

func main() {
	_ = godotenv.Load()
	if err := newRootCmd().Execute(); err != nil {
		printErr(err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	var envFile string

	root := &cobra.Command{
		Use:           "clinic",
		Short:         "Clinic appointment booking client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(envFile)
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to a .env file")

	root.AddCommand(
		loginCmd(a), registerCmd(a), logoutCmd(a), whoamiCmd(a),
		profileCmd(a), doctorsCmd(a), bookCmd(a), appointmentsCmd(a), cancelCmd(a),
		patientCmd(a), doctorCmd(a),
	)
	return root
}

func (a *app) init(envFile string) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = config.NewLogger(os.Stderr, cfg.Env, cfg.LogLevel)

	sess, err := session.OpenFile(cfg.SessionFile)
	if err != nil {
		return fmt.Errorf("session: %w", err)
	}
	a.sess = sess
	a.api = gateway.New(cfg.APIURL, sess,
		gateway.WithTimeout(cfg.RequestTimeout),
		gateway.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
		gateway.WithLogger(a.log),
	)
	a.accounts = account.New(a.api, sess, a.log)
	return nil
}

// errRedirect reports a guard decision as a command failure.
type errRedirect struct{ to string }

func (e *errRedirect) Error() string {
	if e.to == router.RouteHome {
		return "not logged in: run `clinic login`"
	}
	return fmt.Sprintf("this view is not available for your role: run `%s`", commandFor(e.to))
}

func commandFor(route string) string {
	switch route {
	case router.RouteDoctorDashboard:
		return "clinic doctor dashboard"
	case router.RoutePatientDashboard:
		return "clinic patient dashboard"
	}
	return "clinic login"
}

// guard wraps run so it only executes for users with the required role.
// The authorized user is placed on the command context.
func (a *app) guard(required model.Role, run func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		d := router.NewGuard(a.sess).Mount(required).Decision()
		if !d.Authorized() {
			return &errRedirect{to: d.Redirect}
		}
		cmd.SetContext(router.WithUser(cmd.Context(), d.User))
		return a.report(run(cmd, args))
	}
}

// loggedIn is guard for views open to either role.
func (a *app) loggedIn(run func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		d := router.NewGuard(a.sess).CheckAny()
		if !d.Authorized() {
			return &errRedirect{to: d.Redirect}
		}
		cmd.SetContext(router.WithUser(cmd.Context(), d.User))
		return a.report(run(cmd, args))
	}
}

// report clears a rejected session and logs transport detail.
func (a *app) report(err error) error {
	if err == nil {
		return nil
	}
	var te *gateway.TransportError
	if errors.As(err, &te) {
		a.log.Debug().Str("cause", te.Detail()).Msg("transport failure")
	}
	return a.accounts.HandleUnauthorized(err)
}

func printErr(err error) {
	fmt.Fprintln(os.Stderr, "error:", strings.TrimSpace(err.Error()))
}
