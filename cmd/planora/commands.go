package main

import (
	"fmt"
	"os"

	"github.com/jrsteele09/planora-client/internal/app"
	"github.com/jrsteele09/planora-client/internal/config"
	clienterrors "github.com/jrsteele09/planora-client/internal/errors"
	"github.com/jrsteele09/planora-client/internal/utils"
	"github.com/jrsteele09/planora-client/internal/views/terminal"
	"github.com/jrsteele09/planora-client/navigation"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

type cli struct {
	configFile string
	app        *app.App
	prompter   *terminal.Prompter
}

// newRootCommand returns the command tree and a func releasing whatever the
// executed command opened.
func newRootCommand() (*cobra.Command, func()) {
	c := &cli{}
	root := &cobra.Command{
		Use:           "planora",
		Short:         "Planora account and dashboard client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd)
		},
	}
	root.PersistentFlags().StringVar(&c.configFile, "config", "", "config file (default ./planora.yaml or $HOME/.planora/planora.yaml)")

	var remember bool
	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and open the dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var preset *bool
			if cmd.Flags().Changed("remember") {
				preset = utils.Ptr(remember)
			}
			return c.interactive(cmd, navigation.RouteLogin, preset)
		},
	}
	loginCmd.Flags().BoolVar(&remember, "remember", false, "keep the session after this process exits")

	root.AddCommand(
		&cobra.Command{
			Use:   "start",
			Short: "Start at the landing screen, or the dashboard when a session exists",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				route := navigation.RouteLanding
				if _, err := c.app.Sessions.Load(cmd.Context()); err == nil {
					route = navigation.RouteDashboard
				}
				return c.interactive(cmd, route, nil)
			},
		},
		&cobra.Command{
			Use:   "register",
			Short: "Create an account",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return c.interactive(cmd, navigation.RouteRegister, nil)
			},
		},
		loginCmd,
		&cobra.Command{
			Use:   "forgot-password",
			Short: "Reset a forgotten password",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return c.interactive(cmd, navigation.RouteForgotPassword, nil)
			},
		},
		&cobra.Command{
			Use:   "logout",
			Short: "Remove the stored session",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return c.report(c.app.Login.Logout(cmd.Context()))
			},
		},
		&cobra.Command{
			Use:   "whoami",
			Short: "Show the logged in user",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				sess, err := c.app.Sessions.Load(cmd.Context())
				if errors.Is(err, clienterrors.ErrNoSession) {
					c.prompter.Warn("Not logged in.")
					return err
				}
				if err != nil {
					return err
				}
				terminal.PrintSession(c.prompter, sess)
				if c.app.Sessions.Expired(sess) {
					c.prompter.Warn("The access token has expired. Please log in again.")
				}
				return c.fail(terminal.PrintProfile(cmd.Context(), c.prompter, c.app.Dashboard))
			},
		},
		&cobra.Command{
			Use:   "tasks",
			Short: "List tasks",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return c.fail(terminal.PrintTasks(cmd.Context(), c.prompter, c.app.Dashboard))
			},
		},
		&cobra.Command{
			Use:   "events",
			Short: "List scheduled events",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return c.fail(terminal.PrintEvents(cmd.Context(), c.prompter, c.app.Dashboard))
			},
		},
		&cobra.Command{
			Use:   "roadmap <goal>",
			Short: "Create a roadmap for a goal",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.fail(terminal.CreateRoadmap(cmd.Context(), c.prompter, c.app.Dashboard, args[0]))
			},
		},
	)
	return root, c.close
}

func (c *cli) close() {
	if c.app != nil {
		_ = c.app.Close()
	}
}

func (c *cli) setup(cmd *cobra.Command) error {
	cfg, err := config.New(c.configFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	logger := newLogger(cfg.IsDev(), cfg.GetLogLevel())

	c.app, err = app.New(cmd.Context(), cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("failed to start")
		return err
	}
	c.prompter = terminal.NewPrompter(os.Stdin, cmd.OutOrStdout())
	return nil
}

func (c *cli) interactive(cmd *cobra.Command, start navigation.Route, remember *bool) error {
	displayAppname(c.app.Config.GetAppName())

	a := c.app
	screens := terminal.Screens(terminal.Deps{
		Registration: a.Registration,
		Login:        a.Login,
		Recovery:     a.Recovery,
		Dashboard:    a.Dashboard,
		RememberMe:   remember,
	})
	router, err := terminal.NewRouter(c.prompter, a.Table, a.Scheduler, screens, terminal.WithLogger(a.Logger))
	if err != nil {
		return err
	}
	if err := router.Run(cmd.Context(), start, navigation.Carry{}); err != nil && !errors.Is(err, cmd.Context().Err()) {
		a.Logger.Error().Err(err).Msg("session ended")
		return err
	}
	return nil
}

func (c *cli) report(o navigation.Outcome) error {
	if o.Failed() {
		c.prompter.Failure(o.Message)
		return o.Err
	}
	c.prompter.Success(o.Message)
	return nil
}

func (c *cli) fail(err error) error {
	if err != nil {
		c.prompter.Failure(err.Error())
	}
	return err
}
