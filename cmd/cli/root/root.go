package root

import (
	"github.com/crucial707/automation-schedules/cmd/cli/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// CLI bundles the root command with the config and logger its subcommands share.
type CLI struct {
	Cmd   *cobra.Command
	Viper *viper.Viper
	Log   *logrus.Logger
}

// New builds a fresh root command. Subcommands are registered by their packages.
func New() *CLI {
	cli := &CLI{
		Viper: config.New(),
		Log:   logrus.New(),
	}

	var configPath string
	var verbose bool

	cli.Cmd = &cobra.Command{
		Use:   "automation",
		Short: "Automation account schedule CLI",
		Long:  "Command line interface for listing and filling recurring schedules on an automation account",
		// Errors are printed once by main.
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.ReadFile(cli.Viper, configPath); err != nil {
				return err
			}
			cli.setupLogging(cmd, verbose)
			return nil
		},
	}

	flags := cli.Cmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "Config file (default ./automation.yaml)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Verbose diagnostic logging")
	flags.String("api-url", "", "Automation API base URL")
	flags.String("token", "", "Bearer token for the automation API")
	flags.String("log-format", "", "Log format: text or json")

	_ = config.BindFlags(cli.Viper, flags, map[string]string{
		"api_url":    "api-url",
		"token":      "token",
		"log_format": "log-format",
	})

	return cli
}

func (cli *CLI) setupLogging(cmd *cobra.Command, verbose bool) {
	cli.Log.SetOutput(cmd.ErrOrStderr())
	if cli.Viper.GetString("log_format") == "json" {
		cli.Log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		cli.Log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	}
	if verbose {
		cli.Log.SetLevel(logrus.DebugLevel)
	} else {
		cli.Log.SetLevel(logrus.InfoLevel)
	}
}
