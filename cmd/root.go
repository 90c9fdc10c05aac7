package cmd

import (
	"errors"
	"io/fs"
	"log"
	"os"

	"github.com/InimaJin/MyShell/commands"
	"github.com/InimaJin/MyShell/core/config"
	"github.com/InimaJin/MyShell/core/logger"
	"github.com/InimaJin/MyShell/core/vos"
	"github.com/spf13/cobra"
)

var (
	cfgPath     string
	commandLine string

	// exitCode is the status the process exits with once cobra returns.
	exitCode int
)

func configDir() (string, error) {
	if cfgPath != "" {
		return cfgPath, nil
	}
	return config.DefaultDir()
}

func loadConfig() (*config.Configuration, error) {
	dir, err := configDir()
	if err != nil {
		return nil, err
	}

	configuration, err := config.Load(dir)
	if errors.Is(err, fs.ErrNotExist) {
		log.Println("Couldn't load config: did you run init?")
	}

	return configuration, err
}

// openEventLog gets the recorder for executed lines and a func to close it.
func openEventLog(cfg *config.Configuration) (*logger.Logger, func(), error) {
	if !cfg.EventLog {
		return logger.NewNopLogger(), func() {}, nil
	}

	fd, err := cfg.OpenAppLog()
	if err != nil {
		return nil, nil, err
	}
	return logger.NewJsonLinesLogRecorder(fd), func() { fd.Close() }, nil
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "myshell",
	Short: "A small interactive shell",
	Long: `An interactive shell with pipes, output redirection, ~ expansion and
nested ${...} subcommands.

Without -c it reads lines from the terminal until exit or end of input.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		diag := log.New(cmd.ErrOrStderr(), "[myshell] ", 0)

		dir, err := configDir()
		if err != nil {
			return err
		}
		configuration, err := config.Initialize(dir, diag)
		if err != nil {
			return err
		}

		eventLog, closeLog, err := openEventLog(configuration)
		if err != nil {
			return err
		}
		defer closeLog()

		var sessionLog *logger.SessionLogger
		if commandLine != "" {
			sessionLog = eventLog.Sessionless()
		} else {
			sessionLog = eventLog.NewSession()
		}

		shell, err := commands.NewShell(vos.NewHostOS(), configuration, sessionLog)
		if err != nil {
			return err
		}

		if commandLine != "" {
			shell.RunCommand(commandLine)
			exitCode = shell.ExitStatus()
			return nil
		}

		exitCode = shell.RunInteractive()
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
	os.Exit(exitCode)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config directory (default is $XDG_CONFIG_HOME/myshell)")
	rootCmd.Flags().StringVarP(&commandLine, "command", "c", "", "run a single line and exit with its status")
}
