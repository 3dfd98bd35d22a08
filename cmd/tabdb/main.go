// Command tabdb creates, queries, merges and backs up tab-delimited
// table files.
//
// Configuration comes from flags, environment variables and an
// optional .env file (environment wins).
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/kjk/tabdb/log"
	"github.com/kjk/tabdb/logtastic"
	"github.com/kjk/tabdb/u"
	"github.com/spf13/cobra"
)

type app struct {
	verbose bool
	logDir  string
	envPath string

	env       map[string]string
	logtastic *logtastic.Client
}

func (a *app) getenv(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return a.env[key]
}

func (a *app) start(ctx context.Context) error {
	env, err := u.ReadEnvFile(a.envPath)
	if err != nil {
		return err
	}
	a.env = env
	log.Verbose = a.verbose
	config := &log.Config{
		Dir: a.logDir,
	}
	if server := a.getenv("LOGTASTIC_SERVER"); server != "" {
		a.logtastic, err = logtastic.New(ctx, &logtastic.Config{
			Server: server,
			ApiKey: a.getenv("LOGTASTIC_API_KEY"),
		})
		if err != nil {
			return err
		}
		config.OnLog = a.logtastic.Log
		config.OnError = a.logtastic.LogError
		config.OnEvent = a.logtastic.LogEvent
	}
	log.Init(config)
	return nil
}

func (a *app) stop() {
	log.Close()
	if a.logtastic != nil {
		a.logtastic.Stop()
		a.logtastic = nil
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "tabdb",
		Short:         "Tab-delimited table files with a structural index",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.start(cmd.Context())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.stop()
		},
	}
	root.PersistentFlags().BoolVar(&a.verbose, "verbose", false, "verbose logging")
	root.PersistentFlags().StringVar(&a.logDir, "log-dir", "", "directory for daily log files (default: stdout only)")
	root.PersistentFlags().StringVar(&a.envPath, "env", ".env", "path of .env file with credentials")

	root.AddCommand(
		newCreateCmd(),
		newIndexCmd(),
		newHeaderCmd(),
		newCountCmd(),
		newAddCmd(),
		newQueryCmd(),
		newMergeCmd(),
		newJoinCmd(),
		newCellCmd(),
		newBackupCmd(a),
		newRestoreCmd(a),
		newRemoteCmd(a),
	)
	return root
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	a := &app{}
	root := newRootCmd(a)
	if err := root.ExecuteContext(ctx); err != nil {
		// post-run hooks don't run when a command fails
		log.Errorf("%s\n", err)
		a.stop()
		cancel()
		os.Exit(1)
	}
}
