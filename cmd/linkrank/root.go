package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app carries the state shared by every subcommand.
type app struct {
	v      *viper.Viper
	logger *logrus.Entry
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:           appName,
		Short:         "Internal link graph and page authority scoring",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Path to a config file (yaml, json or toml)")
	flags.String(
		"link-graph-uri", "in-memory://",
		"URI for connecting to a link-graph data store."+
			" [supported URI's: in-memory://, sqlite:///path/to/linkgraph.db,"+
			" postgresql://user@host:26257/linkgraph?sslmode=disable]",
	)
	flags.String("redis-addr", "", "Redis address used for site locks shared between processes")
	flags.Duration("lock-ttl", defaultLockTTL, "Lifetime of a redis site lock")
	flags.String("log-level", "info", "Log level [debug, info, warn, error]")

	rootCmd.AddCommand(
		a.newExtractCmd(),
		a.newResolveCmd(),
		a.newRecomputeCmd(),
		a.newExportCmd(),
		a.newServeCmd(),
	)

	return rootCmd
}

// init binds the flags of cmd, loads the optional config file and sets up
// the root logger. Every setting can also be supplied through a LINKRANK_
// prefixed environment variable.
func (a *app) init(cmd *cobra.Command) error {
	if err := a.v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	a.v.SetEnvPrefix(appName)
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	if cfgFile := a.v.GetString("config"); cfgFile != "" {
		a.v.SetConfigFile(cfgFile)
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file: %w", err)
		}
	}

	level, err := logrus.ParseLevel(a.v.GetString("log-level"))
	if err != nil {
		return err
	}

	host, _ := os.Hostname()
	rootLogger := logrus.New()
	rootLogger.SetOutput(os.Stderr)
	rootLogger.SetLevel(level)
	a.logger = rootLogger.WithFields(logrus.Fields{
		"app":  appName,
		"SHA":  appSHA,
		"host": host,
	})

	return nil
}
