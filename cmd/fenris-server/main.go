// Command fenris-server runs a Fenris remote-filesystem server,
// generalized from mars9-ramfs's cmd/ramfs (a flag-based single-command
// entry point) onto cobra/pflag, matching the CLI library moby-moby and
// rclone-rclone both build their command trees on.
package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/fenrisfs/fenris"
)

func main() {
	var (
		configPath string
		listenAddr string
		rootDir    string
		verbose    bool
	)

	root := &cobra.Command{
		Use:   "fenris-server",
		Short: "Run a Fenris remote-filesystem server",
		Long: `fenris-server exposes a rooted directory tree over an encrypted,
framed TCP protocol. Clients perform a one-round ECDH handshake and
then issue file and directory operations against the server's root.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := fenris.LoadConfig(configPath)
			if err != nil {
				return err
			}
			if listenAddr != "" {
				cfg.ListenAddr = listenAddr
			}
			if rootDir != "" {
				cfg.RootDir = rootDir
			}

			level := logrus.InfoLevel
			if verbose {
				level = logrus.DebugLevel
			}
			log := fenris.NewLogger(level)

			srv, err := fenris.NewServer(cfg, log)
			if err != nil {
				return err
			}

			log.WithField("root", cfg.RootDir).Info("starting fenris server")
			return srv.Serve()
		},
	}

	var flags *pflag.FlagSet = root.Flags()
	flags.StringVar(&configPath, "config", "", "path to a TOML configuration file")
	flags.StringVar(&listenAddr, "addr", "", "listen address (overrides config)")
	flags.StringVar(&rootDir, "root", "", "server root directory (overrides config)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
