package main

import (
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hrygo/creastudio/client"
	"github.com/hrygo/creastudio/internal/profile"
	"github.com/hrygo/creastudio/internal/version"
	"github.com/hrygo/creastudio/metrics"
)

var (
	instanceProfile *profile.Profile
	exporter        *metrics.Exporter

	rootCmd = &cobra.Command{
		Use:           "crea",
		Short:         `Write social media posts with the generation backend, from the terminal.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Under systemd the environment comes from the unit file.
			if !isRunningAsSystemdService() {
				_ = godotenv.Load()
			}

			instanceProfile = &profile.Profile{
				Mode:              viper.GetString("mode"),
				Data:              viper.GetString("data"),
				BaseURL:           viper.GetString("api-url"),
				RequestTimeout:    viper.GetDuration("timeout"),
				RequestsPerSecond: viper.GetFloat64("rps"),
				SessionFile:       viper.GetString("session-file"),
				JournalDSN:        viper.GetString("journal-dsn"),
				Addr:              viper.GetString("addr"),
				Port:              viper.GetInt("port"),
				Version:           version.GetCurrentVersion(viper.GetString("mode")),
			}
			instanceProfile.FromEnv()
			if err := instanceProfile.Validate(); err != nil {
				return err
			}

			setupLogger(instanceProfile, viper.GetBool("verbose"))
			exporter = metrics.NewExporter(metrics.DefaultConfig())
			return nil
		},
	}
)

func init() {
	viper.SetDefault("mode", "dev")
	viper.SetDefault("port", 28090)

	rootCmd.PersistentFlags().String("mode", "dev", `mode of the cli, can be "prod" or "dev"`)
	rootCmd.PersistentFlags().String("data", "", "data directory (session file, journal)")
	rootCmd.PersistentFlags().String("api-url", "", "base url of the generation backend")
	rootCmd.PersistentFlags().Duration("timeout", 0, "per-request timeout")
	rootCmd.PersistentFlags().Float64("rps", 0, "client-side request rate limit, 0 disables it")
	rootCmd.PersistentFlags().String("session-file", "", "path of the persisted session")
	rootCmd.PersistentFlags().String("journal-dsn", "", `sqlite journal path, "journal" for the default one`)
	rootCmd.PersistentFlags().String("addr", "127.0.0.1", "address of the preview server")
	rootCmd.PersistentFlags().Int("port", 28090, "port of the preview server")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log debug output")

	for _, key := range []string{"mode", "data", "api-url", "timeout", "rps", "session-file", "journal-dsn", "addr", "port", "verbose"} {
		if err := viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(key)); err != nil {
			panic(err)
		}
	}

	viper.SetEnvPrefix("crea")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()
	if err := viper.BindEnv("api-url", "CREA_API_BASE_URL"); err != nil {
		panic(err)
	}

	rootCmd.AddCommand(
		newLoginCmd(),
		newRegisterCmd(),
		newLogoutCmd(),
		newWhoamiCmd(),
		newCatalogsCmd(),
		newPostsCmd(),
		newCompanyCmd(),
		newTemplatesCmd(),
		newHistoryCmd(),
		newChatCmd(),
		newVersionCmd(),
	)
}

// setupLogger installs the default slog logger: JSON in prod, text in dev.
func setupLogger(p *profile.Profile, verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if p.IsDev() {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// newClient builds a backend client around the persisted session.
func newClient() (*client.Client, error) {
	session, err := client.LoadSession(instanceProfile.SessionFile)
	if err != nil {
		return nil, err
	}
	return client.New(client.ConfigFromProfile(instanceProfile), session, exporter), nil
}

// isRunningAsSystemdService detects if the process is running under systemd
func isRunningAsSystemdService() bool {
	return os.Getenv("INVOCATION_ID") != "" || os.Getenv("WATCHDOG_USEC") != ""
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		printError(rootCmd.ErrOrStderr(), err)
		os.Exit(1)
	}
}
