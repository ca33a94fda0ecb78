package main

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	serverURL string
	apiURL    string
	tokenFile string
	verbose   bool
	version   bool
}

func (c *Config) validate() error {
	server, err := url.Parse(c.serverURL)
	if err != nil || (server.Scheme != "ws" && server.Scheme != "wss") {
		return fmt.Errorf("invalid --server-url (must be a ws:// or wss:// address): %s", c.serverURL)
	}
	api, err := url.Parse(c.apiURL)
	if err != nil || (api.Scheme != "http" && api.Scheme != "https") {
		return fmt.Errorf("invalid --api-url (must be an http:// or https:// address): %s", c.apiURL)
	}
	return nil
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("FLAGMATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "flagmatch",
		Short:         "A terminal client for the FlagMatch realtime flag trivia game.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return cfg.validate()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd.Context(), cfg)
		},
	}

	fs := cmd.PersistentFlags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.serverURL, "server-url", "s", "ws://localhost:3000/game", "websocket address of the game server (env: FLAGMATCH_SERVER_URL)")
	fs.StringVarP(&cfg.apiURL, "api-url", "a", "http://localhost:3000", "http address of the account api (env: FLAGMATCH_API_URL)")
	fs.StringVar(&cfg.tokenFile, "token-file", "", "path to the stored access token (env: FLAGMATCH_TOKEN_FILE)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: FLAGMATCH_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: FLAGMATCH_VERSION)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.AddCommand(
		newLoginCmd(cfg),
		newRegisterCmd(cfg),
		newLogoutCmd(cfg),
		newLeaderboardCmd(cfg),
		newStatsCmd(cfg),
	)

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("flagmatch v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
