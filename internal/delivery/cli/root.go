package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Xausdorf/swish-pay-hub/internal/infrastructure/logger"
	"github.com/Xausdorf/swish-pay-hub/swish"
)

// Settings are read from flags, SWISH_* environment variables and an optional
// config file, in that order of precedence.
type Settings struct {
	MerchantAlias string        `mapstructure:"merchant_alias"`
	CertPath      string        `mapstructure:"cert_path"`
	KeyPath       string        `mapstructure:"key_path"`
	Passphrase    string        `mapstructure:"passphrase"`
	RootCertPath  string        `mapstructure:"root_cert_path"`
	BaseURL       string        `mapstructure:"base_url"`
	CallbackURL   string        `mapstructure:"callback_url"`
	Timeout       time.Duration `mapstructure:"timeout"`
	Verbose       bool          `mapstructure:"verbose"`
}

type app struct {
	v    *viper.Viper
	opts []swish.Option
}

// NewRootCommand builds the swishctl command tree. opts are passed to every
// swish client the commands create.
func NewRootCommand(opts ...swish.Option) *cobra.Command {
	a := &app{v: viper.New(), opts: opts}

	var configPath string
	cmd := &cobra.Command{
		Use:           "swishctl",
		Short:         "Swish payment API client",
		Long:          `swishctl creates and inspects Swish payment requests and refunds using the merchant certificate.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if configPath == "" {
				return nil
			}
			a.v.SetConfigFile(configPath)
			if err := a.v.ReadInConfig(); err != nil {
				return fmt.Errorf("read config %s: %w", configPath, err)
			}
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "Path to config file (yaml, json or toml)")
	flags.String("merchant-alias", "", "Merchant Swish number")
	flags.String("cert", "", "Client certificate, PKCS#12 or PEM when --key is set")
	flags.String("key", "", "PEM private key for --cert")
	flags.String("passphrase", "", "PKCS#12 passphrase")
	flags.String("root-cert", "", "Swish root CA certificate, PEM or DER")
	flags.String("base-url", swish.TestBaseURL, "Swish API base URL")
	flags.String("callback-url", "", "Default callback URL")
	flags.Duration("timeout", 30*time.Second, "Request timeout")
	flags.BoolP("verbose", "v", false, "Log requests to stderr")

	for key, flag := range map[string]string{
		"merchant_alias": "merchant-alias",
		"cert_path":      "cert",
		"key_path":       "key",
		"passphrase":     "passphrase",
		"root_cert_path": "root-cert",
		"base_url":       "base-url",
		"callback_url":   "callback-url",
		"timeout":        "timeout",
		"verbose":        "verbose",
	} {
		_ = a.v.BindPFlag(key, flags.Lookup(flag))
	}
	a.v.SetEnvPrefix("SWISH")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	cmd.AddCommand(
		a.newPaymentCommand(),
		a.newRefundCommand(),
	)

	return cmd
}

func (a *app) settings() (*Settings, error) {
	var s Settings
	if err := a.v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	return &s, nil
}

func (a *app) client(cmd *cobra.Command) (*swish.Client, *Settings, error) {
	s, err := a.settings()
	if err != nil {
		return nil, nil, err
	}

	opts := append([]swish.Option{}, a.opts...)
	if s.Verbose {
		opts = append(opts, swish.WithLogger(logger.New(cmd.ErrOrStderr(), "debug", "text")))
	}

	client, err := swish.New(swish.Config{
		MerchantAlias: s.MerchantAlias,
		CertPath:      s.CertPath,
		KeyPath:       s.KeyPath,
		Passphrase:    s.Passphrase,
		RootCertPath:  s.RootCertPath,
		BaseURL:       s.BaseURL,
		Timeout:       s.Timeout,
	}, opts...)
	if err != nil {
		return nil, nil, err
	}
	return client, s, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
