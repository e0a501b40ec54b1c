package main

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	esdlog "github.com/smnsjas/go-esd/internal/log"
)

// envPrefix prefixes the environment variables bound to flags.
const envPrefix = "ESD"

// app carries state shared by the subcommands of one invocation.
type app struct {
	v      *viper.Viper
	logger *slog.Logger
	closer io.Closer
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}
	a.v.SetEnvPrefix(envPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "esd-campaign",
		Short:         "Provision retire campaigns on an ESD server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.String("username", "", "User name for the ESD server (DOMAIN\\user accepted)")
	flags.String("password", "", "Password (use ESD_PASSWORD env var instead)")
	flags.String("ntlm-domain", "", "NTLM domain, when not part of --username")
	flags.String("proxies", "", `JSON object of proxy URLs by scheme, e.g. {"https":"http://proxy:3128"}`)
	flags.Duration("timeout", 60*time.Second, "Timeout for each HTTP exchange")
	flags.Bool("verify-tls", false, "Verify the server's TLS certificate")
	flags.String("ca-file", "", "PEM bundle of CA certificates to trust with --verify-tls")
	flags.String("log-level", "error", "Log level: debug, info, warn, error")
	flags.String("log-format", esdlog.FormatText, "Log format: text or json")
	flags.String("log-file", "", "Write logs to a size-rotated file instead of stderr")
	annotateEnv(flags)

	cmd.AddCommand(newRetireCmd(a), newDevicesCmd(a))
	return cmd
}

// setup binds the executing command's flags, including inherited ones, and
// builds the logger.
func (a *app) setup(cmd *cobra.Command) error {
	if err := a.v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	logger, closer, err := esdlog.NewLogger(esdlog.Options{
		Level:  a.v.GetString("log-level"),
		Format: a.v.GetString("log-format"),
		Writer: cmd.ErrOrStderr(),
		File:   a.v.GetString("log-file"),
	})
	if err != nil {
		return err
	}
	a.logger, a.closer = logger, closer
	return nil
}

// envName returns the environment variable bound to flag name.
func envName(name string) string {
	return envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}

// annotateEnv appends the bound environment variable to each flag's usage.
func annotateEnv(fs *pflag.FlagSet) {
	fs.VisitAll(func(f *pflag.Flag) {
		f.Usage += " [$" + envName(f.Name) + "]"
	})
}

// teardown releases the log file, if any.
func (a *app) teardown() {
	if a.closer != nil {
		_ = a.closer.Close()
	}
}

// require returns the value of each named setting, failing on the first
// one that is empty.
func (a *app) require(names ...string) ([]string, error) {
	values := make([]string, len(names))
	for i, name := range names {
		values[i] = strings.TrimSpace(a.v.GetString(name))
		if values[i] == "" {
			return nil, fmt.Errorf("--%s is required (or set %s)", name, envName(name))
		}
	}
	return values, nil
}

// credentials resolves the user name and password, prompting for the
// password when neither the flag nor the environment provides it.
func (a *app) credentials(cmd *cobra.Command) (string, string, error) {
	vals, err := a.require("username")
	if err != nil {
		return "", "", err
	}

	password := a.v.GetString("password")
	if password == "" {
		password, err = promptPassword(cmd.InOrStdin(), cmd.ErrOrStderr())
		if err != nil {
			return "", "", fmt.Errorf("read password: %w", err)
		}
	}
	if password == "" {
		return "", "", errors.New("password is required (use --password, ESD_PASSWORD, or stdin)")
	}
	return vals[0], password, nil
}

// tlsConfig returns a TLS configuration trusting the CA bundle named by
// --ca-file, or nil when none is set.
func (a *app) tlsConfig() (*tls.Config, error) {
	path := a.v.GetString("ca-file")
	if path == "" {
		return nil, nil
	}
	pem, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read CA file: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("no certificates found in %s", path)
	}
	return &tls.Config{RootCAs: pool}, nil
}
