// Package cli implements the zitadel-token command.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/grafana/zitadel-token-go/pkg/tokenprovider"
)

const (
	envKeyFile = "ZITADEL_KEY_FILE"
	envIssuer  = "ZITADEL_ISSUER"
	envScopes  = "ZITADEL_SCOPES"
)

type Config struct {
	Stdout io.Writer
	Stderr io.Writer
}

type options struct {
	keyPath string
	issuer  string
	scopes  string
	url     string
	verbose bool
}

func DefaultConfig() Config {
	return Config{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

func NewRootCommand(cfg Config) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "zitadel-token",
		Short: "Exchange a Zitadel key file for an OAuth access token",
		Long: `Signs a JWT assertion with the private key of a Zitadel service account or
application key file and exchanges it for an access token using the JWT bearer
grant. The token is printed to stdout, diagnostics go to stderr:

  curl https://fission.gsingh.io/hello \
    -H "Authorization: Bearer $(zitadel-token --key key.json)"`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if opts.keyPath == "" {
				opts.keyPath = os.Getenv(envKeyFile)
			}
			if !cmd.Flags().Changed("issuer") {
				if v := os.Getenv(envIssuer); v != "" {
					opts.issuer = v
				}
			}
			if !cmd.Flags().Changed("scopes") {
				if v := os.Getenv(envScopes); v != "" {
					opts.scopes = v
				}
			}
			if opts.keyPath == "" {
				return errors.New("required flag \"key\" not set (or set " + envKeyFile + ")")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := newLogger(cmd.ErrOrStderr(), opts.verbose)
			defer logger.Sync() //nolint:errcheck
			return run(cmd.Context(), opts, cmd.OutOrStdout(), logger)
		},
	}

	if cfg.Stdout != nil {
		root.SetOut(cfg.Stdout)
	}
	if cfg.Stderr != nil {
		root.SetErr(cfg.Stderr)
	}

	root.Flags().StringVar(&opts.keyPath, "key", "", "Path to Zitadel key JSON file (env "+envKeyFile+")")
	root.Flags().StringVar(&opts.issuer, "issuer", tokenprovider.DefaultIssuer, "Zitadel issuer URL (env "+envIssuer+")")
	root.Flags().StringVar(&opts.scopes, "scopes", tokenprovider.DefaultScopes, "OAuth scopes, space separated (env "+envScopes+")")
	root.Flags().StringVar(&opts.url, "url", "", "Call this URL with the access token and print the response body instead of the token")
	root.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug diagnostics on stderr")

	return root
}

func run(ctx context.Context, opts *options, stdout io.Writer, logger *zap.Logger) error {
	record, err := tokenprovider.LoadKeyFile(opts.keyPath)
	if err != nil {
		return err
	}

	keyType := record.Type
	if keyType == "" {
		keyType = "unknown"
	}
	logger.Info("Key type", zap.String("type", keyType), zap.String("keyId", record.KeyID))
	if record.AppID != nil {
		logger.Debug("Application key", zap.String("appId", *record.AppID))
	}

	subject, err := tokenprovider.ResolveSubject(record)
	if err != nil {
		return err
	}
	logger.Info("Subject", zap.String("subject", subject))

	provider, err := tokenprovider.NewJwtBearerAccessTokenProvider(tokenprovider.Config{
		Issuer: opts.issuer,
		Scopes: append([]string{}, strings.Fields(opts.scopes)...),
	}, record)
	if err != nil {
		return err
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, cleanhttp.DefaultClient())

	logger.Debug("Requesting access token", zap.String("issuer", opts.issuer), zap.String("scopes", opts.scopes))
	token, err := provider.GetToken(ctx)
	if err != nil {
		return err
	}

	fields := []zap.Field{zap.String("tokenType", token.TokenType)}
	if !token.Expiry.IsZero() {
		fields = append(fields, zap.Time("expiry", token.Expiry))
	}
	logger.Info("Access token issued", fields...)

	if opts.url == "" {
		_, err = fmt.Fprintln(stdout, token.AccessToken)
		return err
	}

	result, err := tokenprovider.CallWithToken(ctx, opts.url, token)
	if err != nil {
		return err
	}
	logger.Info("Response", zap.String("url", opts.url), zap.Int("status", result.StatusCode))

	if _, err := stdout.Write(result.Body); err != nil {
		return err
	}
	if !result.OK() {
		return fmt.Errorf("%w: %s returned status %d", tokenprovider.ErrUnexpectedStatus, opts.url, result.StatusCode)
	}
	return nil
}
