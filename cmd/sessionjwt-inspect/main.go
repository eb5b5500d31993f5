// Command sessionjwt-inspect opens one connection against a parameter source, runs the
// session functions and prints the identity they report.
//
// With DATABASE_URL set, parameters are read from that PostgreSQL session through
// current_setting; SESSIONJWT_JWK and SESSIONJWT_CLAIMS are first applied there with
// set_config. Without it they are read from the environment directly.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/MrEthical07/sessionjwt"
	"github.com/MrEthical07/sessionjwt/internal/envconfig"
	"github.com/MrEthical07/sessionjwt/settings"
)

type config struct {
	DatabaseURL string        `env:"DATABASE_URL"`
	KeyParam    string        `env:"SESSIONJWT_KEY_PARAM" envDefault:"pg_session_jwt.jwk"`
	ClaimsParam string        `env:"SESSIONJWT_CLAIMS_PARAM" envDefault:"request.jwt.claims"`
	JWK         string        `env:"SESSIONJWT_JWK"`
	Claims      string        `env:"SESSIONJWT_CLAIMS"`
	Token       string        `env:"SESSIONJWT_TOKEN"`
	Timeout     time.Duration `env:"SESSIONJWT_TIMEOUT" envDefault:"10s"`
	Logging     envconfig.Logging
}

type report struct {
	ConnID  string          `json:"conn_id"`
	Mode    string          `json:"mode"`
	HasKey  bool            `json:"has_key"`
	Trusted bool            `json:"trusted"`
	Session json.RawMessage `json:"session"`
	UserID  *string         `json:"user_id"`
	Errors  []string        `json:"errors,omitempty"`
}

func main() {
	if err := run(os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(out io.Writer) error {
	var cfg config
	if err := envconfig.Load(&cfg); err != nil {
		return err
	}
	flag.StringVar(&cfg.Token, "token", cfg.Token, "compact token passed to jwt_session_init")
	flag.StringVar(&cfg.DatabaseURL, "database-url", cfg.DatabaseURL, "PostgreSQL connection string")
	flag.Parse()

	logger, err := envconfig.NewLogger(os.Stderr, cfg.Logging)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	engineCfg := sessionjwt.DefaultConfig()
	engineCfg.Settings.KeyParam = cfg.KeyParam
	engineCfg.Settings.ClaimsParam = cfg.ClaimsParam
	engine, err := sessionjwt.New().WithConfig(engineCfg).WithLogger(logger).Build()
	if err != nil {
		return err
	}
	defer engine.Close()

	provider, closeProvider, err := openProvider(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeProvider()

	rep, err := inspect(ctx, engine, provider, cfg.Token)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

func openProvider(ctx context.Context, cfg config) (settings.Provider, func(), error) {
	if cfg.DatabaseURL == "" {
		values := make(map[string]string, 2)
		if cfg.JWK != "" {
			values[cfg.KeyParam] = cfg.JWK
		}
		if cfg.Claims != "" {
			values[cfg.ClaimsParam] = cfg.Claims
		}
		return settings.NewMemory(values), func() {}, nil
	}

	conn, err := pgx.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect: %w", err)
	}
	closeConn := func() { _ = conn.Close(context.Background()) }

	for name, value := range map[string]string{cfg.KeyParam: cfg.JWK, cfg.ClaimsParam: cfg.Claims} {
		if value == "" {
			continue
		}
		if _, err := conn.Exec(ctx, "SELECT set_config($1, $2, false)", name, value); err != nil {
			closeConn()
			return nil, nil, fmt.Errorf("set_config %s: %w", name, err)
		}
	}
	return settings.NewPostgres(conn), closeConn, nil
}

// inspect drives one connection the way a session would: Init, then JWTSessionInit
// when a token is given, then the identity queries. Recoverable failures are
// reported, not returned.
func inspect(ctx context.Context, engine *sessionjwt.Engine, p settings.Provider, token string) (report, error) {
	conn, err := engine.Open(ctx, p)
	if err != nil {
		return report{}, err
	}
	defer conn.Close(ctx)

	var rep report
	if err := conn.Init(ctx); err != nil {
		if errors.Is(err, sessionjwt.ErrSettingsUnavailable) {
			return report{}, err
		}
		rep.Errors = append(rep.Errors, "init: "+err.Error())
	}
	if token != "" {
		if err := conn.JWTSessionInit(ctx, token); err != nil {
			rep.Errors = append(rep.Errors, "jwt_session_init: "+err.Error())
		}
	}

	set := conn.SessionClaims(ctx)
	rep.ConnID = conn.ID().String()
	rep.Mode = conn.Mode().String()
	rep.HasKey = conn.HasKey()
	rep.Trusted = set.Trusted()
	rep.Session = set.JSON()
	if uid, ok := set.Subject(); ok {
		rep.UserID = &uid
	}
	return rep, nil
}
