// codgoo is the command-line consumer of the session facade: it signs in to
// the Codgoo API, persists the session between invocations, and performs
// the hard reset when the API client reports the session invalid.
//
// Usage:
//
//	codgoo login -email a@b.com -password secret
//	codgoo register -username a -email a@b.com -password secret
//	codgoo social -provider google -token <provider-token>
//	codgoo whoami
//	codgoo refresh -token <refresh-token>
//	codgoo status
//	codgoo logout
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/redis/go-redis/v9"

	"codgoo/client/internal/api"
	"codgoo/client/internal/config"
	"codgoo/client/internal/db"
	"codgoo/client/internal/security"
	"codgoo/client/internal/session"
	"codgoo/client/internal/session/domain"
	"codgoo/client/internal/session/service"
	"codgoo/client/internal/session/store"
	"codgoo/client/internal/telemetry/otel"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	cmd, args := os.Args[1], os.Args[2:]

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()

	providers, err := otel.NewProviders(ctx, cfg.OTLPEndpoint, "codgoo-cli", cfg.OTLPInsecure)
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}
	providers.SetGlobal()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = providers.Shutdown(shutdownCtx)
	}()

	st, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("session store: %v", err)
	}
	defer closeStore()

	policy := api.DefaultLogoutPolicy()
	if l := cfg.SessionSensitiveList(); l != nil {
		policy.SessionSensitive = l
	}
	if l := cfg.BestEffortList(); l != nil {
		policy.BestEffort = l
	}

	events := otel.NewEventEmitter(providers.LoggerProvider)

	client, err := api.New(st, api.Options{
		BaseURL:    cfg.APIBaseURL,
		HTTPClient: &http.Client{Timeout: cfg.Timeout()},
		Locale:     func() string { return cfg.Locale },
		Policy:     &policy,
		// The coordinator's hard reset: the store is already cleared by the
		// API client, so report and point at login (the CLI equivalent of
		// navigating to the login page).
		OnSessionInvalidated: func(path string) {
			fmt.Fprintf(os.Stderr, "session is no longer valid (rejected at %s); run 'codgoo login'\n", path)
		},
		Events:         events,
		TracerProvider: providers.TracerProvider,
		MeterProvider:  providers.MeterProvider,
	})
	if err != nil {
		log.Fatalf("api client: %v", err)
	}

	sess := session.New(service.New(client, st, events), st)

	if err := run(ctx, cmd, args, sess); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd string, args []string, sess *session.Session) error {
	switch cmd {
	case "login":
		fs := flag.NewFlagSet("login", flag.ExitOnError)
		email := fs.String("email", "", "account email")
		password := fs.String("password", "", "account password")
		_ = fs.Parse(args)
		resp, err := sess.Login(ctx, *email, *password)
		if err != nil {
			return err
		}
		fmt.Printf("signed in as %s (%s)\n", resp.User.Username, resp.User.Email)
		fmt.Printf("refresh token (keep it somewhere safe): %s\n", resp.RefreshToken)
		return nil

	case "register":
		fs := flag.NewFlagSet("register", flag.ExitOnError)
		data := domain.RegisterData{}
		fs.StringVar(&data.Username, "username", "", "username")
		fs.StringVar(&data.Email, "email", "", "account email")
		fs.StringVar(&data.Password, "password", "", "account password")
		fs.StringVar(&data.Company, "company", "", "company (optional)")
		fs.StringVar(&data.Phone, "phone", "", "phone (optional)")
		fs.BoolVar(&data.RememberMe, "remember", false, "remember me")
		_ = fs.Parse(args)
		data.ConfirmPassword = data.Password
		resp, err := sess.Register(ctx, data)
		if err != nil {
			return err
		}
		fmt.Printf("registered and signed in as %s (%s)\n", resp.User.Username, resp.User.Email)
		fmt.Printf("refresh token (keep it somewhere safe): %s\n", resp.RefreshToken)
		return nil

	case "social":
		fs := flag.NewFlagSet("social", flag.ExitOnError)
		provider := fs.String("provider", "", "social provider (e.g. google)")
		token := fs.String("token", "", "provider-issued token")
		_ = fs.Parse(args)
		resp, err := sess.SocialLogin(ctx, *provider, *token)
		if err != nil {
			return err
		}
		fmt.Printf("signed in as %s (%s)\n", resp.User.Username, resp.User.Email)
		return nil

	case "whoami":
		u, err := sess.CurrentUser(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("%s <%s> id=%s\n", u.Username, u.Email, u.ID)
		return nil

	case "refresh":
		fs := flag.NewFlagSet("refresh", flag.ExitOnError)
		token := fs.String("token", "", "refresh token from a previous login")
		_ = fs.Parse(args)
		resp, err := sess.Refresh(ctx, *token)
		if err != nil {
			return err
		}
		fmt.Printf("session refreshed for %s; new refresh token: %s\n", resp.User.Username, resp.RefreshToken)
		return nil

	case "logout":
		if err := sess.Logout(ctx); err != nil {
			return err
		}
		fmt.Println("signed out")
		return nil

	case "status":
		snap := sess.Snapshot()
		if !snap.Authenticated() {
			fmt.Println("not signed in")
			return nil
		}
		fmt.Printf("signed in as %s (%s)\n", snap.User.Username, snap.User.Email)
		if exp, err := security.ExpiryOf(snap.Token); err == nil {
			fmt.Printf("token expires %s\n", exp.Local().Format(time.RFC1123))
		}
		return nil

	default:
		usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// openStore picks the credential store: Redis when CODGOO_REDIS_URL is set,
// Postgres when CODGOO_DATABASE_URL is set, otherwise a file under the user
// config dir.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, func(), error) {
	noop := func() {}
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, noop, err
		}
		client := redis.NewClient(opts)
		st, err := store.NewRedis(ctx, client, cfg.SessionScope, cfg.RefreshTTL())
		if err != nil {
			_ = client.Close()
			return nil, noop, err
		}
		return st, func() { _ = client.Close() }, nil
	}
	if cfg.DatabaseURL != "" {
		conn, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, noop, err
		}
		st, err := store.NewPostgres(ctx, conn, cfg.SessionScope)
		if err != nil {
			_ = conn.Close()
			return nil, noop, err
		}
		return st, func() { _ = conn.Close() }, nil
	}
	path := cfg.SessionFile
	if path == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, noop, err
		}
		path = filepath.Join(dir, "codgoo", "session.json")
	}
	st, err := store.NewFile(path)
	if err != nil {
		return nil, noop, err
	}
	return st, noop, nil
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: codgoo <command> [flags]

commands:
  login     sign in with email and password
  register  create an account and sign in
  social    sign in with a provider-issued token
  whoami    fetch the current user profile
  refresh   exchange a refresh token for new credentials
  status    show the persisted session
  logout    end the session`)
}
