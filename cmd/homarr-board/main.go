// ABOUTME: Entry point for the homarr-board server and its admin commands
// ABOUTME: serve, init, token, health, boards and export

package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"github.com/2389/homarr-board/internal/auth"
	"github.com/2389/homarr-board/internal/boardio"
	"github.com/2389/homarr-board/internal/config"
	"github.com/2389/homarr-board/internal/server"
	"github.com/2389/homarr-board/internal/store"
)

// version is set by goreleaser at build time.
var version = "dev"

const banner = `
 _                                      _                         _
| |__   ___  _ __ ___   __ _ _ __ _ __| |__   ___   __ _ _ __ __| |
| '_ \ / _ \| '_ ' _ \ / _' | '__| '__| '_ \ / _ \ / _' | '__/ _' |
| | | | (_) | | | | | | (_| | |  | |  | |_) | (_) | (_| | | | (_| |
|_| |_|\___/|_| |_| |_|\__,_|_|  |_|  |_.__/ \___/ \__,_|_|  \__,_|
`

func usage() {
	fmt.Println("Usage: homarr-board <command>")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  serve                          Start the board server")
	fmt.Println("  init [--force]                 Write a default config file")
	fmt.Println("  token --subject NAME [--admin] Issue an API token")
	fmt.Println("  health                         Check server health")
	fmt.Println("  boards                         List boards")
	fmt.Println("  export NAME [json|yaml|toml]   Print a board document")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	args := os.Args[2:]
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "init":
		err = runInit(args, os.Stdout)
	case "token":
		err = runToken(args, os.Stdout)
	case "health":
		err = runHealth(ctx)
	case "boards":
		err = runBoards(ctx)
	case "export":
		err = runExport(ctx, args, os.Stdout)
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads the config file, falling back to defaults when it is missing.
func loadConfig() (*config.Config, string, error) {
	configPath := config.DefaultPath()
	cfg, found, err := config.LoadOrDefault(configPath)
	if err != nil {
		return nil, configPath, fmt.Errorf("loading config: %w", err)
	}
	if !found {
		configPath = "(defaults)"
	}
	return cfg, configPath, nil
}

func runServe(ctx context.Context) error {
	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	cfg, configPath, err := loadConfig()
	if err != nil {
		return err
	}
	logger := setupLogger(cfg.Logging)

	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	green.Print("    ▶ ")
	fmt.Printf("Config:    %s\n", configPath)
	green.Print("    ▶ ")
	fmt.Printf("Database:  %s\n", cfg.Database.Path)
	green.Print("    ▶ ")
	fmt.Printf("HTTP:      %s\n", cfg.Server.HTTPAddr)
	green.Print("    ▶ ")
	fmt.Printf("gRPC:      %s\n", cfg.Server.GRPCAddr)
	green.Print("    ▶ ")
	fmt.Printf("Auth:      ")
	if cfg.Auth.JWTSecret == "" {
		yellow.Println("disabled (local admin)")
	} else {
		fmt.Println("bearer tokens")
	}
	fmt.Println()

	logger.Info("starting homarr-board",
		"config", configPath,
		"http_addr", cfg.Server.HTTPAddr,
		"grpc_addr", cfg.Server.GRPCAddr,
	)

	srv, err := server.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	return srv.Run(ctx)
}

func runInit(args []string, out io.Writer) error {
	force := false
	for _, arg := range args {
		switch arg {
		case "--force", "-f":
			force = true
		default:
			return fmt.Errorf("unknown flag: %s", arg)
		}
	}

	configPath := config.DefaultPath()
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("%s exists (use --force to overwrite)", configPath)
	}

	secretBytes := make([]byte, 32)
	if _, err := rand.Read(secretBytes); err != nil {
		return fmt.Errorf("generating JWT secret: %w", err)
	}

	cfg := config.Default()
	cfg.Auth.JWTSecret = base64.StdEncoding.EncodeToString(secretBytes)
	if err := cfg.Write(configPath); err != nil {
		return err
	}

	green := color.New(color.FgGreen)
	green.Fprintf(out, "  ✓ Created config: %s\n", configPath)
	fmt.Fprintf(out, "  Database:  %s\n", cfg.Database.Path)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "  Next:")
	fmt.Fprintln(out, "    homarr-board token --subject you --admin")
	fmt.Fprintln(out, "    homarr-board serve")
	return nil
}

// tokenOptions are the parsed flags of the token command.
type tokenOptions struct {
	subject string
	admin   bool
	ttl     time.Duration
}

func parseTokenArgs(args []string) (tokenOptions, error) {
	opts := tokenOptions{ttl: 30 * 24 * time.Hour}
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--subject" || arg == "-s":
			if i+1 >= len(args) {
				return opts, fmt.Errorf("--subject requires a value")
			}
			opts.subject = args[i+1]
			i++
		case strings.HasPrefix(arg, "--subject="):
			opts.subject = strings.TrimPrefix(arg, "--subject=")
		case arg == "--admin":
			opts.admin = true
		case strings.HasPrefix(arg, "--ttl="):
			d, err := time.ParseDuration(strings.TrimPrefix(arg, "--ttl="))
			if err != nil {
				return opts, fmt.Errorf("parsing --ttl: %w", err)
			}
			if d <= 0 {
				return opts, fmt.Errorf("--ttl must be positive")
			}
			opts.ttl = d
		default:
			return opts, fmt.Errorf("unknown flag: %s", arg)
		}
	}
	opts.subject = strings.TrimSpace(opts.subject)
	if opts.subject == "" {
		return opts, fmt.Errorf("--subject flag is required")
	}
	return opts, nil
}

func runToken(args []string, out io.Writer) error {
	opts, err := parseTokenArgs(args)
	if err != nil {
		return err
	}

	cfg, configPath, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret not configured in %s", configPath)
	}
	verifier, err := auth.NewJWTVerifier([]byte(cfg.Auth.JWTSecret))
	if err != nil {
		return fmt.Errorf("creating JWT verifier: %w", err)
	}
	token, err := verifier.Generate(opts.subject, opts.admin, opts.ttl)
	if err != nil {
		return fmt.Errorf("generating token: %w", err)
	}
	fmt.Fprintln(out, token)
	return nil
}

// apiGet performs an authenticated GET against the configured server.
// The token is read from HOMARR_TOKEN.
func apiGet(ctx context.Context, cfg *config.Config, path string) (*http.Response, error) {
	url := fmt.Sprintf("http://%s%s", cfg.Server.HTTPAddr, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if token := os.Getenv("HOMARR_TOKEN"); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return http.DefaultClient.Do(req)
}

func runHealth(ctx context.Context) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	resp, err := apiGet(ctx, cfg, "/health")
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: status %d", resp.StatusCode)
	}
	fmt.Println("healthy")
	return nil
}

func runBoards(ctx context.Context) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	resp, err := apiGet(ctx, cfg, "/api/boards")
	if err != nil {
		return fmt.Errorf("listing boards: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("listing boards: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	var list server.ListBoardsResponse
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tVERSION\tAPPS\tWIDGETS")
	for _, b := range list.Boards {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\n", b.Name, b.Version, b.Apps, b.Widgets)
	}
	return w.Flush()
}

// runExport reads the store directly, so it works while the server is down.
func runExport(ctx context.Context, args []string, out io.Writer) error {
	if len(args) < 1 || len(args) > 2 {
		return errors.New("usage: homarr-board export NAME [json|yaml|toml]")
	}
	format := boardio.FormatJSON
	if len(args) == 2 {
		f, err := boardio.ParseFormat(args[1])
		if err != nil {
			return err
		}
		format = f
	}

	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	s, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer s.Close()

	b, err := s.Get(ctx, args[0])
	if err != nil {
		return fmt.Errorf("reading board %q: %w", args[0], err)
	}
	return boardio.Encode(out, b, format)
}
