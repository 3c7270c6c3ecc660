// Command catmaze runs the cat maze game server.
//
// Modes:
//  1. "server" (default) runs the HTTP server exposing the REST API, WebSocket and an /mcp endpoint
//  2. "mcp" runs an MCP stdio server backed by a running HTTP API, or an internal one if none answers
//  3. "path" prints the cat's route between two tiles of a level
//  4. "validate" checks every level file in a directory
//
// Flags and their environment variables control host/port, the levels and
// sessions directories, step mode, logging and optional ngrok tunneling.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/catmaze/api"
	"github.com/wricardo/catmaze/game/config"
	"github.com/wricardo/catmaze/game/service"
	"github.com/wricardo/catmaze/game/session"
	"github.com/wricardo/catmaze/logging"
	"github.com/wricardo/catmaze/transport/mcp"
	"github.com/wricardo/catmaze/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Cat Maze Game Server"
)

const (
	sessionMaxAge          = 24 * time.Hour
	sessionCleanupInterval = time.Hour
	shutdownTimeout        = 10 * time.Second
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: error loading .env file: %v\n", err)
	}

	if err := newApp().Run(context.Background(), os.Args); err != nil {
		zap.L().Error("exiting", zap.Error(err))
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newApp builds the command tree. Root flags are inherited by every
// subcommand.
func newApp() *cli.Command {
	var restoreLogger func()

	return &cli.Command{
		Name:    "catmaze",
		Usage:   AppName,
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Value: "localhost", Usage: "HTTP server host", Sources: cli.EnvVars("HOST")},
			&cli.StringFlag{Name: "port", Value: "8080", Usage: "HTTP server port", Sources: cli.EnvVars("PORT")},
			&cli.StringFlag{Name: "levels-dir", Value: "levels", Usage: "directory containing level files", Sources: cli.EnvVars("LEVELS_DIR")},
			&cli.StringFlag{Name: "sessions-dir", Value: "sessions", Usage: "directory session files are saved to", Sources: cli.EnvVars("SESSIONS_DIR")},
			&cli.StringFlag{Name: "step-mode", Value: string(service.StepInstant), Usage: "when steps land: instant, manual or realtime", Sources: cli.EnvVars("STEP_MODE")},
			&cli.BoolFlag{Name: "debug", Usage: "enable debug logging", Sources: cli.EnvVars("DEBUG")},
			&cli.StringFlag{Name: "log-file", Usage: "also write logs to this rotating file", Sources: cli.EnvVars("LOG_FILE")},
			&cli.BoolFlag{Name: "ngrok", Usage: "enable ngrok tunnel", Sources: cli.EnvVars("NGROK_ENABLED")},
			&cli.StringFlag{Name: "ngrok-auth", Usage: "ngrok auth token", Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN")},
			&cli.StringFlag{Name: "ngrok-domain", Usage: "custom ngrok domain", Sources: cli.EnvVars("NGROK_DOMAIN")},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			restoreLogger = logging.Install(logging.Options{
				Debug: cmd.Bool("debug"),
				File:  cmd.String("log-file"),
			})
			return ctx, nil
		},
		After: func(ctx context.Context, cmd *cli.Command) error {
			if restoreLogger != nil {
				restoreLogger()
			}
			return nil
		},
		Action: runServer,
		Commands: []*cli.Command{
			{
				Name:    "server",
				Aliases: []string{"http"},
				Usage:   "run the HTTP server with REST API, WebSocket and MCP endpoint",
				Action:  runServer,
			},
			{
				Name:    "mcp",
				Aliases: []string{"stdio-mcp", "mcp-stdio"},
				Usage:   "run an MCP stdio server",
				Action:  runStdioMCP,
			},
			{
				Name:      "path",
				Usage:     "print the route between two tiles of a level",
				ArgsUsage: "<level> <col,row> <col,row>",
				Action:    runPathCommand,
			},
			{
				Name:      "validate",
				Usage:     "validate the level files in a directory",
				ArgsUsage: "[dir]",
				Action:    runValidateCommand,
			},
		},
	}
}

// serverOptions are the settings initializeServices needs
type serverOptions struct {
	LevelsDir   string
	SessionsDir string
	StepMode    string
}

func optionsFrom(cmd *cli.Command) serverOptions {
	return serverOptions{
		LevelsDir:   cmd.String("levels-dir"),
		SessionsDir: cmd.String("sessions-dir"),
		StepMode:    cmd.String("step-mode"),
	}
}

// services holds everything a running server needs
type services struct {
	Game     service.GameService
	Configs  *config.Manager
	Sessions *session.Manager
	Hub      *websocket.Hub
}

// initializeServices wires the level and session managers, the websocket hub
// and the game service, and starts their background routines. Everything
// stops when ctx is done.
func initializeServices(ctx context.Context, opts serverOptions) (*services, error) {
	mode, err := service.ParseStepMode(opts.StepMode)
	if err != nil {
		return nil, err
	}

	configs, err := config.NewManager(opts.LevelsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create level manager: %w", err)
	}

	persistence, err := session.NewFilePersistence(opts.SessionsDir, configs)
	if err != nil {
		return nil, fmt.Errorf("failed to create session persistence: %w", err)
	}

	sessions := session.NewManagerWithPersistence(persistence)
	if err := sessions.LoadPersistedSessions(); err != nil {
		zap.L().Warn("failed to load persisted sessions", zap.Error(err))
	}

	hub := websocket.NewHub()
	go hub.Run(ctx)

	go func() {
		if err := configs.Watch(ctx); err != nil {
			zap.L().Warn("level watcher stopped", zap.Error(err))
		}
	}()
	go func() {
		if err := sessions.Watch(ctx, persistence); err != nil {
			zap.L().Warn("session watcher stopped", zap.Error(err))
		}
	}()
	go sessions.StartCleanup(ctx, sessionMaxAge, sessionCleanupInterval)

	game := service.NewGameService(sessions, configs,
		service.WithStepMode(mode),
		service.WithNotifier(hub),
	)

	zap.L().Info("services ready",
		zap.String("levels_dir", opts.LevelsDir),
		zap.String("sessions_dir", opts.SessionsDir),
		zap.String("step_mode", string(mode)),
		zap.Int("sessions", sessions.Count()),
	)

	return &services{Game: game, Configs: configs, Sessions: sessions, Hub: hub}, nil
}

// mcpHandler serves MCP JSON-RPC messages over plain HTTP POST
func mcpHandler(mcpClient *mcp.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	}
}

// newHandler builds the full HTTP handler: REST API, websocket and /mcp
func newHandler(svcs *services, baseURL string) http.Handler {
	apiServer := api.NewServer(svcs.Game, svcs.Hub)
	apiServer.Router().HandleFunc("/mcp", mcpHandler(mcp.NewClient(baseURL))).Methods("POST")
	return apiServer
}

// runServer starts the HTTP server and, when enabled, an ngrok tunnel in
// front of it. It returns after a signal and a graceful shutdown.
func runServer(ctx context.Context, cmd *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	zap.L().Info("starting", zap.String("app", AppName), zap.String("version", Version), zap.String("mode", "server"))

	svcs, err := initializeServices(ctx, optionsFrom(cmd))
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer svcs.Game.Close()

	addr := net.JoinHostPort(cmd.String("host"), cmd.String("port"))
	handler := newHandler(svcs, "http://"+addr)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup
	serveErr := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		zap.L().Info("HTTP server listening",
			zap.String("api", "http://"+addr+"/api"),
			zap.String("websocket", "ws://"+addr+"/ws?session=<session_id>"),
			zap.String("mcp", "http://"+addr+"/mcp"),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	if cmd.Bool("ngrok") {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrok(ctx, cmd.String("ngrok-auth"), cmd.String("ngrok-domain"), handler)
		}()
	}

	select {
	case <-ctx.Done():
		zap.L().Info("shutting down")
	case err = <-serveErr:
		zap.L().Error("HTTP server failed", zap.Error(err))
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zap.L().Warn("HTTP server shutdown error", zap.Error(err))
	}

	wg.Wait()
	// no realtime step may land while sessions are written
	svcs.Game.Close()
	if err := svcs.Sessions.SaveAllSessions(); err != nil {
		zap.L().Warn("failed to save sessions on shutdown", zap.Error(err))
	}
	zap.L().Info("server stopped")
	return err
}

// runNgrok serves handler through an ngrok tunnel until ctx is done
func runNgrok(ctx context.Context, authToken, domain string, handler http.Handler) {
	if authToken == "" {
		zap.L().Warn("ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN or NGROK_AUTH_TOKEN)")
		return
	}

	var tunnel ngrokConfig.Tunnel
	if domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		zap.L().Error("failed to start ngrok tunnel", zap.Error(err))
		return
	}

	url := tun.URL()
	zap.L().Info("ngrok tunnel established",
		zap.String("api", url+"/api"),
		zap.String("websocket", url+"/ws?session=<session_id>"),
		zap.String("mcp", url+"/mcp"),
	)

	srv := &http.Server{Handler: handler}
	go func() {
		<-ctx.Done()
		srv.Close()
	}()
	if err := srv.Serve(tun); err != nil && !errors.Is(err, http.ErrServerClosed) {
		zap.L().Warn("ngrok server error", zap.Error(err))
	}
	zap.L().Info("ngrok tunnel closed")
}

// probeAPI reports whether a catmaze API answers at baseURL
func probeAPI(ctx context.Context, baseURL string) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/api", nil)
	if err != nil {
		return false
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode < http.StatusInternalServerError
}

// startInternalServer serves the API on a random loopback port and returns
// its base URL. The server stops when ctx is done.
func startInternalServer(ctx context.Context, opts serverOptions) (string, error) {
	svcs, err := initializeServices(ctx, opts)
	if err != nil {
		return "", err
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", fmt.Errorf("failed to get available port: %w", err)
	}
	baseURL := "http://" + listener.Addr().String()

	httpServer := &http.Server{Handler: newHandler(svcs, baseURL)}
	go func() {
		<-ctx.Done()
		httpServer.Close()
		svcs.Game.Close()
	}()
	go func() {
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Error("internal HTTP server error", zap.Error(err))
		}
	}()

	return baseURL, nil
}

// runStdioMCP runs an MCP stdio server. It reuses an API already listening
// on --host/--port, otherwise it starts an internal one on a random port.
func runStdioMCP(ctx context.Context, cmd *cli.Command) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	baseURL := "http://" + net.JoinHostPort(cmd.String("host"), cmd.String("port"))
	if probeAPI(ctx, baseURL) {
		zap.L().Info("using external API server for MCP", zap.String("url", baseURL))
	} else {
		internal, err := startInternalServer(ctx, optionsFrom(cmd))
		if err != nil {
			return fmt.Errorf("failed to start internal server: %w", err)
		}
		zap.L().Info("using internal API server for MCP", zap.String("url", internal))
		baseURL = internal
	}

	return server.ServeStdio(mcp.NewClient(baseURL).GetMCPServer())
}
