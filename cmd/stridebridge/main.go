package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
)

const version = "1.0.0"

func printVersion() {
	fmt.Printf("stridebridge v%s\n", version)
	fmt.Println("Treadmill speed preview daemon for avatar movement control")
}

func printUsage() {
	printVersion()
	fmt.Println()
	fmt.Println("USAGE:")
	fmt.Println("  stridebridge [OPTIONS]")
	fmt.Println()
	fmt.Println("DESCRIPTION:")
	fmt.Println("  Daemon that smooths a treadmill target speed and composes it with")
	fmt.Println("  user modifiers (multiplier, override presets, hold-to-nudge) into a")
	fmt.Println("  normalized avatar movement speed. State changes are published over a")
	fmt.Println("  WebSocket feed and optionally pushed to an avatar controller.")
	fmt.Println()
	fmt.Println("OPTIONS:")
	fmt.Println("  -config string")
	fmt.Println("        Path to YAML config file (flags override file values)")
	fmt.Println()
	fmt.Println("  -input-device string")
	fmt.Println("        Linux input event device for physical controls (enables input)")
	fmt.Println()
	fmt.Println("  -update-hz int")
	fmt.Printf("        Engine tick frequency in Hz (default %d)\n", defaultUpdateHz)
	fmt.Println()
	fmt.Println("  -bridge-enabled")
	fmt.Println("        Push composed speeds to the avatar controller")
	fmt.Println()
	fmt.Println("  -bridge-ws-url string")
	fmt.Println("        Avatar controller websocket URL (default \"ws://127.0.0.1:7733\")")
	fmt.Println()
	fmt.Println("  -bridge-timeout-ms int")
	fmt.Printf("        Timeout for bridge websocket responses in ms (default %d)\n", defaultReadTimeoutMS)
	fmt.Println()
	fmt.Println("  -ipc-socket string")
	fmt.Println("        Unix domain socket path for IPC (default \"/tmp/stridebridge.sock\")")
	fmt.Println()
	fmt.Println("  -state-addr string")
	fmt.Println("        State feed HTTP listen address (default \"127.0.0.1:7780\")")
	fmt.Println()
	fmt.Println("  -state-path string")
	fmt.Println("        State feed WebSocket path (default \"/ws/state\")")
	fmt.Println()
	fmt.Println("  -log-level string")
	fmt.Println("        Log level: error, warn, info, debug (default \"info\")")
	fmt.Println()
	fmt.Println("  -version")
	fmt.Println("        Print version and exit")
	fmt.Println()
	fmt.Println("  -help")
	fmt.Println("        Print this help message")
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  # Preview-only daemon with the state feed on the default port")
	fmt.Println("  stridebridge")
	fmt.Println()
	fmt.Println("  # Push speeds to an avatar controller")
	fmt.Println("  stridebridge -bridge-enabled -bridge-ws-url ws://192.168.1.50:7733")
	fmt.Println()
	fmt.Println("  # Physical controls from a keypad device")
	fmt.Println("  stridebridge -input-device /dev/input/event4")
	fmt.Println()
	fmt.Println("NOTES:")
	fmt.Println("  - Input devices require read access (run as root or add user to 'input' group)")
	fmt.Println("  - Control the daemon with stridectl; watch the state feed with speedwatch")
	fmt.Println()
}

func main() {
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" {
			printVersion()
			return
		}
		if arg == "-help" || arg == "--help" || arg == "-h" {
			printUsage()
			return
		}
	}

	var (
		configPath      = flag.String("config", "", "Path to YAML config file")
		inputDevice     = flag.String("input-device", "", "Linux input event device for physical controls")
		updateHz        = flag.Int("update-hz", defaultUpdateHz, "Engine tick frequency in Hz")
		bridgeEnabled   = flag.Bool("bridge-enabled", false, "Push composed speeds to the avatar controller")
		bridgeWsURL     = flag.String("bridge-ws-url", "ws://127.0.0.1:7733", "Avatar controller websocket URL")
		bridgeTimeoutMS = flag.Int("bridge-timeout-ms", defaultReadTimeoutMS, "Timeout in milliseconds for bridge websocket responses")
		ipcSocketPath   = flag.String("ipc-socket", "/tmp/stridebridge.sock", "Unix domain socket path for IPC")
		stateAddr       = flag.String("state-addr", "127.0.0.1:7780", "State feed HTTP listen address")
		statePath       = flag.String("state-path", "/ws/state", "State feed WebSocket path")
		logLevelStr     = flag.String("log-level", "info", "Log level: error, warn, info, debug")
		showVersion     = flag.Bool("version", false, "Print version and exit")
		showHelp        = flag.Bool("help", false, "Print help message")
	)

	flag.Usage = printUsage
	flag.Parse()

	if *showHelp {
		printUsage()
		return
	}
	if *showVersion {
		printVersion()
		return
	}

	// Load config: defaults, then file, then explicitly-set flags on top.
	cfg := DefaultConfig()
	if *configPath != "" {
		loaded, err := LoadConfigFile(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	var overrides FlagOverrides
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "input-device":
			overrides.InputDevice = inputDevice
		case "update-hz":
			overrides.UpdateHz = updateHz
		case "bridge-enabled":
			overrides.BridgeEnabled = bridgeEnabled
		case "bridge-ws-url":
			overrides.BridgeWsURL = bridgeWsURL
		case "bridge-timeout-ms":
			overrides.BridgeTimeoutMS = bridgeTimeoutMS
		case "ipc-socket":
			overrides.IPCSocketPath = ipcSocketPath
		case "state-addr":
			overrides.StateAddr = stateAddr
		case "state-path":
			overrides.StatePath = statePath
		case "log-level":
			overrides.LogLevel = logLevelStr
		}
	})
	overrides.Apply(&cfg)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	logLevel, err := parseLogLevel(cfg.Logging.Level)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	logger := setupLogger(logLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Avatar bridge client (optional).
	var client AvatarClientInterface
	if cfg.Bridge.Enabled {
		c, err := NewAvatarClient(cfg.Bridge.WsURL, logger, cfg.Bridge.TimeoutMS)
		if err != nil {
			logger.Error("failed to connect to avatar controller", "error", err)
			os.Exit(1)
		}
		defer c.Close()
		client = c
	}

	// Central event bus and broadcast feed.
	events := make(chan Event, 64)
	broadcasts := make(chan StateBroadcast, 128)

	state := &DaemonState{Pace: defaultPaceState()}

	// State feed server components.
	server := NewServer(logger, events, ServerConfig{})
	mux := http.NewServeMux()
	server.Register(mux, cfg.State.Path)
	httpSrv := &http.Server{
		Addr:    cfg.State.Addr,
		Handler: mux,
	}

	logger.Debug("starting stridebridge", "version", version)
	logger.Info("listening",
		"ipc", cfg.IPC.SocketPath,
		"state_addr", cfg.State.Addr,
		"state_path", cfg.State.Path,
		"update_hz", cfg.Engine.UpdateHz,
		"bridge_enabled", cfg.Bridge.Enabled,
		"input_enabled", cfg.Input.Enabled)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		runDaemon(gctx, events, client, cfg.ToEngineConfig(), state, cfg.Engine.UpdateHz, broadcasts, logger)
		return nil
	})

	g.Go(func() error {
		return runIPCServer(gctx, cfg.IPC.SocketPath, events, logger)
	})

	g.Go(func() error {
		server.Hub().Run(gctx)
		return nil
	})

	g.Go(func() error {
		RunBroadcaster(gctx, server.Hub(), broadcasts, logger)
		return nil
	})

	g.Go(func() error {
		errCh := make(chan error, 1)
		go func() {
			errCh <- httpSrv.ListenAndServe()
		}()
		select {
		case <-gctx.Done():
			shutCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			_ = httpSrv.Shutdown(shutCtx)
			return nil
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		}
	})

	if cfg.Input.Enabled {
		g.Go(func() error {
			return runInputReader(gctx, cfg.Input.Devices, events, logger)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("daemon exited with error", "error", err)
		os.Exit(1)
	}

	logger.Info("shutting down")
}
