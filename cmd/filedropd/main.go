// Command filedropd is the process entrypoint: it reads the listening
// port from port.info (falling back to the default per spec §6),
// creates the users/ directory, and serves the protocol on a raw TCP
// listener. Metrics and the admin dashboard are optional extensions
// bound to their own HTTP listeners when enabled.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/duskbyte/filedrop/dashboard"
	"github.com/duskbyte/filedrop/internal/cmdutil"
	"github.com/duskbyte/filedrop/internal/defaults"
	"github.com/duskbyte/filedrop/internal/portconfig"
	"github.com/duskbyte/filedrop/internal/securefile"
	"github.com/duskbyte/filedrop/internal/version"
	"github.com/duskbyte/filedrop/observability"
	"github.com/duskbyte/filedrop/observability/prom"
	"github.com/duskbyte/filedrop/registry"
	"github.com/duskbyte/filedrop/server"
)

var (
	buildVersion = "dev"
	commit       = "unknown"
	date         = "unknown"
)

type ready struct {
	Version      string `json:"version"`
	Commit       string `json:"commit"`
	Date         string `json:"date"`
	Listen       string `json:"listen"`
	UsersDir     string `json:"users_dir"`
	MetricsURL   string `json:"metrics_url,omitempty"`
	DashboardURL string `json:"dashboard_url,omitempty"`
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout io.Writer, stderr io.Writer) int {
	host := cmdutil.EnvString("FILEDROP_HOST", "0.0.0.0")
	portInfo := cmdutil.EnvString("FILEDROP_PORT_INFO", "port.info")
	usersDir := cmdutil.EnvString("FILEDROP_USERS_DIR", "users")
	metricsListen := cmdutil.EnvString("FILEDROP_METRICS_LISTEN", "")
	dashboardListen := cmdutil.EnvString("FILEDROP_DASHBOARD_LISTEN", "")
	allowedOrigins := cmdutil.SplitCSVEnv("FILEDROP_DASHBOARD_ALLOW_ORIGIN")

	allowNoOrigin, err := cmdutil.EnvBool("FILEDROP_DASHBOARD_ALLOW_NO_ORIGIN", false)
	if err != nil {
		fmt.Fprintf(stderr, "invalid FILEDROP_DASHBOARD_ALLOW_NO_ORIGIN: %v\n", err)
		return 2
	}
	readTimeout, err := cmdutil.EnvDuration("FILEDROP_READ_TIMEOUT", defaults.ReadTimeout)
	if err != nil {
		fmt.Fprintf(stderr, "invalid FILEDROP_READ_TIMEOUT: %v\n", err)
		return 2
	}

	showVersion := false
	fs := flag.NewFlagSet("filedropd", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVar(&showVersion, "version", false, "print version and exit")
	fs.StringVar(&host, "host", host, "listen host (env: FILEDROP_HOST)")
	fs.StringVar(&portInfo, "port-info", portInfo, "path to the port.info file (env: FILEDROP_PORT_INFO)")
	fs.StringVar(&usersDir, "users-dir", usersDir, "per-user upload directory root (env: FILEDROP_USERS_DIR)")
	fs.StringVar(&metricsListen, "metrics-listen", metricsListen, "listen address for /metrics (empty disables) (env: FILEDROP_METRICS_LISTEN)")
	fs.StringVar(&dashboardListen, "dashboard-listen", dashboardListen, "listen address for the admin websocket feed (empty disables) (env: FILEDROP_DASHBOARD_LISTEN)")
	fs.DurationVar(&readTimeout, "read-timeout", readTimeout, "per-read deadline extension, 0 disables (env: FILEDROP_READ_TIMEOUT)")
	fs.BoolVar(&allowNoOrigin, "dashboard-allow-no-origin", allowNoOrigin, "allow dashboard clients without an Origin header (env: FILEDROP_DASHBOARD_ALLOW_NO_ORIGIN)")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if showVersion {
		_, _ = fmt.Fprintln(stdout, version.String(buildVersion, commit, date))
		return 0
	}

	logger := log.New(stderr, "", log.LstdFlags)

	if err := securefile.MkdirAllOwnerOnly(usersDir); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	port := portconfig.Read(portInfo)
	reg := registry.New(usersDir)

	var observers []observability.Observer
	var dashHub *dashboard.Hub
	var metricsLn net.Listener
	var metricsSrv *http.Server
	var dashboardLn net.Listener
	var dashboardSrv *http.Server

	if metricsListen != "" {
		promReg := prom.NewRegistry()
		observers = append(observers, prom.NewObserver(promReg))

		mux := http.NewServeMux()
		mux.Handle("/metrics", prom.Handler(promReg))
		metricsLn, err = net.Listen("tcp", metricsListen)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		metricsSrv = &http.Server{Handler: mux}
		go func() {
			if err := metricsSrv.Serve(metricsLn); err != nil && err != http.ErrServerClosed {
				logger.Printf("metrics server: %v", err)
			}
		}()
	}

	if dashboardListen != "" {
		dashHub = dashboard.NewHub()
		dashHub.AllowedOrigins = allowedOrigins
		dashHub.AllowNoOrigin = allowNoOrigin
		observers = append(observers, dashHub)

		mux := http.NewServeMux()
		mux.Handle("/", dashHub)
		dashboardLn, err = net.Listen("tcp", dashboardListen)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		dashboardSrv = &http.Server{Handler: mux}
		go func() {
			if err := dashboardSrv.Serve(dashboardLn); err != nil && err != http.ErrServerClosed {
				logger.Printf("dashboard server: %v", err)
			}
		}()
	}

	cfg := server.DefaultConfig()
	cfg.Logger = logger
	cfg.ReadTimeout = readTimeout
	if len(observers) > 0 {
		cfg.Observer = observability.Multi(observers...)
	}

	srv := server.New(reg, cfg)

	ln, err := net.Listen("tcp", net.JoinHostPort(host, fmt.Sprint(port)))
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	out := ready{
		Version:  buildVersion,
		Commit:   commit,
		Date:     date,
		Listen:   ln.Addr().String(),
		UsersDir: abs(usersDir),
	}
	if metricsLn != nil {
		out.MetricsURL = "http://" + metricsLn.Addr().String() + "/metrics"
	}
	if dashboardLn != nil {
		out.DashboardURL = "ws://" + dashboardLn.Addr().String() + "/"
	}
	_ = json.NewEncoder(stdout).Encode(out)

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(ln) }()

	sig := make(chan os.Signal, 2)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		if err != nil {
			logger.Printf("serve: %v", err)
		}
	case <-sig:
		logger.Printf("shutting down")
	}

	srv.Close()
	_ = ln.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if metricsSrv != nil {
		_ = metricsSrv.Shutdown(ctx)
	}
	if dashboardSrv != nil {
		_ = dashboardSrv.Shutdown(ctx)
	}
	return 0
}

func abs(path string) string {
	a, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return a
}
