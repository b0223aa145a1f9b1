package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"uc/bridge"
	"uc/client"
	"uc/common"
	"uc/common/types"
	"uc/config"
	"uc/console"
	"uc/metrics"
	"uc/transport"
)

var (
	configPath  = flag.String("config", "", "path to a JSON config file")
	addr        = flag.String("addr", "", "controller server address, overrides the config")
	port        = flag.Int("port", 0, "controller server port, overrides the config")
	name        = flag.String("name", "", "player name, registers on connect when set")
	kind        = flag.String("transport", "", "tcp or ws, overrides the config")
	noConsole   = flag.Bool("no-console", false, "run without the interactive console")
	logLevel    = flag.String("log-level", "", "log level, overrides the config")
	exitTimeout = 5 * time.Second
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	applyFlags(&cfg)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	closer, err := common.InitLogger(cfg.Log.Level, cfg.Log.File, cfg.Log.MaxSizeMB, cfg.Log.MaxBackups, cfg.Log.MaxAgeDays)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer closer.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	factory, err := transport.NewFactory(cfg.Server.Transport, transport.Options{
		WriteTimeout: cfg.Server.WriteTimeout(),
		WSPath:       cfg.Server.WSPath,
	})
	if err != nil {
		log.Fatalf("transport: %v", err)
	}

	ctl := client.New(client.Config{
		BufferSize: cfg.Server.BufferSize,
		Transport:  factory,
		Metrics:    metrics.NewCollector(reg),
	})

	var con *console.Console
	if !*noConsole {
		con = console.New(ctl, os.Stdout)
	}
	ctl.SetListener(func(event types.Event) {
		entry := log.WithFields(log.Fields{"event": event.Kind.String(), "player": event.PlayerID})
		if event.Err != nil {
			entry.WithError(event.Err).Warn("session event")
		} else {
			entry.Info("session event")
		}
		if con != nil {
			con.Notify(event)
		}
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if cfg.Server.AutoConnect {
		connectCtx, connectCancel := context.WithTimeout(ctx, 10*time.Second)
		err := ctl.Connect(connectCtx, cfg.Server.Addr, cfg.Server.Port)
		connectCancel()
		if err != nil {
			log.Errorf("connect %s:%d: %v", cfg.Server.Addr, cfg.Server.Port, err)
		} else if cfg.Player.AutoRegister {
			if err := ctl.Register(cfg.Player.Name); err != nil {
				log.Errorf("register %s: %v", cfg.Player.Name, err)
			}
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	var b *bridge.Bridge
	if cfg.Bridge.Enabled {
		b = bridge.NewBridge(ctl, cfg.Bridge.Addr, bridge.Options{
			Rate:     cfg.Bridge.Rate,
			Burst:    cfg.Bridge.Burst,
			Gatherer: reg,
		})
		g.Go(b.Serve)
	}

	if con != nil {
		lr := console.NewLineReader()
		// not part of the group: a plain stdin read cannot be interrupted
		go common.WithRecover(func() {
			if err := con.Run(gctx, lr); err != nil {
				log.Errorf("console: %v", err)
			}
			lr.Close()
			cancel()
		}, "console")
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Info("received signal to exit")
		ctl.Disconnect()
		if b != nil {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), exitTimeout)
			defer shutdownCancel()
			return b.Shutdown(shutdownCtx)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Errorf("exit: %v", err)
		closer.Close()
		os.Exit(1)
	}
}

func applyFlags(cfg *config.Config) {
	if *addr != "" {
		cfg.Server.Addr = *addr
		cfg.Server.AutoConnect = true
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *kind != "" {
		cfg.Server.Transport = *kind
	}
	if *name != "" {
		cfg.Player.Name = *name
		cfg.Player.AutoRegister = true
		cfg.Server.AutoConnect = true
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
}
