package main

import (
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"uc/common"
	"uc/config"
	"uc/ucserver"
)

var (
	configPath = flag.String("config", "", "path to a JSON config file")
	listenAddr = flag.String("listen", "", "listen address, overrides the config")
	wsAddr     = flag.String("ws", "", "websocket listen address, overrides the config")
	capacity   = flag.Int("capacity", 0, "maximum registered players, overrides the config")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *listenAddr != "" {
		cfg.UCServer.Addr = *listenAddr
	}
	if *wsAddr != "" {
		cfg.UCServer.WSAddr = *wsAddr
	}
	if *capacity > 0 {
		cfg.UCServer.Capacity = *capacity
	}

	closer, err := common.InitLogger(cfg.Log.Level, cfg.Log.File, cfg.Log.MaxSizeMB, cfg.Log.MaxBackups, cfg.Log.MaxAgeDays)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer closer.Close()

	s := ucserver.New(cfg.UCServer.Capacity)
	if cfg.UCServer.WSAddr != "" {
		go serveWS(s, cfg.UCServer.WSAddr, cfg.UCServer.WSPath)
	}
	exited := make(chan struct{})
	go func() {
		gracefulExit(s)
		close(exited)
	}()

	err = s.ListenAndServe(cfg.UCServer.Addr)
	if err != ucserver.ErrServerClosed {
		log.Fatalf("ucserver: %v", err)
	}
	<-exited
}

func gracefulExit(s *ucserver.Server) {
	defer common.Recover("gracefulExit")
	exitSignal := make(chan os.Signal, 1)
	signal.Notify(exitSignal, syscall.SIGINT, syscall.SIGTERM)
	sig := <-exitSignal
	log.Infof("received %v", sig)
	s.Close()
}

func serveWS(s *ucserver.Server, addr, path string) {
	defer common.Recover("serveWS")
	m := mux.NewRouter()
	m.HandleFunc(path, s.HandleWS).Methods("GET")
	log.Infof("ws listening on %s%s", addr, path)
	if err := http.ListenAndServe(addr, m); err != nil {
		log.Errorf("ws: %v", err)
	}
}
