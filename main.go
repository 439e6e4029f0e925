package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"badam/server"
)

func main() {
	godotenv.Load()

	cfg := server.Config{
		Addr:         envOr("BADAM_ADDR", "127.0.0.1:62743"),
		WSAddr:       os.Getenv("BADAM_WS_ADDR"),
		Players:      2,
		TickInterval: 50 * time.Millisecond,
		ReadTimeout:  time.Second,
	}

	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "TCP bind address")
	flag.StringVar(&cfg.WSAddr, "ws-addr", cfg.WSAddr, "WebSocket gateway bind address (empty disables)")
	flag.IntVar(&cfg.Players, "players", cfg.Players, "number of players the game starts at")
	flag.DurationVar(&cfg.TickInterval, "tick", cfg.TickInterval, "broadcast tick interval")
	flag.DurationVar(&cfg.ReadTimeout, "read-timeout", cfg.ReadTimeout, "connection read timeout")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	log := logrus.New()
	if *debug || os.Getenv("BADAM_DEBUG") != "" {
		log.SetLevel(logrus.DebugLevel)
	}

	srv := server.New(cfg, log)
	if err := srv.Start(); err != nil {
		log.WithError(err).Fatal("server failed to start")
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-srv.Done():
	case sig := <-sigs:
		log.WithField("signal", sig.String()).Info("shutting down")
	}
	srv.Stop()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
