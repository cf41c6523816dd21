package main

import (
	"flag"
	"log"
	"net/http"
	"time"

	"gost28147/internal/config"
	"gost28147/internal/server"
)

func main() {
	configFile := flag.String("config", "", "Path to config.json file")
	envFile := flag.String("env", ".env", "Path to .env file (missing file is ignored)")
	listen := flag.String("listen", "", "Listen address (default: :3001)")
	maxBody := flag.Int64("max-body", 16<<20, "Largest accepted request body in bytes")
	flag.Parse()

	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			log.Fatalf("Main: unable to load config: %v\n", err)
		}
	}
	if err := cfg.LoadEnv(*envFile); err != nil {
		log.Fatalf("Main: unable to load .env: %v\n", err)
	}
	cfg.Resolve(config.Flags{Listen: *listen})

	c, err := cfg.NewCipher()
	if err != nil {
		log.Fatalf("Main: unable to create cipher: %v\n", err)
	}

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           server.New(c, server.Options{MaxBody: *maxBody, LogRequest: true}).Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Printf("Main: listening on %s", cfg.Listen)
	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("Main: %v\n", err)
	}
}
