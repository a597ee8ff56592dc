package main

import (
	"flag"
	"log/slog"
	"net/http"
	"os"

	"record_syncer/internal/mockapi"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:8000", "listen address")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	server := mockapi.New(mockapi.Config{
		SeedCount:      25,
		FailPage:       2,
		RateLimitEvery: 5,
		RetryAfter:     "1",
	})

	logger.Info("mock api listening", "addr", *addr)
	if err := http.ListenAndServe(*addr, server.Handler()); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
