package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/iamvkosarev/persona-chat/config"
	"github.com/iamvkosarev/persona-chat/internal/app"
)

func main() {
	configPath := flag.String("config", "config.yml", "path to the yaml config, skipped when missing")
	flag.Usage = config.Usage("persona-chat, a character chat over any OpenAI-compatible API.\n\nFlags:\n  -config string\n\tpath to the yaml config\n")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = app.Run(ctx, cfg)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "persona-chat: %v\n", err)
		os.Exit(1)
	}
}
