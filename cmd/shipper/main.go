package main

import (
	"bufio"
	"context"
	"flag"
	"io"
	stdlog "log"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"logship/internal/engine/loganalytics"
	"logship/internal/pkg/logger"
	"logship/internal/platform/config"
)

func main() {
	configPath := flag.String("config", "configs/shipper.yaml", "path to shipper config")
	flag.Parse()

	cfg, err := config.LoadShipper(*configPath)
	if err != nil {
		stdlog.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.Logging)

	if cfg.LogType == "" {
		log.Fatal().Msg("log_type is required")
	}

	var opts []loganalytics.Option
	if cfg.Workspace.URLSuffix != "" {
		opts = append(opts, loganalytics.WithURLSuffix(cfg.Workspace.URLSuffix))
	}
	if cfg.Workspace.APIVersion != "" {
		opts = append(opts, loganalytics.WithAPIVersion(cfg.Workspace.APIVersion))
	}

	client, err := loganalytics.NewDefault(cfg.Workspace.ID, cfg.Workspace.Key, opts...)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build client")
	}
	defer client.Close()

	in := io.Reader(os.Stdin)
	if args := flag.Args(); len(args) > 0 {
		file, err := os.Open(args[0])
		if err != nil {
			log.Fatal().Err(err).Str("path", args[0]).Msg("Failed to open input file")
		}
		defer file.Close()
		in = file
	}

	log.Info().Str("url", client.URL()).Str("log_type", cfg.LogType).Msg("Shipping records")

	sent, failed := 0, 0
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		ctx := context.Background()
		var cancel context.CancelFunc
		if cfg.RequestTimeout > 0 {
			ctx, cancel = context.WithTimeout(ctx, cfg.RequestTimeout)
		}

		err := client.Send(ctx, line, cfg.LogType, cfg.TimestampField)
		if cancel != nil {
			cancel()
		}

		if err != nil {
			failed++
			log.Error().Err(err).Int("bytes", len(line)).Msg("Record failed")
			continue
		}
		sent++
		log.Debug().Int("bytes", len(line)).Msg("Record sent")
	}
	if err := scanner.Err(); err != nil {
		log.Fatal().Err(err).Msg("Failed reading input")
	}

	log.Info().Int("sent", sent).Int("failed", failed).Msg("Done")
	if failed > 0 {
		os.Exit(1)
	}
}
