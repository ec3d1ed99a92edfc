package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/MimeLyc/term-catalog-merger/internal/cli"
	"github.com/MimeLyc/term-catalog-merger/internal/config"
	"github.com/MimeLyc/term-catalog-merger/internal/termmap"
	"github.com/MimeLyc/term-catalog-merger/pkg/log"
	"github.com/joho/godotenv"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	// .env is optional
	_ = godotenv.Load()

	settings, err := config.OpenRuntimeSettingsStore(config.RuntimeSettingsFilePath())
	if err != nil {
		fmt.Fprintf(stderr, "Ignoring settings: %v\n", err)
		settings = nil
	}

	var opts []config.Option
	if settings != nil {
		current, _ := settings.GetRuntimeSettings()
		opts = append(opts, config.WithRuntimeSettings(current))
	}

	cfg, err := config.NewFromEnv(opts...)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load configuration: %v\n", err)
		return 2
	}

	level := log.ParseLevel(cfg.System.LogLevel)
	if cfg.System.LogFile != "" {
		fileLogger, err := log.NewFileLogger(cfg.System.LogFile, level)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to open log file: %v\n", err)
			return 2
		}
		defer fileLogger.Close()
		log.SetLogger(fileLogger.Logger)
	} else {
		l := log.NewLoggerTo(stderr, level)
		log.SetLogger(l)
	}

	dict, err := loadDictionary(cfg.UI.LanguageFile)
	if err != nil {
		log.Error("Failed to load dictionary: %v", err)
		return 2
	}

	app := cli.NewApp(cfg, dict, settings)
	root := cli.NewRootCommand(app)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		if !cli.Reported(err) {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

// loadDictionary creates the configured dictionary file when missing. Without
// one, a translations.xml next to the working directory or the built-in
// dictionary is used.
func loadDictionary(path string) (*termmap.Dictionary, error) {
	if path != "" {
		created, err := termmap.EnsureFile(path)
		if err != nil {
			return nil, err
		}
		if created {
			log.Info("Created dictionary %s", path)
		}
		return termmap.LoadDictionary(path)
	}

	if wd, err := os.Getwd(); err == nil {
		if found := termmap.FindInAncestors(wd); found != "" {
			log.Debug("Using dictionary %s", found)
			return termmap.LoadDictionary(found)
		}
	}
	return termmap.LoadDictionary("")
}
