package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	kingpin "gopkg.in/alecthomas/kingpin.v2"
)

const shutdownTimeout = 10 * time.Second

var (
	version = "dev"

	errNotLocated = errors.New("some domains were not located")

	app = kingpin.New(
		"servergeo",
		"Find out where servers of the domain are physically located")

	debug = app.Flag("debug", "Run in debug mode.").
		Short('d').
		Envar("SERVERGEO_DEBUG").
		Bool()

	serveCommand = app.Command("serve", "Run HTTP server.")
	serveConfig  = serveCommand.Arg("config-path", "Path to the config.").
			Required().
			String()

	locateCommand = app.Command("locate", "Locate given domains and print JSON.")
	locateConfig  = locateCommand.Flag("config", "Path to the config.").
			Short('c').
			String()
	locatePolicy = locateCommand.Flag("policy", "Resolve policy.").
			Short('p').
			Enum("first-match", "exhaustive")
	locateDomains = locateCommand.Arg("domain", "Domains to locate.").
			Required().
			Strings()
)

func main() {
	app.Version(version)

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	ctx, cancel := makeRootContext()
	defer cancel()

	fs := afero.NewOsFs()

	var err error

	switch command {
	case serveCommand.FullCommand():
		err = runServe(ctx, fs, *serveConfig)
	case locateCommand.FullCommand():
		err = runLocate(ctx, fs, *locateConfig, *locatePolicy, *locateDomains, os.Stdout)
	}

	if err != nil {
		cancel()
		log.Fatal().Err(err).Msg("")
	}
}

func runServe(ctx context.Context, fs afero.Fs, configPath string) error {
	conf, err := parseConfig(fs, configPath)
	if err != nil {
		return fmt.Errorf("cannot read config: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	locator, shutdown, err := makeLocator(conf, os.Stderr, registry)
	if err != nil {
		return err
	}

	defer shutdown()

	srv := makeServer(conf, makeRouter(conf, locator, registry))

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		srv.Shutdown(shutdownCtx) // nolint: errcheck
	}()

	log.Info().Str("listen", conf.GetListen()).Str("policy", string(conf.GetResolvePolicy())).Msg("Start server")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server has failed: %w", err)
	}

	return nil
}

func runLocate(ctx context.Context,
	fs afero.Fs,
	configPath, policy string,
	domains []string,
	out io.Writer) error {
	conf := &config{}

	if configPath != "" {
		parsed, err := parseConfig(fs, configPath)
		if err != nil {
			return fmt.Errorf("cannot read config: %w", err)
		}

		conf = parsed
	}

	if policy != "" {
		conf.ResolvePolicy = policy
	}

	locator, shutdown, err := makeLocator(conf, os.Stderr, prometheus.NewRegistry())
	if err != nil {
		return err
	}

	defer shutdown()

	results, err := locator.LocateAll(ctx, domains)
	if err != nil {
		return fmt.Errorf("cannot locate domains: %w", err)
	}

	encoder := json.NewEncoder(out)

	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(results); err != nil {
		return fmt.Errorf("cannot encode results: %w", err)
	}

	for i := range results {
		if !results[i].OK() {
			return errNotLocated
		}
	}

	return nil
}
