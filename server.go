package main

import (
	"net/http"
	"time"

	"github.com/9seconds/servergeo/geolib"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	serverReadHeaderTimeout = 10 * time.Second
	serverRequestTimeout    = 2 * time.Minute
)

func makeRouter(conf *config, locator *geolib.Locator, gatherer prometheus.Gatherer) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(serverRequestTimeout))

	if conf.BasicAuth.Enabled() {
		router.Use(basicAuth(conf.BasicAuth.User, conf.BasicAuth.Password))
	}

	router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	router.Handle("/*", locator)

	return router
}

func makeServer(conf *config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              conf.GetListen(),
		Handler:           handler,
		ReadHeaderTimeout: serverReadHeaderTimeout,
	}
}
