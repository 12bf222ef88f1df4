package main

import (
	"flag"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"strings"

	"github.com/AutoMercado/AutoMercado/internal/common/config"
	"github.com/AutoMercado/AutoMercado/internal/common/discovery"
	"github.com/AutoMercado/AutoMercado/internal/common/logger"
	"github.com/AutoMercado/AutoMercado/internal/common/middleware"
	"github.com/AutoMercado/AutoMercado/internal/common/server"
	"github.com/AutoMercado/AutoMercado/internal/common/tracing"
	"github.com/gin-gonic/gin"
	"github.com/hashicorp/consul/api"
	"github.com/sirupsen/logrus"
)

// The gateway is the single public entry point. It strips the /api prefix
// and forwards to whichever backend owns the path, resolving instances
// through Consul and falling back to the configured static addresses.
func main() {
	configPath := flag.String("config", "configs/api-gateway.json", "path to config file")
	consulHost := flag.String("consul-host", "localhost", "consul host for KV config")
	consulPort := flag.Int("consul-port", 8500, "consul port for KV config")
	consulKey := flag.String("consul-kv", "", "consul KV key holding the config (overrides -config)")
	flag.Parse()

	var (
		cfg *config.Config
		err error
	)
	if *consulKey != "" {
		cfg, err = config.LoadConfigFromConsulKV(*consulHost, *consulPort, *consulKey)
	} else {
		cfg, err = config.LoadConfig(*configPath)
	}
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}

	log, err := logger.NewLogger(cfg.Log.Backend, cfg.Log.Level, cfg.Log.Format, cfg.Log.Output, cfg.Log.Path)
	if err != nil {
		logrus.Fatalf("failed to init logger: %v", err)
	}

	_, closer, err := tracing.InitTracer(cfg.Server.Name, cfg.Jaeger.Endpoint, cfg.Jaeger.Sampler)
	if err != nil {
		log.Warnf("failed to init tracer: %v", err)
	} else {
		defer closer.Close()
	}

	consulClient, err := discovery.NewConsulClient(cfg.Consul.Host, cfg.Consul.Port)
	if err != nil {
		log.Warnf("failed to connect to Consul, using static addresses: %v", err)
		consulClient = nil
	}

	routes := []struct {
		prefix   string // under /api
		service  string // Consul service name
		fallback string
	}{
		{"/auth", "auth-service", cfg.Clients.AuthServiceURL},
		{"/vehicles", "vehicle-service", cfg.Clients.VehicleServiceURL},
		{"/orders", "order-service", cfg.Clients.OrderServiceURL},
	}

	apiLimiter := middleware.NewTokenBucket(cfg.RateLimit.Capacity, cfg.RateLimit.RefillRate)

	err = server.Run(cfg, log, func(r *gin.Engine) error {
		g := r.Group("/api")
		g.Use(server.RateLimit(apiLimiter))
		for _, route := range routes {
			g.Any(route.prefix, proxyTo(consulClient, route.service, route.fallback, log))
			g.Any(route.prefix+"/*path", proxyTo(consulClient, route.service, route.fallback, log))
		}
		return nil
	})
	if err != nil {
		log.Errorf("server exited with error: %v", err)
		os.Exit(1)
	}
}

// proxyTo builds a reverse-proxy handler for one backend. The target is
// resolved per request so instances can come and go under Consul.
func proxyTo(consulClient *api.Client, service, fallback string, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		base := fallback
		if consulClient != nil {
			if resolved, err := discovery.ResolveService(consulClient, service); err == nil {
				base = resolved
			} else {
				log.Warnf("consul lookup for %s failed, using fallback: %v", service, err)
			}
		}

		target, err := url.Parse(base)
		if err != nil {
			log.Errorf("bad backend address for %s: %v", service, err)
			c.AbortWithStatus(http.StatusBadGateway)
			return
		}

		proxy := httputil.NewSingleHostReverseProxy(target)
		proxy.Director = func(req *http.Request) {
			req.URL.Scheme = target.Scheme
			req.URL.Host = target.Host
			req.URL.Path = strings.TrimPrefix(c.Request.URL.Path, "/api")
			req.Host = target.Host
		}
		proxy.ServeHTTP(c.Writer, c.Request)
	}
}
