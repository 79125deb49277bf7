package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/2beens/fitstats/internal/agent"
	"github.com/2beens/fitstats/internal/config"
	"github.com/2beens/fitstats/internal/detector"
	"github.com/2beens/fitstats/internal/indicator"
	"github.com/2beens/fitstats/internal/link"
	"github.com/2beens/fitstats/internal/logging"
	"github.com/2beens/fitstats/internal/reporter"
	"github.com/2beens/fitstats/internal/sensor"
	"github.com/2beens/fitstats/internal/telemetry/metrics"
	"github.com/2beens/fitstats/internal/telemetry/tracing"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	fmt.Println("starting agent ...")

	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path for the TOML config file")
	flag.Parse()

	log.Warnf("---->> running in [%s] environment", *env)

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		panic(err)
	}

	sentryDSN := os.Getenv("SENTRY_DSN")
	logging.Setup(logging.LoggerSetupParams{
		LogFileName:      cfg.LogsPath,
		LogToStdout:      cfg.LogToStdout,
		LogLevel:         cfg.LogLevel,
		LogFormatJSON:    false,
		Environment:      cfg.Environment,
		SentryEnabled:    cfg.SentryEnabled,
		SentryDSN:        sentryDSN,
		SentryServerName: "fitstats-agent",
	})

	apiKey := os.Getenv("FITSTATS_API_KEY")
	if apiKey == "" {
		log.Errorf("api key not set, use FITSTATS_API_KEY env var to set it")
	}

	honeycombEnabled := os.Getenv("HONEYCOMB_ENABLED") == "true"
	otelShutdown, err := tracing.HoneycombSetup(honeycombEnabled, "fitstats-agent")
	if err != nil {
		log.Fatalf("honeycomb setup: %s", err)
	}
	defer otelShutdown()

	metricsManager := metrics.NewManager("fitstats", "agent", prometheus.NewRegistry())

	var ind indicator.Indicator
	if cfg.Agent.LedPath != "" {
		ind = indicator.NewLEDIndicator(cfg.Agent.LedPath)
	} else {
		ind = indicator.NewLogIndicator()
	}

	linkMonitor := link.NewMonitor(link.NewMonitorParams{
		Prober: &link.TCPProber{
			Addr:    cfg.Agent.LinkProbeAddr,
			Timeout: 5 * time.Second,
		},
		MaxAttempts:   cfg.Agent.LinkMaxAttempts,
		RetryDelay:    cfg.Agent.LinkRetryDelay(),
		CheckInterval: cfg.Agent.LinkCheckInterval(),
		Indicator:     ind,
	})

	repDetector, err := detector.New(detector.Config{
		TriggerCm: cfg.Agent.TriggerCm,
		ReleaseCm: cfg.Agent.ReleaseCm,
		Debounce:  cfg.Agent.Debounce(),
	})
	if err != nil {
		log.Fatalf("new detector: %s", err)
	}

	sensorClient := sensor.NewClient(sensor.NewClientParams{
		Addr:        cfg.Agent.SensorAddr,
		MaxRangeCm:  cfg.Agent.SensorMaxCm,
		DialTimeout: 2 * time.Second,
		ReadTimeout: time.Second,
	})
	defer sensorClient.Close()

	repReporter := reporter.NewReporter(reporter.NewReporterParams{
		Endpoint: cfg.Agent.IncrementEndpoint,
		APIKey:   apiKey,
		HTTPClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		Link:    linkMonitor,
		Timeout: cfg.Agent.ReportTimeout(),
		Metrics: metricsManager,
	})

	a := agent.New(agent.NewAgentParams{
		Link:          linkMonitor,
		Sampler:       sensorClient,
		Detector:      repDetector,
		Reporter:      repReporter,
		Ind:           ind,
		Metrics:       metricsManager,
		PollInterval:  cfg.Agent.PollInterval(),
		AliveInterval: cfg.Agent.AliveInterval(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	chOsInterrupt := make(chan os.Signal, 1)
	signal.Notify(chOsInterrupt, os.Interrupt, syscall.SIGTERM)
	go func() {
		receivedSig := <-chOsInterrupt
		log.Warnf("signal [%s] received, stopping agent ...", receivedSig)
		cancel()
	}()

	a.Run(ctx)
	log.Warnln("agent stopped")
}
