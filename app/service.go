package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kilianp07/taxifare/api/fare"
	"github.com/kilianp07/taxifare/config"
	"github.com/kilianp07/taxifare/core/events"
	coremetrics "github.com/kilianp07/taxifare/core/metrics"
	coremon "github.com/kilianp07/taxifare/core/monitoring"
	"github.com/kilianp07/taxifare/core/prediction"
	"github.com/kilianp07/taxifare/core/predictionlog"
	"github.com/kilianp07/taxifare/core/session"
	"github.com/kilianp07/taxifare/infra/logger"
	"github.com/kilianp07/taxifare/infra/metrics"
	"github.com/kilianp07/taxifare/infra/monitoring"
	"github.com/kilianp07/taxifare/infra/mqtt"
	"github.com/kilianp07/taxifare/infra/sessionstore"
	"github.com/kilianp07/taxifare/internal/eventbus"
)

const shutdownTimeout = 5 * time.Second

// Service wires the fare sessions to the HTTP API and the event consumers.
type Service struct {
	Handle  *prediction.Handle
	Manager *session.Manager

	cfg    *config.Config
	bus    eventbus.EventBus
	sink   coremetrics.MetricsSink
	logs   predictionlog.LogStore
	pub    *mqtt.FarePublisher
	mux    *http.ServeMux
	server *http.Server
	log    logger.Logger
}

// New creates a Service from the configuration. A missing model artifact is
// not an error: the service starts with the model unavailable.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	coremon.Init(mon)

	handle, err := prediction.LoadHandle(cfg.Model.Path)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	art := handle.Artifact()
	coremon.SetDefaultTags(map[string]string{
		"service":       "taxifare",
		"model_state":   handle.State().String(),
		"model_type":    art.Type,
		"model_version": art.Version,
	})
	if !handle.Available() {
		logg.Warnf("model unavailable: %v", handle.Err())
	} else {
		logg.Infof("model %s version %q loaded from %s", art.Type, art.Version, handle.Path())
	}

	store, err := newSessionStore(cfg.Session)
	if err != nil {
		return nil, err
	}

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("metrics sink: %w", err)
	}

	logs, err := predictionlog.Open(predictionlog.Options{
		Backend:    cfg.PredictionLog.Backend,
		Path:       cfg.PredictionLog.Path,
		MaxSizeMB:  cfg.PredictionLog.MaxSizeMB,
		MaxBackups: cfg.PredictionLog.MaxBackups,
		MaxAgeDays: cfg.PredictionLog.MaxAgeDays,
	})
	if err != nil {
		_ = store.Close()
		closeSink(sink)
		return nil, fmt.Errorf("prediction log: %w", err)
	}

	var pub *mqtt.FarePublisher
	if cfg.MQTT.Enabled() {
		pub, err = mqtt.NewFarePublisher(cfg.MQTT)
		if err != nil {
			_ = store.Close()
			closeSink(sink)
			if logs != nil {
				_ = logs.Close()
			}
			return nil, fmt.Errorf("mqtt publisher: %w", err)
		}
	}

	bus := eventbus.New()
	mgr := session.NewManager(handle, store,
		session.WithBus(bus),
		session.WithLogger(logger.New("session")),
	)

	mux := http.NewServeMux()
	fare.Register(mux, mgr, logs, cfg.HTTP.LogToken)

	return &Service{
		Handle:  handle,
		Manager: mgr,
		cfg:     cfg,
		bus:     bus,
		sink:    sink,
		logs:    logs,
		pub:     pub,
		mux:     mux,
		log:     logg,
		server: &http.Server{
			Addr:         cfg.HTTP.Addr,
			Handler:      mux,
			ReadTimeout:  cfg.HTTP.ReadTimeout(),
			WriteTimeout: cfg.HTTP.WriteTimeout(),
		},
	}, nil
}

func newSessionStore(cfg config.SessionConfig) (session.Store, error) {
	if cfg.Backend != "redis" {
		return session.NewMemoryStore(), nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	store, err := sessionstore.Dial(ctx, &redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, cfg.KeyPrefix, cfg.TTL())
	if err != nil {
		return nil, fmt.Errorf("session store: %w", err)
	}
	return store, nil
}

// Handler exposes the API routes.
func (s *Service) Handler() http.Handler { return s.mux }

// Start subscribes the event consumers and reports the model state. It
// returns once every consumer is subscribed.
func (s *Service) Start(ctx context.Context) {
	metrics.StartEventCollector(ctx, s.bus, s.sink, logger.New("metrics"))
	if s.logs != nil {
		predictionlog.StartRecorder(ctx, s.bus, s.logs, logger.New("prediction_log"))
	}
	if s.pub != nil {
		s.pub.Start(ctx, s.bus)
	}
	art := s.Handle.Artifact()
	s.bus.Publish(events.ModelLoadEvent{
		Path:    s.Handle.Path(),
		Type:    art.Type,
		Version: art.Version,
		State:   s.Handle.State().String(),
		Time:    time.Now(),
	})
}

// Run starts the service and blocks until the context is cancelled or the
// HTTP server fails.
func (s *Service) Run(ctx context.Context) error {
	defer coremon.Recover()
	s.Start(ctx)

	if s.cfg.Metrics.HasSink("prometheus") && s.cfg.Metrics.PrometheusPort != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("fare API listening on %s", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	}
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	var errs []error
	s.bus.Close()
	if s.pub != nil {
		s.pub.Disconnect()
	}
	if s.logs != nil {
		errs = append(errs, s.logs.Close())
	}
	closeSink(s.sink)
	errs = append(errs, s.Manager.Close())
	coremon.Flush(2 * time.Second)
	return errors.Join(errs...)
}

// closeSink releases sinks holding connections, such as the Influx client.
func closeSink(sink coremetrics.MetricsSink) {
	if c, ok := sink.(interface{ Close() }); ok {
		c.Close()
	}
}
