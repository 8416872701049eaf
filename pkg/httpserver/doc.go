// Package httpserver runs an http.Server together with the components it
// serves.
//
// Run starts every component registered with WithManaged, in order, then
// listens. It blocks until the context is cancelled, an interrupt or TERM
// signal arrives, or Shutdown is called. After the server has drained it
// stops the components in reverse order, bounded by the shutdown timeout.
// If a component fails to start, the ones already started are stopped and
// Run returns without listening.
//
// Construction uses New or NewFromConfig with Option helpers such as
// WithAddr, WithReadTimeout and WithLogger.
//
// HealthCheckHandler answers liveness checks when given no checks and
// readiness checks otherwise.
//
// # Usage
//
//	search, err := opensearch.NewManaged(ctx, &cfg)
//	if err != nil {
//		return err
//	}
//
//	r := chi.NewRouter()
//	r.Get("/healthz", httpserver.HealthCheckHandler(log))
//	r.Get("/readyz", httpserver.HealthCheckHandler(log, search.Healthcheck))
//
//	srv := httpserver.New(
//		httpserver.WithAddr(":8080"),
//		httpserver.WithShutdownTimeout(10*time.Second),
//		httpserver.WithManaged(search),
//	)
//	return srv.Run(ctx, r)
//
// # Errors
//
// Listen and component start failures are joined with ErrStart; shutdown
// and component stop failures with ErrShutdown. Use errors.Is to tell them
// apart.
package httpserver
