package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/trace"

	arbDomain "github.com/sanketagarwal/replay-fee-oracle/business/arbitrage/domain"
	feesDomain "github.com/sanketagarwal/replay-fee-oracle/business/fees/domain"
	"github.com/sanketagarwal/replay-fee-oracle/business/oracle/app"
	"github.com/sanketagarwal/replay-fee-oracle/internal/apperror"
	"github.com/sanketagarwal/replay-fee-oracle/internal/logger"
	"github.com/sanketagarwal/replay-fee-oracle/internal/metrics"
	"github.com/sanketagarwal/replay-fee-oracle/internal/monolith"
)

const maxBodyBytes = 1 << 20

func runServe(ctx context.Context, o *app.Oracle, mono monolith.Monolith, args []string) error {
	cfg := mono.Config()
	log := mono.Logger()

	fs := newFlagSet("serve")
	port := fs.Int("port", cfg.Server.Port, "API port")
	if err := fs.Parse(args); err != nil {
		return err
	}

	mono.Health().Start(ctx)
	defer mono.Health().Stop(context.Background())
	log.Info(ctx, "health server started", "port", cfg.Server.HealthPort)

	if cfg.Telemetry.Enabled {
		go func() {
			if err := metrics.ServePrometheusMetrics(ctx, metrics.WithPort(strconv.Itoa(cfg.Telemetry.PrometheusPort))); err != nil {
				log.Error(ctx, "metrics server stopped", "error", err)
			}
		}()
		log.Info(ctx, "prometheus metrics server started", "port", cfg.Telemetry.PrometheusPort)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", *port),
		Handler:           newServer(o, log).routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "api server listening", "port", *port, "version", version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("api server: %w", err)
	case <-ctx.Done():
	}

	log.Info(ctx, "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

type server struct {
	oracle *app.Oracle
	log    logger.LoggerInterface
}

func newServer(o *app.Oracle, log logger.LoggerInterface) *server {
	return &server{oracle: o, log: log}
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/estimate", s.handleEstimate)
	mux.HandleFunc("POST /v1/cost", s.handleCost)
	mux.HandleFunc("POST /v1/arbitrage", s.handleArbitrage)
	mux.HandleFunc("GET /v1/schedules", s.handleSchedules)
	mux.HandleFunc("GET /v1/schedules/{venue}", s.handleSchedule)
	mux.HandleFunc("GET /v1/compare", s.handleCompare)
	mux.HandleFunc("/", s.handleNotFound)
	return otelhttp.NewHandler(mux, "feeoracle")
}

// writeJSON marshals v as JSON and writes it with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(data)
}

func (s *server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := apperror.Wrap(err, apperror.CodeInternalError, r.URL.Path)
	if sc := trace.SpanContextFromContext(r.Context()); sc.HasTraceID() {
		appErr = appErr.WithTraceID(sc.TraceID().String())
	}
	if appErr.StatusCode >= http.StatusInternalServerError {
		s.log.Error(r.Context(), "request failed", "path", r.URL.Path, "error", appErr.ToLog())
	}
	writeJSON(w, appErr.StatusCode, appErr.ToResponse())
}

func (s *server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.writeError(w, r, apperror.NotFound(apperror.CodeNotFound, r.Method+" "+r.URL.Path))
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return apperror.New(apperror.CodeInvalidFormat,
			apperror.WithContext(err.Error()),
			apperror.WithStatusCode(http.StatusBadRequest))
	}
	return nil
}

func normalizeRequest(req feesDomain.TradeRequest) (feesDomain.TradeRequest, error) {
	side, orderType, err := parseSideAndOrderType(string(req.Side), string(req.OrderType))
	if err != nil {
		return req, err
	}
	req.Venue = feesDomain.ParseVenue(req.Venue.String())
	req.Side = side
	req.OrderType = orderType
	return req, nil
}

func (s *server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	var req feesDomain.TradeRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	req, err := normalizeRequest(req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	est, err := s.oracle.Estimate(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, est)
}

func (s *server) handleCost(w http.ResponseWriter, r *http.Request) {
	var req feesDomain.TradeRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	req, err := normalizeRequest(req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	cost, err := s.oracle.EstimateCost(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cost)
}

type arbitrageRequest struct {
	Legs         []arbDomain.TradeLeg `json:"legs"`
	GrossProfit  decimal.Decimal      `json:"gross_profit"`
	MinProfitPct decimal.NullDecimal  `json:"min_profit_pct"`
}

func (s *server) handleArbitrage(w http.ResponseWriter, r *http.Request) {
	var body arbitrageRequest
	if err := decodeBody(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}

	for i, leg := range body.Legs {
		side, orderType, err := parseSideAndOrderType(string(leg.Side), string(leg.OrderType))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		leg.Venue = feesDomain.ParseVenue(leg.Venue.String())
		leg.Side = side
		leg.OrderType = orderType
		body.Legs[i] = leg
	}

	analysis, err := s.oracle.AnalyzeArbitrage(r.Context(), body.Legs, body.GrossProfit, body.MinProfitPct)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

func (s *server) handleSchedules(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.oracle.Schedules())
}

func (s *server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	schedule, err := s.oracle.Schedule(feesDomain.ParseVenue(r.PathValue("venue")))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, schedule)
}

type compareResponse struct {
	SizeUSD   decimal.Decimal            `json:"size_usd"`
	Estimates []*feesDomain.FeeEstimate `json:"estimates"`
}

func (s *server) handleCompare(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	size, err := queryDecimal(q.Get("size"), "size")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !size.Valid {
		s.writeError(w, r, apperror.Validation(apperror.CodeRequiredField, "size"))
		return
	}
	price, err := queryDecimal(q.Get("price"), "price")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	side, orderType, err := parseSideAndOrderType(q.Get("side"), q.Get("order_type"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	estimates, err := s.oracle.CompareVenues(r.Context(), size.Decimal, app.CompareOptions{
		Price:     price,
		OrderType: orderType,
		Side:      side,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, compareResponse{SizeUSD: size.Decimal, Estimates: estimates})
}

func queryDecimal(raw, name string) (decimal.NullDecimal, error) {
	if raw == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.NullDecimal{}, apperror.Validation(apperror.CodeInvalidFormat, name+"="+raw)
	}
	return decimal.NewNullDecimal(d), nil
}
