// Package service exposes the assistant over NATS request/reply, with
// Prometheus metrics and a health endpoint on an HTTP sidecar.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/c360studio/sparqlassist/agent"
	"github.com/c360studio/sparqlassist/validation"
)

// NATS subjects served by the service.
const (
	SubjectAsk      = "sparqlassist.ask"
	SubjectValidate = "sparqlassist.validate"
)

// Asker is the slice of the assistant the service needs.
type Asker interface {
	Ask(ctx context.Context, question string) (*agent.Answer, error)
}

// Validator validates the SPARQL blocks of a markdown message.
type Validator interface {
	ValidateMessage(ctx context.Context, message string) []validation.QueryValidationOutput
}

// AskRequest is the ask subject payload.
type AskRequest struct {
	Question string `json:"question"`
}

// AskResponse is the ask subject reply.
type AskResponse struct {
	Message     string                             `json:"message"`
	Valid       bool                               `json:"valid"`
	Attempts    int                                `json:"attempts"`
	Validations []validation.QueryValidationOutput `json:"validations,omitempty"`
	Error       string                             `json:"error,omitempty"`
}

// ValidateRequest is the validate subject payload.
type ValidateRequest struct {
	Message string `json:"message"`
}

// ValidateResponse is the validate subject reply.
type ValidateResponse struct {
	Results []validation.QueryValidationOutput `json:"results"`
	Error   string                             `json:"error,omitempty"`
}

// Service serves ask and validate requests over NATS.
type Service struct {
	nc        *nats.Conn
	asker     Asker
	validator Validator
	metrics   *Metrics
	logger    *slog.Logger
	timeout   time.Duration

	subs []*nats.Subscription
}

// New creates a service. The Prometheus registerer may be
// prometheus.DefaultRegisterer.
func New(nc *nats.Conn, asker Asker, validator Validator,
	reg prometheus.Registerer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		nc:        nc,
		asker:     asker,
		validator: validator,
		metrics:   NewMetrics(reg),
		logger:    logger,
		timeout:   5 * time.Minute,
	}
}

// Start subscribes to the service subjects. Handlers run on the NATS
// delivery goroutines; the assistant itself is safe for concurrent asks.
func (s *Service) Start() error {
	askSub, err := s.nc.Subscribe(SubjectAsk, func(msg *nats.Msg) {
		s.respond(msg, s.handleAsk(msg.Data))
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", SubjectAsk, err)
	}
	s.subs = append(s.subs, askSub)

	validateSub, err := s.nc.Subscribe(SubjectValidate, func(msg *nats.Msg) {
		s.respond(msg, s.handleValidate(msg.Data))
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", SubjectValidate, err)
	}
	s.subs = append(s.subs, validateSub)

	s.logger.Info("Service started",
		"subjects", []string{SubjectAsk, SubjectValidate})
	return nil
}

// Stop drains the subscriptions.
func (s *Service) Stop() {
	for _, sub := range s.subs {
		if err := sub.Drain(); err != nil {
			s.logger.Warn("Failed to drain subscription",
				"subject", sub.Subject,
				"error", err)
		}
	}
	s.subs = nil
}

func (s *Service) respond(msg *nats.Msg, reply []byte) {
	if msg.Reply == "" {
		return
	}
	if err := msg.Respond(reply); err != nil {
		s.logger.Warn("Failed to respond",
			"subject", msg.Subject,
			"error", err)
	}
}

// handleAsk answers one question.
func (s *Service) handleAsk(data []byte) []byte {
	s.metrics.QuestionsTotal.Inc()
	start := time.Now()

	var req AskRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return marshalReply(AskResponse{Error: "malformed request: " + err.Error()})
	}
	if req.Question == "" {
		return marshalReply(AskResponse{Error: "question is required"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	answer, err := s.asker.Ask(ctx, req.Question)
	s.metrics.AskDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		s.logger.Error("Ask failed", "error", err)
		return marshalReply(AskResponse{Error: err.Error()})
	}

	s.metrics.ModelAttempts.Observe(float64(answer.Attempts))
	s.metrics.AnswersTotal.WithLabelValues(strconv.FormatBool(answer.Valid())).Inc()
	s.countIssues(answer.Validations)

	return marshalReply(AskResponse{
		Message:     answer.Message,
		Valid:       answer.Valid(),
		Attempts:    answer.Attempts,
		Validations: answer.Validations,
	})
}

// handleValidate validates the queries of one markdown message.
func (s *Service) handleValidate(data []byte) []byte {
	var req ValidateRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return marshalReply(ValidateResponse{Error: "malformed request: " + err.Error()})
	}
	if req.Message == "" {
		return marshalReply(ValidateResponse{Error: "message is required"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	results := s.validator.ValidateMessage(ctx, req.Message)
	s.countIssues(results)
	if results == nil {
		results = []validation.QueryValidationOutput{}
	}
	return marshalReply(ValidateResponse{Results: results})
}

func (s *Service) countIssues(results []validation.QueryValidationOutput) {
	for _, r := range results {
		if len(r.Errors) > 0 {
			s.metrics.ValidationIssues.WithLabelValues(r.EndpointURL).
				Add(float64(len(r.Errors)))
		}
	}
}

func marshalReply(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		// reply types marshal by construction
		return []byte(`{"error":"internal encoding failure"}`)
	}
	return data
}

// HTTPHandler returns the metrics and health mux for the HTTP sidecar.
func HTTPHandler(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	return mux
}
