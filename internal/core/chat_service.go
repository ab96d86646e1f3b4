package core

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
)

const (
	instrumentationName = "dbadvisor.io/chat-gateway/core"

	emptyReplyFallback = "I'm sorry, I couldn't generate a response."
	errorReply         = "Sorry, I encountered an error while processing your request."
)

// TurnResult is the outcome of one chat turn. Err is set when the turn
// failed after validation; History is then the caller's original history.
type TurnResult struct {
	Reply   string
	History []ChatMessage
	Err     error
}

// Response renders the result in its wire shape. Failures become a
// successful-shaped response carrying a fixed apology and the diagnostic.
func (r TurnResult) Response() ChatResponse {
	history := r.History
	if history == nil {
		history = []ChatMessage{}
	}
	if r.Err != nil {
		diagnostic := r.Err.Error()
		return ChatResponse{Message: errorReply, History: history, Error: &diagnostic}
	}
	return ChatResponse{Message: r.Reply, History: history}
}

type ChatService struct {
	llm     Completer
	timeout time.Duration

	tracer   trace.Tracer
	turns    metric.Int64Counter
	duration metric.Float64Histogram
}

// NewChatService wires a completion backend into the turn processor. A
// positive timeout bounds every provider call.
func NewChatService(llm Completer, timeout time.Duration) *ChatService {
	meter := otel.Meter(instrumentationName)

	var turns metric.Int64Counter = noop.Int64Counter{}
	if c, err := meter.Int64Counter("chat.turns", metric.WithDescription("Chat turns processed, by outcome")); err == nil {
		turns = c
	} else {
		slog.Warn("failed to create chat.turns counter", "error", err)
	}

	var duration metric.Float64Histogram = noop.Float64Histogram{}
	if h, err := meter.Float64Histogram("chat.provider.duration_ms",
		metric.WithDescription("Completion provider latency"),
		metric.WithUnit("ms"),
	); err == nil {
		duration = h
	} else {
		slog.Warn("failed to create chat.provider.duration_ms histogram", "error", err)
	}

	return &ChatService{
		llm:      llm,
		timeout:  timeout,
		tracer:   otel.Tracer(instrumentationName),
		turns:    turns,
		duration: duration,
	}
}

// ProcessTurn runs one chat turn against the completion provider. It never
// returns an error directly; failures are carried in the result.
func (s *ChatService) ProcessTurn(ctx context.Context, req ChatRequest) (result TurnResult) {
	ctx, span := s.tracer.Start(ctx, "chat.turn", trace.WithAttributes(
		attribute.Int("chat.history_length", len(req.History)),
		attribute.Bool("chat.has_logs", req.FileData != ""),
	))
	defer span.End()

	defer func() {
		if rec := recover(); rec != nil {
			result = TurnResult{History: req.History, Err: fmt.Errorf("panic during chat turn: %v", rec)}
		}
		outcome := "ok"
		if result.Err != nil {
			outcome = "error"
			span.RecordError(result.Err)
			span.SetStatus(codes.Error, result.Err.Error())
		}
		s.turns.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	}()

	prompt := BuildPrompt(req)

	reply, err := s.complete(ctx, prompt)
	if err != nil {
		return TurnResult{History: req.History, Err: err}
	}
	if reply == "" {
		reply = emptyReplyFallback
	}

	history := make([]ChatMessage, 0, len(req.History)+2)
	history = append(history, req.History...)
	history = append(history,
		ChatMessage{Role: RoleUser, Content: req.Message},
		ChatMessage{Role: RoleAssistant, Content: reply},
	)

	return TurnResult{Reply: reply, History: history}
}

func (s *ChatService) complete(ctx context.Context, prompt []Message) (string, error) {
	callCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	reply, err := s.llm.Complete(callCtx, prompt)
	s.duration.Record(ctx, float64(time.Since(start).Milliseconds()))
	if err != nil {
		return "", err
	}

	slog.DebugContext(ctx, "completion received", "prompt_messages", len(prompt), "reply_length", len(reply))
	return reply, nil
}
