// Package otel wires OpenTelemetry tracing onto the eventbus: HTTP requests
// and GraphQL operations become spans, mutation commits and broker deliveries
// become span events.
package otel

import (
	"context"
	"strings"
	"sync"

	eventbus "github.com/hanpama/snapgraph/internal/eventbus"
	events "github.com/hanpama/snapgraph/internal/events"
	reqid "github.com/hanpama/snapgraph/internal/reqid"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
)

// Setup configures OpenTelemetry and attaches eventbus subscribers.
// If endpoint is empty, no telemetry is configured.
func Setup(endpoint, service string) (func(context.Context) error, error) {
	if endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}
	exp, err := otlptracegrpc.New(context.Background(),
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithDialOption(grpc.WithInsecure()))
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(service),
		)),
	)
	otel.SetTracerProvider(tp)

	sub := &subscriber{tracer: otel.Tracer("snapgraph")}
	sub.register()

	return tp.Shutdown, nil
}

type subscriber struct {
	tracer    trace.Tracer
	httpSpans sync.Map // rid -> trace.Span
	gqlSpans  sync.Map // rid -> trace.Span
}

// requestSpan finds the innermost live span of the request, preferring the
// GraphQL operation span over the HTTP one.
func (s *subscriber) requestSpan(ctx context.Context) (trace.Span, bool) {
	rid, _ := reqid.FromContext(ctx)
	if v, ok := s.gqlSpans.Load(rid); ok {
		return v.(trace.Span), true
	}
	if v, ok := s.httpSpans.Load(rid); ok {
		return v.(trace.Span), true
	}
	return nil, false
}

func (s *subscriber) register() {
	eventbus.Subscribe(func(ctx context.Context, e events.HTTPStart) {
		rid, _ := reqid.FromContext(ctx)
		_, span := s.tracer.Start(ctx, "http.request")
		span.SetAttributes(
			semconv.HTTPMethodKey.String(e.Method),
			attribute.String("http.target", e.Path),
		)
		s.httpSpans.Store(rid, span)
	})

	eventbus.Subscribe(func(ctx context.Context, e events.HTTPFinish) {
		rid, _ := reqid.FromContext(ctx)
		v, ok := s.httpSpans.LoadAndDelete(rid)
		if !ok {
			return
		}
		span := v.(trace.Span)
		span.SetAttributes(semconv.HTTPStatusCodeKey.Int(e.Status))
		span.End()
	})

	eventbus.Subscribe(func(ctx context.Context, e events.GraphQLStart) {
		rid, _ := reqid.FromContext(ctx)
		parent := ctx
		if v, ok := s.httpSpans.Load(rid); ok {
			parent = trace.ContextWithSpan(ctx, v.(trace.Span))
		}
		_, span := s.tracer.Start(parent, "graphql.operation")
		span.SetAttributes(
			attribute.String("graphql.operation.name", e.OperationName),
			attribute.String("graphql.operation.type", e.OperationType),
		)
		s.gqlSpans.Store(rid, span)
	})

	eventbus.Subscribe(func(ctx context.Context, e events.GraphQLFinish) {
		rid, _ := reqid.FromContext(ctx)
		v, ok := s.gqlSpans.LoadAndDelete(rid)
		if !ok {
			return
		}
		span := v.(trace.Span)
		span.SetAttributes(attribute.Int("graphql.error_count", e.ErrorCount))
		span.End()
	})

	eventbus.Subscribe(func(ctx context.Context, e events.PhotoPosted) {
		if span, ok := s.requestSpan(ctx); ok {
			span.AddEvent("photo.posted", trace.WithAttributes(
				attribute.String("photo.id", e.PhotoID),
				attribute.String("photo.posted_by", e.PostedBy),
				attribute.String("photo.category", e.Category),
			))
		}
	})

	eventbus.Subscribe(func(ctx context.Context, e events.UserJoined) {
		if span, ok := s.requestSpan(ctx); ok {
			span.AddEvent("user.joined", trace.WithAttributes(
				attribute.String("user.login", e.GithubLogin),
			))
		}
	})

	eventbus.Subscribe(func(ctx context.Context, e events.FriendshipFormed) {
		if span, ok := s.requestSpan(ctx); ok {
			span.AddEvent("friendship.formed", trace.WithAttributes(
				attribute.String("friendship.id", e.FriendshipID),
				attribute.String("friendship.logins", strings.Join(e.Logins, ",")),
			))
		}
	})

	eventbus.Subscribe(func(ctx context.Context, e events.SubscriptionDelivered) {
		if span, ok := s.requestSpan(ctx); ok {
			span.AddEvent("subscription.delivered", trace.WithAttributes(
				attribute.String("subscription.id", e.SubscriptionID),
				attribute.String("subscription.topic", e.Topic),
				attribute.Int("subscription.queue_len", e.QueueLen),
			))
		}
	})

	eventbus.Subscribe(func(ctx context.Context, e events.SubscriptionDropped) {
		if span, ok := s.requestSpan(ctx); ok {
			span.AddEvent("subscription.dropped", trace.WithAttributes(
				attribute.String("subscription.id", e.SubscriptionID),
				attribute.String("subscription.topic", e.Topic),
			))
		}
	})
}
