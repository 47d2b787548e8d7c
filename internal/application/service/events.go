package service

import (
	"context"

	"github.com/billed-app/billed-api/internal/domain/event"
)

// EventSink receives bill lifecycle events. The dispatcher satisfies it;
// services emit fire-and-forget so a slow subscriber never delays a request.
type EventSink interface {
	DispatchAsync(ctx context.Context, evt *event.Event)
}

// SubmissionOption configures a SubmissionService
type SubmissionOption func(*SubmissionService)

// WithSubmissionEvents publishes receipt and submission events to the sink
func WithSubmissionEvents(sink EventSink) SubmissionOption {
	return func(s *SubmissionService) {
		s.events = sink
	}
}

// AdjudicationOption configures an AdjudicationService
type AdjudicationOption func(*AdjudicationService)

// WithAdjudicationEvents publishes accept/refuse events to the sink
func WithAdjudicationEvents(sink EventSink) AdjudicationOption {
	return func(s *AdjudicationService) {
		s.events = sink
	}
}

func emit(ctx context.Context, sink EventSink, evt *event.Event) {
	if sink == nil {
		return
	}
	sink.DispatchAsync(ctx, evt)
}
