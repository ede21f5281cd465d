package metrics

import "time"

// ResolveResult labels the outcome of a page lookup.
type ResolveResult string

const (
	ResolveFound    ResolveResult = "found"
	ResolveNotFound ResolveResult = "not_found"
)

// FeedbackOutcome labels what happened to a feedback event.
type FeedbackOutcome string

const (
	FeedbackAccepted  FeedbackOutcome = "accepted"
	FeedbackDropped   FeedbackOutcome = "dropped"
	FeedbackDelivered FeedbackOutcome = "delivered"
	FeedbackFailed    FeedbackOutcome = "failed"
)

// Recorder defines observability hooks for page resolution, HTTP traffic,
// feedback delivery and reindexing. Implementations may forward to
// Prometheus; NoopRecorder is the default.
type Recorder interface {
	IncPageResolve(result ResolveResult)
	ObserveHTTPRequest(route, method string, status int, d time.Duration)
	IncFeedbackEvent(outcome FeedbackOutcome)
	ObserveReindex(d time.Duration, success bool)
	SetIndexedDocuments(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) IncPageResolve(ResolveResult)                          {}
func (NoopRecorder) ObserveHTTPRequest(string, string, int, time.Duration) {}
func (NoopRecorder) IncFeedbackEvent(FeedbackOutcome)                      {}
func (NoopRecorder) ObserveReindex(time.Duration, bool)                    {}
func (NoopRecorder) SetIndexedDocuments(int)                               {}
