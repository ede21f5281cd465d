// Package feedback captures page ratings and forwards them, fire-and-forget,
// to one or more analytics sinks.
package feedback

import (
	"strings"
	"time"

	ferrors "git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/foundation/normalization"
)

// EventName is the analytics event name for page ratings.
const EventName = "on_rate_docs"

// maxMessageLength bounds the free-text part of a rating.
const maxMessageLength = 4096

// Opinion is the reader's verdict on a page.
type Opinion string

const (
	OpinionGood Opinion = "good"
	OpinionBad  Opinion = "bad"
)

var opinionNormalizer = normalization.NewNormalizer("opinion", map[string]Opinion{
	"good": OpinionGood,
	"bad":  OpinionBad,
}, "")

// ParseOpinion accepts "good" or "bad" in any case.
func ParseOpinion(raw string) (Opinion, error) {
	if strings.TrimSpace(raw) == "" {
		return "", ferrors.ValidationError("opinion is required").Build()
	}
	o, err := opinionNormalizer.Parse(raw)
	if err != nil {
		return "", ferrors.ValidationError("invalid opinion").WithCause(err).WithContext("opinion", raw).Build()
	}
	return o, nil
}

// Payload is what a reader submits.
type Payload struct {
	Opinion Opinion `json:"opinion"`
	Message string  `json:"message"`
}

// Validate checks the opinion and message bounds.
func (p Payload) Validate() error {
	if _, err := ParseOpinion(string(p.Opinion)); err != nil {
		return err
	}
	if len(p.Message) > maxMessageLength {
		return ferrors.ValidationError("message too long").
			WithContext("max_length", maxMessageLength).
			Build()
	}
	return nil
}

// Event is a rating ready for delivery.
type Event struct {
	ID        string    `json:"id"`
	Name      string    `json:"event"`
	URL       string    `json:"url"`
	Opinion   Opinion   `json:"opinion"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
