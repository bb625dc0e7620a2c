package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// PendingClarification holds one in-flight clarification round for a session.
// MissingFields and Questions are parallel slices with matching order.
type PendingClarification struct {
	Question      string    `json:"question"`
	Topic         Topic     `json:"topic"`
	MissingFields []string  `json:"missing_fields"`
	Questions     []string  `json:"questions"`
	CreatedAt     time.Time `json:"created_at"`
}

func (p *PendingClarification) Validate() error {
	if err := p.Topic.Validate(); err != nil {
		return err
	}
	if len(p.MissingFields) == 0 {
		return goerr.Wrap(ErrInvalidArgument, "clarification with no missing fields")
	}
	if len(p.MissingFields) != len(p.Questions) {
		return goerr.Wrap(ErrInvalidArgument, "missing fields and questions out of step",
			goerr.V("fields", len(p.MissingFields)), goerr.V("questions", len(p.Questions)))
	}
	return nil
}
