package model

import "github.com/m-mizutani/goerr/v2"

var (
	// ErrSummarizationUnavailable is returned when a case summary cannot be
	// produced in full. Partial summaries are never stored.
	ErrSummarizationUnavailable = goerr.New("summarization unavailable")

	// ErrRetrievalUnavailable is returned only when every retrieval source
	// fails. A single failing source degrades the result set instead.
	ErrRetrievalUnavailable = goerr.New("retrieval unavailable")

	// ErrNoActiveClarification is returned when clarification answers arrive
	// without a pending clarification for the session.
	ErrNoActiveClarification = goerr.New("no active clarification")

	ErrInvalidTopic    = goerr.New("invalid topic")
	ErrInvalidArgument = goerr.New("invalid argument")
	ErrCaseNotFound    = goerr.New("case not found")
	ErrSummaryNotFound = goerr.New("summary not found")
)
