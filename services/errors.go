package services

import "errors"

var (
	// ErrFeedAggregation is returned when any query behind the status feed
	// fails. Partial feeds are never returned.
	ErrFeedAggregation = errors.New("falha ao carregar status")

	// ErrPeriodAggregation is returned when any commission bucket query fails.
	ErrPeriodAggregation = errors.New("falha ao carregar dados de comissão")

	// ErrPropagation is returned when a fan-out batch could not be committed.
	ErrPropagation = errors.New("falha ao propagar alteração")

	// ErrInvalidEvent is returned for trigger events without a document id or
	// after snapshot.
	ErrInvalidEvent = errors.New("evento inválido")

	// ErrInvalidRequest is returned by the create operations for input that
	// passed struct validation but cannot be stored, such as a bad phone.
	ErrInvalidRequest = errors.New("requisição inválida")
)
