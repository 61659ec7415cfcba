package application

import "context"

// Command represents a request that changes lesson state.
type Command interface {
	CommandName() string
}

// CommandHandler handles one command type and returns its outcome.
type CommandHandler[C Command, R any] interface {
	Handle(ctx context.Context, cmd C) (R, error)
}

// Query represents a read of lesson state.
type Query interface {
	QueryName() string
}

// QueryHandler handles one query type.
type QueryHandler[Q Query, R any] interface {
	Handle(ctx context.Context, query Q) (R, error)
}
