package service

import "context"

// QueryAgent answers free-form market questions.
type QueryAgent interface {
	Ready() bool
	Answer(ctx context.Context, query string) (string, error)
}
