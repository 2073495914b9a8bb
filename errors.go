package mnemovec

import "github.com/mnemo-cloud/mnemovec/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound         = domain.ErrNotFound
	ErrInvalidSchema    = domain.ErrInvalidSchema
	ErrConnectionFailed = domain.ErrConnectionFailed
	ErrRemoteOp         = domain.ErrRemoteOp
	ErrMalformedResult  = domain.ErrMalformedResult
	ErrSchemaMismatch   = domain.ErrSchemaMismatch
)
