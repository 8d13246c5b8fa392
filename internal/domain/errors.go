package domain

import "errors"

var (
	ErrNotFound                 = errors.New("not found")
	ErrInvalidModel             = errors.New("invalid model")
	ErrInvalidModelForAsset     = errors.New("invalid model for video download")
	ErrGuardMisconfigured       = errors.New("guardrails not configured correctly")
	ErrSafetyCheckMisconfigured = errors.New("safety checker not configured correctly")
	ErrPromptRejected           = errors.New("prompt rejected by guardrails")
	ErrDispatchFailed           = errors.New("no job_id returned from generation endpoint")
)
