package service

import "errors"

var (
	ErrUnknownFeature       = errors.New("unknown feature")
	ErrGeneratorUnavailable = errors.New("generator unavailable")
)
