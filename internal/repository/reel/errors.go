package reel

import "errors"

var (
	ErrReelNotFound = errors.New("reel not found")
)
