package main

import "errors"

// Sentinel errors for command operations
var (
	ErrReadInput   = errors.New("failed to read input")
	ErrWriteOutput = errors.New("failed to write output")
)
