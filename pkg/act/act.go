// Copyright 2025 Google LLC
// SPDX-License-Identifier: Apache-2.0

// Package act provides the abstractions commands are built from: a validated
// input, a dependency container and the action joining them.
package act

import "context"

// Input is a validated input type (command config, request, etc.)
type Input interface {
	Validate() error
}

// Deps is a marker type for dependency containers.
type Deps any

// InitDeps initializes dependencies from context.
type InitDeps[D Deps] func(context.Context) (D, error)

// Action is an operation decoupled from how it is invoked.
type Action[I Input, O any, D Deps] func(context.Context, I, D) (*O, error)

// NoOutput is a zero-value output for actions that only produce side effects.
type NoOutput struct{}
