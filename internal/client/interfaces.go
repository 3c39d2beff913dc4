// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import "context"

// Client defines the minimal lifecycle contract for runnable client
// applications.
type Client interface {
	// Run performs one sync and returns the process exit code. A non-nil
	// error means the run could not start or the catalog could not be read.
	Run(ctx context.Context) (int, error)

	// Close releases the state store.
	Close() error
}
