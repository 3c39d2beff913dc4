// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package naming maps remote publisher, product and file names to local
// relative paths.
//
// Two strategies are provided:
//   - [Friendly] produces readable names that are valid on every major
//     filesystem (Windows rules are used as the lowest common denominator);
//   - [Compatibility] reproduces the vendor desktop client's naming byte for
//     byte, including its quirks, so both tools can share one library.
//
// The strategy is selected once per plan with [ModeFor]. All functions are
// pure and safe for concurrent use.
package naming
