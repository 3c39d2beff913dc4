// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package client implements the command-line application runtime.
//
// It wires configuration, logging, the state store, the catalog adapter and
// the sync engine into a single process lifecycle and renders the final
// sync report for the terminal.
package client
