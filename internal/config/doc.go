// Package config provides configuration loading, merging, and validation
// facilities for the drpg command line tool.
//
// Configuration is assembled from multiple sources in the following priority
// order (earlier sources win for non-zero fields):
//  1. Command-line flags
//  2. Environment variables (DRPG_*), optionally pre-loaded from a .env file
//  3. JSON config file
//  4. Built-in defaults
//
// The main entry point is [Load].
package config
