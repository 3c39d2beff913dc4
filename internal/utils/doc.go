// Package utils provides general-purpose helper utilities used across the
// application: MD5 checksums of library files, the resty HTTP client
// wrapper, bearer token expiry parsing and UUID generation.
package utils
