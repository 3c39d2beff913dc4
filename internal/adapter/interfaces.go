// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides transport-layer abstractions for communicating with
// the remote catalog of purchased items.
//
// [CatalogFetcher] lists purchases and resolves short-lived download links;
// [FileFetcher] streams file bytes from a resolved link. The package ships an
// HTTP/REST implementation of both ([NewHTTPCatalog]).
//
// Transport failures are mapped onto the sentinel values in errors.go so
// that callers can use [errors.Is] without knowing about HTTP (e.g.
// [ErrExpiredURL] for 403/410 on a file link, [ErrTransient] for 5xx).
package adapter

import (
	"context"
	"io"

	"github.com/MKhiriev/drpg-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/adapter_mock.go -package=mock

// CatalogFetcher reads the customer's library from the catalog API.
type CatalogFetcher interface {
	// ListPurchases returns one CatalogItem per downloadable file, in
	// catalog order.
	ListPurchases(ctx context.Context) ([]models.CatalogItem, error)

	// ResolveDownloadURL returns a short-lived URL for item. The URL may
	// expire before it is used; callers resolve again on ErrExpiredURL.
	ResolveDownloadURL(ctx context.Context, item models.CatalogItem) (string, error)
}

// FileFetcher streams the bytes behind a resolved download URL.
type FileFetcher interface {
	// Fetch returns the response body and the declared content length
	// (-1 when unknown). The caller must close the body.
	Fetch(ctx context.Context, url string) (io.ReadCloser, int64, error)
}
