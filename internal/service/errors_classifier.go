// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"io"
	"io/fs"

	"github.com/MKhiriev/drpg-sync/internal/adapter"
	"github.com/MKhiriev/drpg-sync/models"
)

// classify maps an error chain onto the ErrorKind reported for the item.
// runCtx is the context of the whole run: a deadline on a single request is
// transient, while a done run context means the user canceled.
func classify(runCtx context.Context, err error) models.ErrorKind {
	switch {
	case err == nil:
		return models.ErrorKindNone

	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		if runCtx.Err() != nil {
			return models.ErrorKindCanceled
		}
		return models.ErrorKindTransient

	case errors.Is(err, ErrPathCollision):
		return models.ErrorKindPathCollision
	case errors.Is(err, ErrIntegrity):
		return models.ErrorKindIntegrity
	case errors.Is(err, ErrInvalidItem):
		return models.ErrorKindInvalidItem
	case errors.Is(err, ErrStateStore):
		return models.ErrorKindStateStore

	case errors.Is(err, ErrTransientNetwork), errors.Is(err, adapter.ErrTransient):
		return models.ErrorKindTransient
	case errors.Is(err, ErrExpiredURL), errors.Is(err, adapter.ErrExpiredURL):
		return models.ErrorKindExpiredURL
	case errors.Is(err, adapter.ErrNotFound):
		return models.ErrorKindNotFound

	case errors.Is(err, adapter.ErrUnauthorized),
		errors.Is(err, adapter.ErrForbidden),
		errors.Is(err, adapter.ErrBadRequest),
		errors.Is(err, adapter.ErrBadResponse):
		return models.ErrorKindRemote

	case errors.Is(err, ErrFilesystem):
		return models.ErrorKindFilesystem
	}

	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return models.ErrorKindFilesystem
	}

	return models.ErrorKindRemote
}

// retryable reports whether another attempt may succeed.
func retryable(runCtx context.Context, err error) bool {
	if runCtx.Err() != nil {
		return false
	}
	return classify(runCtx, err) == models.ErrorKindTransient ||
		errors.Is(err, io.ErrUnexpectedEOF)
}
