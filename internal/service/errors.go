package service

import "errors"

var (
	ErrInvalidOptions = errors.New("invalid sync options")

	ErrTransientNetwork = errors.New("transient network error")
	ErrExpiredURL       = errors.New("download url expired")
	ErrIntegrity        = errors.New("integrity check failed")
	ErrPathCollision    = errors.New("target path already claimed by another item")
	ErrFilesystem       = errors.New("filesystem error")
	ErrStateStore       = errors.New("state store error")
	ErrInvalidItem      = errors.New("invalid catalog item")

	ErrListPurchases = errors.New("could not list purchases")
)
