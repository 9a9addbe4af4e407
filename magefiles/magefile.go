//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main provides build targets for shopadmin using Mage.
//
// Usage:
//
//	mage build       Compile shopadmin to bin/
//	mage install     Install shopadmin to GOPATH/bin
//	mage serve       Build and run the local API on ./data
//	mage test:all    Run all tests
//	mage test:unit   Run tests without the HTTP round-trip packages
//	mage test:race   Run all tests with the race detector
//	mage test:cover  Write a coverage profile to bin/coverage.out
//	mage lint        Run golangci-lint
//	mage vet         Run go vet
//	mage tidy        Run go mod tidy
//	mage clean       Remove build artifacts
package main

import "github.com/magefile/mage/sh"

// Vet runs go vet.
func Vet() error {
	return sh.RunV(binGo, "vet", "./...")
}

// Tidy runs go mod tidy.
func Tidy() error {
	return sh.RunV(binGo, "mod", "tidy")
}
