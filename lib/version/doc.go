// Copyright 2026 The Courier Authors
// SPDX-License-Identifier: Apache-2.0

// Package version holds build information for the courier binary.
//
// Four variables are injected at build time with -ldflags -X:
//
//   - [GitCommit]: short git SHA
//   - [GitDirty]: "true" when the tree had uncommitted changes
//   - [BuildTime]: UTC timestamp
//   - [Version]: semantic version, set by hand for releases
//
// Unset values fall back to "unknown" and "0.1.0-dev", which is what
// tests and `go run` see.
package version
