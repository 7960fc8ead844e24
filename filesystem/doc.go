// Copyright 2026 The Courier Authors
// SPDX-License-Identifier: Apache-2.0

// Package filesystem answers file/command messages from an afero
// filesystem.
//
// A [Service] subscribes to the file/command topic and, on each
// Update, serves every pending [contract.FileCommand] and publishes a
// [contract.FileResult] on file/{id}/result. Failures come back as
// [contract.FileError] replies rather than being dropped, so a caller
// waiting on the result topic always gets an answer.
//
// Paths are slash-separated and resolved inside the service root.
// Production callers pass afero.NewOsFs; tests use afero.NewMemMapFs.
package filesystem
