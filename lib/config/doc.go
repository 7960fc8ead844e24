// Copyright 2026 The Courier Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads configuration for the courier binary.
//
// Configuration comes from a single file named by the COURIER_CONFIG
// environment variable ([Load]) or a --config flag ([LoadFile]). There
// is no search path. Files ending in .json or .jsonc are stripped of
// comments and trailing commas before decoding; everything else is
// YAML.
//
// The file may carry development and production sections whose
// non-zero fields override the base values when [Config].Environment
// matches. Path-like fields then get ${VAR} and ${VAR:-default}
// expansion, with ${COURIER_ROOT} bound to files.root.
//
// Sections:
//
//   - log: level and output format
//   - server: listen address, read retry interval, metrics path
//   - client: server address, execution strategy, mailbox capacity,
//     tick interval, call timeout
//   - files: root directory served on the file topics
package config
