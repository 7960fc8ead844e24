// Copyright 2026 The Courier Authors
// SPDX-License-Identifier: Apache-2.0

// Courier runs the editor messaging core from the command line.
//
// Usage:
//
//	courier server [--config path] [--listen address...]
//	courier call [--strategy local|remote] [--address url] <command> [argument...]
//	courier file open|save|list [--root dir] <path>
//	courier version
package main
