// Copyright 2026 The Courier Authors
// SPDX-License-Identifier: Apache-2.0

// Package notify consumes the notify topic.
//
// A [Service] drains [contract.Notify] messages on each Update, logs
// each text, and keeps the most recent ones for display.
package notify
