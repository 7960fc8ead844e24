// Copyright 2026 The Courier Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for Courier packages.
//
// [RequireReceive], [RequireSend], and [RequireClosed] wrap the
// select-with-timeout pattern so that tests of the RPC server, the
// remote client, and the host loop never call time.After directly.
// These are the only wall-clock timeouts in the test suite; everything
// else runs on a fake clock.
//
// [UniqueID] produces distinguishable request ids and message texts.
// [EventuallyTrue] polls a condition that another goroutine will make
// true, such as a remote client reaching the Connected state.
//
// All helpers call t.Fatalf on failure.
package testutil
