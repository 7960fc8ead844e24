// Copyright 2026 The Courier Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source.
//
// Two places in Courier wait on time: the RPC server's read-retry
// interval and the host loop's tick. Both take a [Clock] so tests can
// drive them with [Fake] instead of sleeping.
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	server := rpc.NewServer(listener, rpc.WithClock(c))
//	// ... provoke a read failure ...
//	c.WaitForTimers(1)        // the connection task is now waiting
//	c.Advance(time.Second)    // release it
//
// Production code uses [Real].
package clock
