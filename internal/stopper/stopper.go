// Copyright 2023 The Cockroach Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package stopper provides a graceful-shutdown context: a
// context.Context that additionally tracks a group of background
// goroutines and lets a caller request that they wind down and wait
// for them to actually finish, instead of simply cancelling and
// walking away.
package stopper

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

// Context wraps a context.Context with a background-goroutine group,
// for long-running server commands built on this module (riftkvd runs
// its HTTP shutdown watcher under one).
type Context struct {
	context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	wg       sync.WaitGroup
	stopping bool
	errs     []error
}

// WithContext derives a stoppable Context from a parent.
func WithContext(parent context.Context) *Context {
	ctx, cancel := context.WithCancel(parent)
	return &Context{Context: ctx, cancel: cancel}
}

// Go starts fn in a new goroutine tracked by this Context. fn should
// return promptly once the Context is cancelled.
func (c *Context) Go(fn func(ctx context.Context) error) {
	c.mu.Lock()
	if c.stopping {
		c.mu.Unlock()
		return
	}
	c.wg.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.wg.Done()
		if err := fn(c.Context); err != nil {
			c.mu.Lock()
			c.errs = append(c.errs, err)
			c.mu.Unlock()
		}
	}()
}

// Stop cancels the context and blocks until every goroutine started
// via Go has returned, then returns the first error any of them
// reported, if any.
func (c *Context) Stop() error {
	c.mu.Lock()
	c.stopping = true
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.errs) == 0 {
		return nil
	}
	return errors.Wrap(c.errs[0], "stopper: background goroutine failed")
}
