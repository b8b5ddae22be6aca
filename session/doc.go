// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package session ties slot allocation, the trial runner and the store together
for one participant at a time.

	m := session.NewManager(kv, allocator.New(kv), session.Config{AllocateSlots: true})
	sess, view, err := m.Start(ctx, session.Meta{ClientIP: ip})
	view, err = m.Move(sess.ID, sess.Token, 70)
	res, err := m.Submit(ctx, sess.ID, sess.Token)

Every call after Start must present the session token. Calls on one session
are serialized; different sessions never share state. When the last trial is
submitted the result list is written once to the participant's path and the
session record under priors/sessions/ gets its completed_at.

Idle sessions are dropped by Sweep, which RunJanitor calls periodically.
*/
package session
