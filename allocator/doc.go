// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package allocator assigns incoming participants to numbered slots.

# Allocation

	alloc := allocator.New(kv, allocator.WithMaxClaimAttempts(5))
	pid, trials, err := alloc.Allocate(ctx)

Allocate reads the completion registry once, picks the first participant ID
(p01, p02, ..., p10, ...) not marked true, and claims it with store.KV.Claim.
A lost claim moves on to the next free ID; after the configured number of
attempts Allocate returns ErrNoSlot. The participant's trial set is then read
from priors/participants/participantNN.

Claimed slots are never released, even when the trial set is missing
(ErrTrialSetNotFound) or malformed (ErrMalformedTrialSet).
*/
package allocator
