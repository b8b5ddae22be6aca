// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package runner implements the trial presentation state machine.

	r, err := runner.New(trials, runner.SystemClock)
	r.Move(70)              // slider input event, enables submit
	out, err := r.Submit()  // rating 70, rt since the prompt was shown

Each trial waits for input; Submit only fires after Move, so an untouched
default rating can never be recorded. Firing stores the rating and reaction
time, resets the slider to 50 and either shows the next trial or completes.
The completed Outcome carries the full result list for persisting.
*/
package runner
