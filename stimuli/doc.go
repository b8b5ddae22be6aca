// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package stimuli loads the fallback trial set served when slot allocation is
// turned off. The built-in set (excitement, misery, alarm) can be replaced by
// a YAML file with the same trialNN → stim1 shape.
package stimuli
