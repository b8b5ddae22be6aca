// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines domain, request, and response types for the survey API.

# Domain Types

Shared survey state, as kept in the key-value store:

  - CompletionRegistry: participant ID → slot taken
  - TrialSet: trial01, trial02, ... → Trial{Stim1}
  - ResultRecord: stim1, rating, rt (rating and rt null until submitted)
  - SessionRecord: per-session audit document

Participant IDs are p01..p09, p10, p11, ... and map to store paths:

	models.ParticipantIDFor(3)        // "p03"
	models.ParticipantID("p03").Path() // "priors/participants/participant03"

# View Types

TrialView carries the prompt, slider value, submit state and progress bar
values for the current trial.

# Request / Response Types

  - MoveSliderRequest: value
  - StartSessionResponse: session_id, session_token, participant_id, view
  - SubmitResponse: advanced, view, redirect
  - PutTrialsResponse: participant_id, path, trial_count
  - ErrorResponse: error, message

# Constants

Store paths:

	RegistryPath       = "priors/completedParticipants"
	ParticipantsPrefix = "priors/participants/participant"
	SessionsPrefix     = "priors/sessions/"

Slider:

	SliderMin     = 0
	SliderMax     = 100
	SliderDefault = 50
*/
package models
