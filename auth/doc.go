// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides authentication and token generation utilities.

# Admin Keys

Admin keys use HMAC-SHA256 over the study name:

	adminKey := auth.GenerateAdminKey("priors", salt)
	err := auth.ValidateAdminKey("priors", adminKey, salt)

The key is URL-safe base64 encoded without padding. Since it's deterministic,
the same study and salt always produce the same key, so nothing is stored.

# Session Tokens

Each survey session gets a random 24-byte (192-bit) secret:

	token, err := auth.GenerateSessionToken()
	err := auth.ValidateSessionToken(session.Token, r.Header.Get("X-Session-Token"))

Validation compares in constant time.

# IP Hashing

Session audit records store a salted hash, never the raw address:

	hash := auth.HashIP(ipAddress, salt)

Returns first 8 bytes (16 hex chars) of HMAC-SHA256.
*/
package auth
