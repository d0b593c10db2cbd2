// Copyright (c) 2026 Novika. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package fingerprint computes stable content fingerprints for chapter bodies.
//
// # Usage
//
// The fingerprint detects byte-identical duplicate chapter bodies within the
// same novel, independent of title or number. Bodies are normalized before
// hashing so that trailing whitespace and platform line endings do not defeat
// the duplicate check.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Of returns the hex-encoded SHA-256 fingerprint of the normalized body text.
//
// # Normalization
//
// 1. CRLF and lone CR line endings are converted to LF.
// 2. Leading and trailing whitespace is trimmed.
//
// Two bodies that differ only in line endings or surrounding whitespace
// therefore share a fingerprint.
func Of(body string) string {
	normalized := strings.ReplaceAll(body, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")
	normalized = strings.TrimSpace(normalized)

	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}
