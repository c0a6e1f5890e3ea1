// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-pqsig.
//
// go-pqsig is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

// Package validation provides input validation shared by the keystore and
// the command line. Key names become file names, so they are held to a
// conservative character set.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidInput is wrapped by every validation failure
var ErrInvalidInput = errors.New("validation: invalid input")

const (
	maxKeyNameLen       = 128
	maxAlgorithmNameLen = 64
	maxLogLen           = 1000
)

var (
	// keyNamePattern: starts with an alphanumeric, then alphanumerics,
	// '-', '_' or '.'
	keyNamePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_\-\.]*$`)

	// algorithmNamePattern matches registry names such as "ml-dsa-65"
	algorithmNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9\-]*$`)
)

// ValidateKeyName validates a keystore key name.
// Rejects empty names, null bytes, control characters, path separators,
// parent references and names longer than 128 bytes.
func ValidateKeyName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: key name cannot be empty", ErrInvalidInput)
	}

	// Check for null bytes (can bypass some path checks)
	if strings.Contains(name, "\x00") {
		return fmt.Errorf("%w: key name contains null byte", ErrInvalidInput)
	}

	// Check length before the pattern match
	if len(name) > maxKeyNameLen {
		return fmt.Errorf("%w: key name too long (max %d characters)", ErrInvalidInput, maxKeyNameLen)
	}

	if hasControl(name) {
		return fmt.Errorf("%w: key name contains control characters", ErrInvalidInput)
	}

	if strings.Contains(name, "..") {
		return fmt.Errorf("%w: key name contains path traversal attempt", ErrInvalidInput)
	}

	if !keyNamePattern.MatchString(name) {
		return fmt.Errorf("%w: key name contains invalid characters (allowed: a-z, A-Z, 0-9, -, _, .)", ErrInvalidInput)
	}

	return nil
}

// ValidateAlgorithmName validates an algorithm name before registry lookup
func ValidateAlgorithmName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: algorithm name cannot be empty", ErrInvalidInput)
	}
	if len(name) > maxAlgorithmNameLen {
		return fmt.Errorf("%w: algorithm name too long (max %d characters)", ErrInvalidInput, maxAlgorithmNameLen)
	}
	if !algorithmNamePattern.MatchString(name) {
		return fmt.Errorf("%w: algorithm name contains invalid characters (allowed: a-z, 0-9, -)", ErrInvalidInput)
	}
	return nil
}

// SanitizeForLog sanitizes a string for safe logging (prevents log injection).
func SanitizeForLog(s string) string {
	s = strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, s)

	// Limit length to prevent log flooding
	if len(s) > maxLogLen {
		s = s[:maxLogLen] + "...[truncated]"
	}
	return s
}

func hasControl(s string) bool {
	for _, r := range s {
		if r < 32 || r == 127 {
			return true
		}
	}
	return false
}
