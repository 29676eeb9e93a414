package main

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// maskEmail masks a submitter email for logging purposes
// Example: "user@example.com" -> "u***@example.com"
func maskEmail(email string) string {
	if email == "" {
		return ""
	}

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return "***"
	}

	localPart := parts[0]
	domain := parts[1]

	if len(localPart) <= 2 {
		return "***@" + domain
	}

	return localPart[0:1] + "***@" + domain
}

// hashEmail creates a consistent hash of an email for correlating submissions
// in logs without exposing PII
func hashEmail(email string) string {
	if email == "" {
		return ""
	}

	h := sha256.New()
	h.Write([]byte(email))
	hash := h.Sum(nil)

	return fmt.Sprintf("%x", hash)[:8]
}
