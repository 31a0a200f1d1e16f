package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"unicode/utf8"
)

// minHashSaltLength is the shortest LOG_HASH_SALT accepted at startup.
const minHashSaltLength = 32

var hashSalt = "unset-salt-call-InitHashSalt-before-logging"

// InitHashSalt loads LOG_HASH_SALT. It panics when the salt is missing or
// shorter than 32 characters, since hashed ids would then be guessable.
func InitHashSalt() {
	salt := os.Getenv("LOG_HASH_SALT")
	if len(salt) < minHashSaltLength {
		panic(fmt.Sprintf("LOG_HASH_SALT must be set and at least %d characters long", minHashSaltLength))
	}
	hashSalt = salt
}

// InitHashSaltForTesting sets the salt directly.
func InitHashSaltForTesting(salt string) {
	hashSalt = salt
}

// HashUserID creates a privacy-preserving hash of a Telegram user ID.
func HashUserID(userID int64) string {
	return hashID(userID)
}

// HashChatID creates a privacy-preserving hash of a chat ID.
func HashChatID(chatID int64) string {
	return hashID(chatID)
}

func hashID(id int64) string {
	data := fmt.Sprintf("%d:%s", id, hashSalt)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])[:8]
}

// SanitizeText redacts user-provided text (expense lines, comments) while
// keeping enough shape for debugging.
func SanitizeText(text string) string {
	if text == "" {
		return "<empty>"
	}

	n := utf8.RuneCountInString(text)
	if n <= 10 {
		return fmt.Sprintf("<%d chars>", n)
	}

	prefix := []rune(text)[:3]
	return fmt.Sprintf("%s...<%d chars>", string(prefix), n)
}
