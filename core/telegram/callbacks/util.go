// Package callbacks decodes inline button data into a routing key and payload.
package callbacks

import (
	"strings"

	tele "gopkg.in/telebot.v4"
)

// Split parses callback data. Both Telebot's "\f<unique>|<payload>" encoding
// and plain "<key>:<payload>" data are accepted.
func Split(data string) (string, string) {
	raw := strings.TrimPrefix(data, "\f")
	raw = strings.TrimPrefix(raw, "\\f")
	sep := ":"
	if strings.Contains(raw, "|") {
		sep = "|"
	}
	key, payload, _ := strings.Cut(raw, sep)
	return strings.TrimSpace(key), payload
}

// ParseCallbackData splits cb.Data, preferring cb.Unique when telebot resolved it.
func ParseCallbackData(cb *tele.Callback) (string, string) {
	if cb == nil {
		return "", ""
	}
	if cb.Unique != "" {
		return cb.Unique, cb.Data
	}
	return Split(cb.Data)
}
