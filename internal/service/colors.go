package service

import (
	"unicode/utf16"

	"github.com/roksva123/go-planning-backend/internal/model"
)

var clientPalette = []string{
	"#6366f1", "#8b5cf6", "#a855f7", "#d946ef", "#ec4899",
	"#f43f5e", "#ef4444", "#f97316", "#f59e0b", "#eab308",
	"#84cc16", "#22c55e", "#10b981", "#14b8a6", "#06b6d4",
	"#0ea5e9", "#3b82f6", "#6366f1", "#8b5cf6", "#a855f7",
}

// ColorFor returns the configured color of clientName, else a palette color
// derived from the name. The same name always yields the same color, and the
// derivation matches the one used by the calendar front-end.
func ColorFor(clientName string, configured map[string]string) string {
	if clientName == "" {
		return model.DefaultClientColor
	}
	if c, ok := configured[clientName]; ok && c != "" {
		return c
	}
	return paletteColor(clientName)
}

// paletteColor hashes the UTF-16 code units of name with
// hash = c + ((hash << 5) - hash), where the shift wraps to 32 bits and the
// subtraction does not.
func paletteColor(name string) string {
	var h int64
	for _, c := range utf16.Encode([]rune(name)) {
		shifted := int64(int32(uint32(h) << 5))
		h = int64(c) + shifted - h
	}
	if h < 0 {
		h = -h
	}
	return clientPalette[h%int64(len(clientPalette))]
}
