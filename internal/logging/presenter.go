// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"strings"
)

const maxPresented = 400

// PresentError formats err for a one-line terminal message: secrets masked,
// whitespace collapsed and overly long bodies cut.
func PresentError(context string, err error) string {
	if err == nil {
		return ""
	}
	msg := strings.Join(strings.Fields(Mask(err.Error())), " ")
	if r := []rune(msg); len(r) > maxPresented {
		msg = string(r[:maxPresented]) + "..."
	}
	if context == "" {
		return msg
	}
	return context + ": " + msg
}
