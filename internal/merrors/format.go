package merrors

import (
	"fmt"
	"strings"
)

// FormatForUser renders err for CLI display. Non-MemoriaError values are
// passed through as-is; MemoriaErrors get their code appended for
// bug-report purposes.
func FormatForUser(err error, debug bool) string {
	if err == nil {
		return ""
	}

	me, ok := err.(*MemoriaError)
	if !ok {
		return err.Error()
	}

	var sb strings.Builder
	sb.WriteString("Error: ")
	sb.WriteString(me.Message)
	if debug && me.Cause != nil {
		sb.WriteString(fmt.Sprintf("\ncause: %s", me.Cause))
	}
	sb.WriteString(fmt.Sprintf("\n[%s]", me.Code))
	return sb.String()
}
