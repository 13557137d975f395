package action

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// Workflow command names understood by the Actions runner.
const (
	cmdAddMask   = "add-mask"
	cmdSetOutput = "set-output"
	cmdDebug     = "debug"
	cmdWarning   = "warning"
	cmdError     = "error"
	cmdGroup     = "group"
	cmdEndGroup  = "endgroup"
)

// formatCommand renders `::name key=value,...::message`.
func formatCommand(name string, props map[string]string, message string) string {
	var b strings.Builder
	b.WriteString("::")
	b.WriteString(name)

	if len(props) > 0 {
		keys := make([]string, 0, len(props))
		for key, value := range props {
			if value != "" {
				keys = append(keys, key)
			}
		}
		sort.Strings(keys)
		for i, key := range keys {
			if i == 0 {
				b.WriteByte(' ')
			} else {
				b.WriteByte(',')
			}
			b.WriteString(key)
			b.WriteByte('=')
			b.WriteString(escapeProperty(props[key]))
		}
	}

	b.WriteString("::")
	b.WriteString(escapeData(message))
	return b.String()
}

func issueCommand(w io.Writer, name string, props map[string]string, message string) {
	fmt.Fprintln(w, formatCommand(name, props, message))
}

func escapeData(s string) string {
	s = strings.ReplaceAll(s, "%", "%25")
	s = strings.ReplaceAll(s, "\r", "%0D")
	s = strings.ReplaceAll(s, "\n", "%0A")
	return s
}

func escapeProperty(s string) string {
	s = escapeData(s)
	s = strings.ReplaceAll(s, ":", "%3A")
	s = strings.ReplaceAll(s, ",", "%2C")
	return s
}
