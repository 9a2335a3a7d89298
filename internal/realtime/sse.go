// Server-Sent Events framing per the W3C text/event-stream format.
// Each message is an "event:" line, one "data:" line per payload line,
// and a terminating blank line. Heartbeats are bare comment lines.

package realtime

import (
	"io"
	"strings"
)

// WriteEvent writes one SSE frame. Multi-line payloads are split into
// multiple data: lines; the receiver rejoins them with newlines.
func WriteEvent(w io.Writer, kind, payload string) error {
	var b strings.Builder
	b.WriteString("event: ")
	b.WriteString(kind)
	b.WriteString("\n")
	for _, line := range strings.Split(payload, "\n") {
		b.WriteString("data: ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteHeartbeat writes a no-op comment frame that keeps intermediary
// network hops from timing out an idle stream.
func WriteHeartbeat(w io.Writer) error {
	_, err := io.WriteString(w, ": heartbeat\n\n")
	return err
}
