package id

import (
	"hash/crc32"
	"strings"
	"sync"
	"time"
)

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// NowMs returns current time in milliseconds since Unix epoch. Overridable in tests.
var NowMs = func() int64 { return time.Now().UnixMilli() }

// Signature builds the command signature string for a command and its args.
func Signature(command string, args []string) string {
	if len(args) == 0 {
		return command
	}
	return command + " " + strings.Join(args, " ")
}

// Generator produces session ids that are strictly increasing in time per
// process, so two sessions started in the same millisecond do not collide.
type Generator struct {
	mu     sync.Mutex
	lastMs int64
}

// NewGenerator creates a new Generator.
func NewGenerator() *Generator { return &Generator{} }

// NewSessionID derives a session id of the form
// <project>_<sig-hash>_<ms-timestamp>.
func (g *Generator) NewSessionID(projectName, signature string) string {
	g.mu.Lock()
	ms := NowMs()
	if ms <= g.lastMs {
		ms = g.lastMs + 1
	}
	g.lastMs = ms
	g.mu.Unlock()

	var b strings.Builder
	b.WriteString(sanitize(projectName))
	b.WriteByte('_')
	b.WriteString(hashHex(signature))
	b.WriteByte('_')
	b.WriteString(itoa(ms))
	return b.String()
}

// sanitize lowercases the project name and keeps only [a-z0-9-].
func sanitize(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		case r == ' ', r == '_', r == '.':
			b.WriteByte('-')
		}
	}
	if b.Len() == 0 {
		return "session"
	}
	return b.String()
}

// hashHex returns an 8-char hex crc32c of s.
func hashHex(s string) string {
	const hexdigits = "0123456789abcdef"
	v := crc32.Checksum([]byte(s), castagnoli)
	out := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		out[i] = hexdigits[v&0x0f]
		v >>= 4
	}
	return string(out)
}

// itoa is a small fast int64 to string for non-negative numbers.
func itoa(i int64) string {
	if i == 0 {
		return "0"
	}
	var buf [20]byte
	bp := len(buf)
	for i > 0 {
		bp--
		buf[bp] = byte('0' + i%10)
		i /= 10
	}
	return string(buf[bp:])
}
