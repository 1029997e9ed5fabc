package validate

import (
	"strings"

	"github.com/sessamekesh/blockbridge/pkg/errors"
)

// DefaultDeniedCommands are server commands a classroom script must never run.
var DefaultDeniedCommands = []string{
	"stop",
	"op",
	"deop",
	"ban",
	"ban-ip",
	"pardon",
	"kick",
	"whitelist",
	"save-all",
	"save-on",
	"save-off",
	"reload",
}

// Denylist filters raw server commands by the first token of every line.
// Anything not listed is allowed.
// TODO (sessamekesh): Replace with an allowlist once the mod publishes its command catalog.
type Denylist struct {
	denied map[string]struct{}
}

// CreateDenylist always denies DefaultDeniedCommands; extra only adds to them.
func CreateDenylist(extra []string) *Denylist {
	denied := make(map[string]struct{}, len(DefaultDeniedCommands)+len(extra))
	for _, cmd := range append(append([]string{}, DefaultDeniedCommands...), extra...) {
		token := normalizeToken(cmd)
		if token == "" {
			continue
		}
		denied[token] = struct{}{}
	}

	return &Denylist{
		denied: denied,
	}
}

func (d *Denylist) Check(raw string) error {
	lines := strings.FieldsFunc(raw, func(r rune) bool { return r == '\n' || r == '\r' })
	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		token := normalizeToken(fields[0])
		if _, has := d.denied[token]; has {
			return &errors.CommandRejected{
				Command: raw,
				Token:   token,
			}
		}
	}
	return nil
}

func (d *Denylist) Len() int {
	return len(d.denied)
}

func normalizeToken(token string) string {
	token = strings.ToLower(strings.TrimSpace(token))
	token = strings.TrimLeft(token, "/")
	return strings.TrimPrefix(token, "minecraft:")
}
