// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package firewall

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScript(t *testing.T) {
	got := Script("", 3)
	lines := strings.Split(strings.TrimSpace(got), "\n")

	want := []string{
		"add table ip sphinx",
		"add chain ip sphinx output { type filter hook output priority 0; policy accept; }",
		"flush chain ip sphinx output",
		`add rule ip sphinx output oifname "lo" accept comment "loopback"`,
		`add rule ip sphinx output queue num 3 bypass comment "sphinx"`,
	}
	assert.Equal(t, want, lines)
}

func TestScriptBuilder_ChainOrder(t *testing.T) {
	sb := NewScriptBuilder("my-table", "ip")
	sb.AddTable()
	sb.AddChain("b", "filter", "output", 0, "accept")
	sb.AddChain("a", "filter", "input", 0, "drop")
	sb.AddRule("a", "accept")
	sb.AddRule("b", "drop")

	out := sb.Build()
	assert.True(t, strings.HasPrefix(out, `add table ip "my-table"`))
	assert.Less(t, strings.Index(out, `"my-table" b drop`), strings.Index(out, `"my-table" a accept`),
		"rules follow chain creation order")
}

func TestQuote(t *testing.T) {
	assert.Equal(t, "sphinx", quote("sphinx"))
	assert.Equal(t, `"my table"`, quote("my table"))
	assert.Equal(t, `""`, quote(""))
}
