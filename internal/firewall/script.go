// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package firewall installs the nftables rules that hand outbound IPv4
// traffic to the sphinx queue, and removes them again.
package firewall

import (
	"fmt"
	"strings"
)

// Rule layout shared by the netlink installer and the script preview.
const (
	DefaultTable  = "sphinx"
	ChainName     = "output"
	LoopbackIface = "lo"
)

// ScriptBuilder renders a ruleset as an `nft -f` script. Objects are
// emitted tables first, then chains, then rules grouped by chain, so every
// object is defined before it is referenced.
type ScriptBuilder struct {
	tableName  string
	family     string
	tables     []string
	chains     []string
	rules      map[string][]string
	chainOrder []string
}

// NewScriptBuilder creates a builder for one table.
func NewScriptBuilder(tableName, family string) *ScriptBuilder {
	return &ScriptBuilder{
		tableName: tableName,
		family:    family,
		rules:     make(map[string][]string),
	}
}

func (sb *ScriptBuilder) AddTable() {
	sb.tables = append(sb.tables, fmt.Sprintf("add table %s %s", sb.family, quote(sb.tableName)))
}

func (sb *ScriptBuilder) AddChain(name, typeName, hook string, priority int, policy string) {
	sb.chains = append(sb.chains,
		fmt.Sprintf("add chain %s %s %s { type %s hook %s priority %d; policy %s; }",
			sb.family, quote(sb.tableName), quote(name), typeName, hook, priority, policy))
	sb.chainOrder = append(sb.chainOrder, name)
}

func (sb *ScriptBuilder) AddRule(chain, rule string, comment ...string) {
	if len(comment) > 0 && comment[0] != "" {
		rule += fmt.Sprintf(" comment %q", comment[0])
	}
	sb.rules[chain] = append(sb.rules[chain],
		fmt.Sprintf("add rule %s %s %s %s", sb.family, quote(sb.tableName), quote(chain), rule))
}

// Build returns the script.
func (sb *ScriptBuilder) Build() string {
	var lines []string
	lines = append(lines, sb.tables...)
	lines = append(lines, sb.chains...)

	// "add chain" is a no-op for an existing chain but "add rule" appends.
	for _, chain := range sb.chainOrder {
		lines = append(lines, fmt.Sprintf("flush chain %s %s %s", sb.family, quote(sb.tableName), quote(chain)))
	}
	for _, chain := range sb.chainOrder {
		lines = append(lines, sb.rules[chain]...)
	}
	return strings.Join(lines, "\n") + "\n"
}

// Script renders the rules Install would create.
func Script(table string, queue uint16) string {
	if table == "" {
		table = DefaultTable
	}
	sb := NewScriptBuilder(table, "ip")
	sb.AddTable()
	sb.AddChain(ChainName, "filter", "output", 0, "accept")
	sb.AddRule(ChainName, fmt.Sprintf("oifname %q accept", LoopbackIface), "loopback")
	sb.AddRule(ChainName, fmt.Sprintf("queue num %d bypass", queue), "sphinx")
	return sb.Build()
}

func quote(s string) string {
	if s == "" || strings.ContainsAny(s, " \t\"-.") {
		return fmt.Sprintf("%q", s)
	}
	return s
}
