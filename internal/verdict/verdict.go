// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package verdict holds the decisions a human made about (process, destination)
// pairs so later packets of the same pair are handled without asking again.
package verdict

import (
	"fmt"
	"strings"
)

// Verdict is the decision applied to a packet.
type Verdict int

const (
	// Drop discards the packet
	Drop Verdict = iota
	// Accept lets the packet pass
	Accept
)

func (v Verdict) String() string {
	switch v {
	case Accept:
		return "accept"
	case Drop:
		return "drop"
	default:
		return fmt.Sprintf("verdict(%d)", int(v))
	}
}

// Parse converts "accept" or "drop" into a Verdict.
func Parse(s string) (Verdict, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "accept":
		return Accept, nil
	case "drop":
		return Drop, nil
	default:
		return Drop, fmt.Errorf("unknown verdict %q (want accept or drop)", s)
	}
}

// MarshalText renders the verdict for JSON and logs.
func (v Verdict) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}
