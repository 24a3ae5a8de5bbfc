// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package socktable

import (
	"net/netip"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const firefoxLine = `tcp   ESTAB      0      0                                                              192.168.178.36:57222                                                                      192.30.253.125:443                 users:(("firefox",pid=2704,fd=98))`

const ipv6Line = `tcp   LISTEN     0      128                                                                                                                             :::34071                                                                                                                                       :::*                   users:(("code",pid=3907,fd=41))`

func TestParseLine_Firefox(t *testing.T) {
	rec, ok := ParseLine(firefoxLine)
	require.True(t, ok)
	assert.Equal(t, "2704", rec.PID)
	assert.Equal(t, "firefox", rec.Process)
	assert.Equal(t, netip.MustParseAddr("192.168.178.36"), rec.Local)
	assert.Equal(t, netip.MustParseAddr("192.30.253.125"), rec.Remote)
}

func TestParseAddresses_IPv6(t *testing.T) {
	_, _, ok := parseAddresses(ipv6Line)
	assert.False(t, ok, "IPv6 rows must not yield addresses")

	_, ok = ParseLine(ipv6Line)
	assert.False(t, ok)
}

func TestParseLine_Partial(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"header", "Netid State  Recv-Q Send-Q Local Address:Port Peer Address:Port Process"},
		{"empty", ""},
		{"no pid", `tcp ESTAB 0 0 192.168.178.36:57222 192.30.253.125:443 users:(("firefox",fd=98))`},
		{"pid without digits", `tcp ESTAB 0 0 192.168.178.36:57222 192.30.253.125:443 users:(("firefox",pid=,fd=98))`},
		{"no process", `tcp ESTAB 0 0 192.168.178.36:57222 192.30.253.125:443 pid=2704`},
		{"empty process", `tcp ESTAB 0 0 192.168.178.36:57222 192.30.253.125:443 users:(("",pid=2704,fd=98))`},
		{"no users column", `tcp ESTAB 0 0 192.168.178.36:57222 192.30.253.125:443`},
		{"listener", `tcp LISTEN 0 128 0.0.0.0:22 0.0.0.0:* users:(("sshd",pid=812,fd=3))`},
		{"single address", `udp UNCONN 0 0 192.168.178.36:5353 users:(("avahi",pid=501,fd=12))`},
		{"malformed local", `tcp ESTAB 0 0 999.168.178.36:57222 192.30.253.125:443 users:(("firefox",pid=2704,fd=98))`},
		{"malformed remote", `tcp ESTAB 0 0 192.168.178.36:57222 192.30.253:443 users:(("firefox",pid=2704,fd=98))`},
		{"mapped ipv6", `tcp ESTAB 0 0 [::ffff:192.168.178.36]:57222 [::ffff:192.30.253.125]:443 users:(("java",pid=77,fd=9))`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, ok := ParseLine(tt.line)
			assert.False(t, ok)
			assert.Equal(t, Record{}, rec)
		})
	}
}

func TestParseLine_Variants(t *testing.T) {
	t.Run("first owner of shared socket", func(t *testing.T) {
		line := `tcp ESTAB 0 0 10.0.0.5:40000 10.0.0.9:5432 users:(("postgres",pid=10,fd=6),("postgres",pid=11,fd=6))`
		rec, ok := ParseLine(line)
		require.True(t, ok)
		assert.Equal(t, "10", rec.PID)
		assert.Equal(t, "postgres", rec.Process)
	})

	t.Run("interface scope on local address", func(t *testing.T) {
		line := `udp ESTAB 0 0 192.168.1.20%wlan0:68 192.168.1.1:67 users:(("NetworkManager",pid=640,fd=25))`
		rec, ok := ParseLine(line)
		require.True(t, ok)
		assert.Equal(t, netip.MustParseAddr("192.168.1.20"), rec.Local)
		assert.Equal(t, netip.MustParseAddr("192.168.1.1"), rec.Remote)
	})

	t.Run("process name with spaces and dashes", func(t *testing.T) {
		line := `tcp ESTAB 0 0 10.0.0.5:40000 1.1.1.1:853 users:(("Web Content-1",pid=3001,fd=40))`
		rec, ok := ParseLine(line)
		require.True(t, ok)
		assert.Equal(t, "Web Content-1", rec.Process)
	})
}

func TestParseIPv4(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"192.168.178.36", "192.168.178.36", true},
		{"0.0.0.0", "0.0.0.0", true},
		{"255.255.255.255", "255.255.255.255", true},
		{"256.1.1.1", "", false},
		{"1.2.3", "", false},
		{"1.2.3.4.5", "", false},
		{"01.2.3.4", "", false},
		{"1..3.4", "", false},
		{"1.2.3.4 ", "", false},
		{"a.b.c.d", "", false},
		{"::1", "", false},
		{"::ffff:1.2.3.4", "", false},
		{"", "", false},
		{"1234.1.1.1", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseIPv4(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, netip.MustParseAddr(tt.want), got)
				assert.True(t, got.Is4())
			}
		})
	}
}

func TestParse_MixedOutput(t *testing.T) {
	out := strings.Join([]string{
		"Netid State  Recv-Q Send-Q Local Address:Port Peer Address:Port Process",
		firefoxLine,
		ipv6Line,
		`tcp LISTEN 0 128 0.0.0.0:22 0.0.0.0:* users:(("sshd",pid=812,fd=3))`,
		`udp ESTAB 0 0 10.0.0.5:51000 8.8.8.8:53 users:(("systemd-resolve",pid=420,fd=14))`,
	}, "\n")

	records, err := Parse(strings.NewReader(out))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "firefox", records[0].Process)
	assert.Equal(t, "systemd-resolve", records[1].Process)
	assert.Equal(t, netip.MustParseAddr("8.8.8.8"), records[1].Remote)
}
