// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

//go:build linux

package socktable

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSocketInode(t *testing.T) {
	inode, ok := socketInode("socket:[123456]")
	assert.True(t, ok)
	assert.Equal(t, uint32(123456), inode)

	for _, target := range []string{"pipe:[42]", "/dev/null", "socket:[]", "socket:[12", "anon_inode:[eventfd]"} {
		_, ok := socketInode(target)
		assert.False(t, ok, target)
	}
}

func TestToAddr(t *testing.T) {
	addr, ok := toAddr(net.ParseIP("192.30.253.125"))
	assert.True(t, ok)
	assert.Equal(t, "192.30.253.125", addr.String())

	_, ok = toAddr(net.ParseIP("2001:db8::1"))
	assert.False(t, ok)
}
