// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package geoip

import (
	"fmt"
	"io"
	"net"
	"net/netip"
	"path/filepath"
	"testing"

	"github.com/oschwald/geoip2-golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grimm.is/sphinx/internal/errors"
	"grimm.is/sphinx/internal/logging"
)

type fakeDB struct {
	codes  map[string]string
	calls  int
	closed bool
}

func (f *fakeDB) Country(ip net.IP) (*geoip2.Country, error) {
	f.calls++
	code, ok := f.codes[ip.String()]
	if !ok {
		return nil, fmt.Errorf("not found: %s", ip)
	}
	rec := &geoip2.Country{}
	rec.Country.IsoCode = code
	return rec, nil
}

func (f *fakeDB) Close() error {
	f.closed = true
	return nil
}

func newTestAnnotator(db countryReader) *Annotator {
	logger := logging.New(logging.Config{Level: logging.LevelError, Output: io.Discard})
	return &Annotator{db: db, logger: logger}
}

func TestCountry(t *testing.T) {
	db := &fakeDB{codes: map[string]string{"192.30.253.125": "US"}}
	a := newTestAnnotator(db)

	assert.Equal(t, "US", a.Country(netip.MustParseAddr("192.30.253.125")))
	assert.Equal(t, "", a.Country(netip.MustParseAddr("8.8.8.8")), "lookup error yields no country")
	assert.Equal(t, 2, db.calls)

	// Local addresses are never looked up.
	assert.Equal(t, "", a.Country(netip.MustParseAddr("192.168.178.36")))
	assert.Equal(t, "", a.Country(netip.MustParseAddr("127.0.0.1")))
	assert.Equal(t, "", a.Country(netip.Addr{}))
	assert.Equal(t, 2, db.calls)
}

func TestCountry_NilAnnotator(t *testing.T) {
	var a *Annotator
	assert.Equal(t, "", a.Country(netip.MustParseAddr("1.1.1.1")))
}

func TestClose(t *testing.T) {
	db := &fakeDB{}
	a := newTestAnnotator(db)

	require.NoError(t, a.Close())
	assert.True(t, db.closed)
	require.NoError(t, a.Close(), "second close is a no-op")
	assert.Equal(t, "", a.Country(netip.MustParseAddr("1.1.1.1")))
}

func TestOpen_Missing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "GeoLite2-Country.mmdb"), nil)
	require.Error(t, err)
	assert.Equal(t, errors.KindValidation, errors.GetKind(err))
}
