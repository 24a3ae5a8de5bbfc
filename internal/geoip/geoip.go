// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package geoip annotates destination addresses with the ISO country code
// from a MaxMind database. Lookups never fail from the caller's point of view:
// an unknown address simply has no country.
package geoip

import (
	"net"
	"net/netip"
	"sync"

	"github.com/oschwald/geoip2-golang"

	"grimm.is/sphinx/internal/errors"
	"grimm.is/sphinx/internal/logging"
)

// countryReader is the subset of *geoip2.Reader the annotator uses.
type countryReader interface {
	Country(ip net.IP) (*geoip2.Country, error)
	Close() error
}

// Annotator resolves country codes.
type Annotator struct {
	mu     sync.Mutex
	db     countryReader
	logger *logging.Logger
}

// Open loads the database at path.
func Open(path string, logger *logging.Logger) (*Annotator, error) {
	db, err := geoip2.Open(path)
	if err != nil {
		return nil, errors.Attr(errors.Wrap(err, errors.KindValidation, "failed to open GeoIP database"), "path", path)
	}
	if logger == nil {
		logger = logging.WithComponent("geoip")
	}
	logger.Info("GeoIP database loaded", "path", path)
	return &Annotator{db: db, logger: logger}, nil
}

// Country returns the ISO code for addr, or "" when unknown.
func (a *Annotator) Country(addr netip.Addr) string {
	if a == nil || !addr.IsValid() {
		return ""
	}
	if addr.IsPrivate() || addr.IsLoopback() || addr.IsLinkLocalUnicast() {
		return ""
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.db == nil {
		return ""
	}

	rec, err := a.db.Country(net.IP(addr.AsSlice()))
	if err != nil {
		a.logger.Debug("GeoIP lookup failed", "addr", addr, "error", err)
		return ""
	}
	return rec.Country.IsoCode
}

// Close releases the database.
func (a *Annotator) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db = nil
	return err
}
