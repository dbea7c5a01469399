// Package geoip resolves client IPs to the geo codes used by static ad
// targeting.
package geoip

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/oschwald/geoip2-golang"
)

// GeoIP looks up ISO country codes in a MaxMind database. When the file is
// not a MaxMind database it is read as a JSON list of
// {"net": CIDR, "country": code, "region": code} entries, which keeps tests
// and local setups free of the binary database.
type GeoIP struct {
	db    *geoip2.Reader
	table []entry
}

type entry struct {
	network *net.IPNet
	country string
	region  string
}

// Open loads the database at path.
func Open(path string) (*GeoIP, error) {
	db, err := geoip2.Open(path)
	if err == nil {
		return &GeoIP{db: db}, nil
	}
	table, terr := loadTable(path)
	if terr != nil {
		return nil, fmt.Errorf("open geoip database %s: %w", path, err)
	}
	return &GeoIP{table: table}, nil
}

func loadTable(path string) ([]entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rows []struct {
		Net     string `json:"net"`
		Country string `json:"country"`
		Region  string `json:"region"`
	}
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, err
	}
	table := make([]entry, 0, len(rows))
	for _, r := range rows {
		_, n, err := net.ParseCIDR(r.Net)
		if err != nil {
			return nil, fmt.Errorf("bad network %q: %w", r.Net, err)
		}
		table = append(table, entry{network: n, country: strings.ToUpper(r.Country), region: r.Region})
	}
	return table, nil
}

// Country returns the ISO country code of ip, or "" when unknown. A nil
// GeoIP knows nothing.
func (g *GeoIP) Country(ip net.IP) string {
	if g == nil || ip == nil {
		return ""
	}
	if g.db != nil {
		if rec, err := g.db.Country(ip); err == nil {
			return rec.Country.IsoCode
		}
		return ""
	}
	for _, e := range g.table {
		if e.network.Contains(ip) {
			return e.country
		}
	}
	return ""
}

// Region returns the first subdivision code of ip, or "". Country-only
// databases have no subdivisions.
func (g *GeoIP) Region(ip net.IP) string {
	if g == nil || ip == nil {
		return ""
	}
	if g.db != nil {
		if rec, err := g.db.City(ip); err == nil && len(rec.Subdivisions) > 0 {
			return rec.Subdivisions[0].IsoCode
		}
		return ""
	}
	for _, e := range g.table {
		if e.network.Contains(ip) {
			return e.region
		}
	}
	return ""
}

// Close releases the database.
func (g *GeoIP) Close() error {
	if g != nil && g.db != nil {
		return g.db.Close()
	}
	return nil
}
