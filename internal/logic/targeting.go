package logic

import (
	"net"
	"net/http"
	"strings"

	"github.com/avct/uasurfer"

	"github.com/patrickwarner/chatads/internal/geoip"
)

// Device types accepted by static targeting.
const (
	DeviceDesktop = "desktop"
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
)

// DeviceTypeFromUA maps a User-Agent to a targeting device type. Devices
// outside desktop, mobile and tablet (TVs, consoles, bots) map to "".
func DeviceTypeFromUA(ua string) string {
	if ua == "" {
		return ""
	}
	u := uasurfer.Parse(ua)
	if u.IsBot() {
		return ""
	}
	switch u.DeviceType {
	case uasurfer.DeviceComputer:
		return DeviceDesktop
	case uasurfer.DevicePhone:
		return DeviceMobile
	case uasurfer.DeviceTablet:
		return DeviceTablet
	}
	return ""
}

// ClientIP returns the originating client address, preferring the first
// X-Forwarded-For hop over RemoteAddr.
func ClientIP(r *http.Request) net.IP {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
			return ip
		}
	}
	host := r.RemoteAddr
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return net.ParseIP(host)
}

// InferTargeting fills device type and geo the caller left empty from the
// request's User-Agent and client IP. Supplied values always win.
func InferTargeting(r *http.Request, g *geoip.GeoIP, deviceType, geo string) (string, string) {
	if deviceType == "" {
		deviceType = DeviceTypeFromUA(r.Header.Get("User-Agent"))
	}
	if geo == "" && g != nil {
		geo = g.Country(ClientIP(r))
	}
	return deviceType, geo
}
