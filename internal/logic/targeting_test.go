package logic

import (
	"net/http/httptest"
	"testing"

	"github.com/patrickwarner/chatads/internal/geoip"
)

func TestDeviceTypeFromUA(t *testing.T) {
	tests := []struct {
		name string
		ua   string
		want string
	}{
		{
			name: "Windows Chrome",
			ua:   "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/100.0.4896.75 Safari/537.36",
			want: DeviceDesktop,
		},
		{
			name: "Mac Safari",
			ua:   "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/15.0 Safari/605.1.15",
			want: DeviceDesktop,
		},
		{
			name: "iPhone Safari",
			ua:   "Mozilla/5.0 (iPhone; CPU iPhone OS 15_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/15.0 Mobile/15E148 Safari/605.1.15",
			want: DeviceMobile,
		},
		{
			name: "Android Chrome",
			ua:   "Mozilla/5.0 (Linux; Android 11; SM-G975F) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/100.0.4896.58 Mobile Safari/537.36",
			want: DeviceMobile,
		},
		{
			name: "iPad Safari",
			ua:   "Mozilla/5.0 (iPad; CPU OS 15_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/15.0 Mobile/15E148 Safari/604.1",
			want: DeviceTablet,
		},
		{
			name: "Googlebot",
			ua:   "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)",
			want: "",
		},
		{name: "empty", ua: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeviceTypeFromUA(tt.ua); got != tt.want {
				t.Errorf("DeviceTypeFromUA() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.0.0.1:5555"
	if got := ClientIP(r).String(); got != "10.0.0.1" {
		t.Errorf("RemoteAddr: got %s", got)
	}
	r.Header.Set("X-Forwarded-For", "192.0.2.9, 10.0.0.2")
	if got := ClientIP(r).String(); got != "192.0.2.9" {
		t.Errorf("X-Forwarded-For: got %s", got)
	}
}

func TestInferTargeting(t *testing.T) {
	g, err := geoip.Open("../geoip/testdata/geo_table.json")
	if err != nil {
		t.Fatalf("geoip: %v", err)
	}
	r := httptest.NewRequest("GET", "/api/ads/static", nil)
	r.Header.Set("User-Agent", "Mozilla/5.0 (iPhone; CPU iPhone OS 15_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/15.0 Mobile/15E148 Safari/605.1.15")
	r.Header.Set("X-Forwarded-For", "198.51.100.3")

	device, geo := InferTargeting(r, g, "", "")
	if device != DeviceMobile || geo != "JP" {
		t.Errorf("inferred (%q, %q), want (mobile, JP)", device, geo)
	}

	device, geo = InferTargeting(r, g, DeviceDesktop, "US")
	if device != DeviceDesktop || geo != "US" {
		t.Errorf("explicit values overridden: (%q, %q)", device, geo)
	}

	_, geo = InferTargeting(r, nil, "", "")
	if geo != "" {
		t.Errorf("nil geoip should not infer geo, got %q", geo)
	}
}
