package models

// AdvertiserStatus gates whether an advertiser's ads may be published.
type AdvertiserStatus string

const (
	AdvertiserActive    AdvertiserStatus = "active"
	AdvertiserSuspended AdvertiserStatus = "suspended" // all ads paused, publishing blocked
)

// UnknownAdvertiserName is shown when an ad's owner cannot be resolved.
const UnknownAdvertiserName = "Unknown"

// Advertiser owns ads.
type Advertiser struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	Status     AdvertiserStatus `json:"status"`
	WebsiteURL string           `json:"websiteUrl,omitempty"`
	Meta       Meta             `json:"meta"`
}
