package enrichment

import (
	"strings"

	"github.com/dgraph-io/ristretto"
)

const UnknownValue = "Unknown"

const (
	DeviceDesktop = "Desktop"
	DeviceMobile  = "Mobile"
	DeviceTablet  = "Tablet"
)

type DeviceInfo struct {
	DeviceType string
	OsName     string
}

// UserAgentParser classifies user agent strings into a device type and an
// operating system. Real traffic repeats a small set of user agents, so
// classification results sit behind an LRU/LFU cache.
type UserAgentParser struct {
	cache *ristretto.Cache
}

func NewUserAgentParser() (*UserAgentParser, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10_000,
		MaxCost:     1_000,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &UserAgentParser{cache: cache}, nil
}

func (p *UserAgentParser) Parse(userAgent string) DeviceInfo {
	if cached, found := p.cache.Get(userAgent); found {
		if info, ok := cached.(DeviceInfo); ok {
			return info
		}
	}
	info := classify(userAgent)
	p.cache.Set(userAgent, info, 1)
	return info
}

func classify(userAgent string) DeviceInfo {
	info := DeviceInfo{DeviceType: UnknownValue, OsName: UnknownValue}

	switch {
	case strings.Contains(userAgent, "iPad"):
		info.DeviceType = DeviceTablet
	case strings.Contains(userAgent, "Mobile"),
		strings.Contains(userAgent, "Android"),
		strings.Contains(userAgent, "iPhone"):
		info.DeviceType = DeviceMobile
	case strings.Contains(userAgent, "Windows"),
		strings.Contains(userAgent, "Macintosh"),
		strings.Contains(userAgent, "X11"),
		strings.Contains(userAgent, "Linux"):
		info.DeviceType = DeviceDesktop
	}

	switch {
	case strings.Contains(userAgent, "Windows NT 10.0"):
		info.OsName = "Windows 10"
	case strings.Contains(userAgent, "Windows NT"):
		info.OsName = "Windows (Older)"
	case strings.Contains(userAgent, "Macintosh; Intel Mac OS X"):
		info.OsName = "macOS"
	case strings.Contains(userAgent, "Android"):
		info.OsName = "Android"
	case strings.Contains(userAgent, "iPhone"), strings.Contains(userAgent, "iPad"):
		info.OsName = "iOS"
	case strings.Contains(userAgent, "Ubuntu"), strings.Contains(userAgent, "Linux"):
		info.OsName = "Linux"
	}

	return info
}
