// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package formbackend

import (
	"github.com/mileusna/useragent"

	"github.com/olegiv/reclaim-go/internal/webhook"
)

// describeClient extracts browser, OS and device type from a user agent
// string. It returns nil for an empty string.
func describeClient(uaString string) *webhook.ClientInfo {
	if uaString == "" {
		return nil
	}
	ua := useragent.Parse(uaString)

	info := &webhook.ClientInfo{
		Browser: ua.Name,
		OS:      ua.OS,
	}
	if info.Browser == "" {
		info.Browser = "Unknown"
	}
	if info.OS == "" {
		info.OS = "Unknown"
	}

	switch {
	case ua.Mobile:
		info.Device = "mobile"
	case ua.Tablet:
		info.Device = "tablet"
	case ua.Bot:
		info.Device = "bot"
	default:
		info.Device = "desktop"
	}
	return info
}
