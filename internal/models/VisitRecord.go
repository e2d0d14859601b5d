package models

import (
	"strings"
	"time"
)

const DayLayout = "2006-01-02"

type ClientClass string

const (
	ClassIOS     ClientClass = "iOS"
	ClassAndroid ClientClass = "Android"
	ClassWindows ClientClass = "Windows"
	ClassMac     ClientClass = "Mac"
	ClassLinux   ClientClass = "Linux"
	ClassOther   ClientClass = "Other"
)

var ClientClasses = []ClientClass{ClassIOS, ClassAndroid, ClassWindows, ClassMac, ClassLinux, ClassOther}

type VisitRecord struct {
	Group    string      `json:"group"`
	Day      string      `json:"day"`
	OriginID string      `json:"origin_id"`
	Class    ClientClass `json:"client_class"`
}

type DailyCount struct {
	Day           string `json:"date"`
	Visits        int    `json:"pv"`
	UniqueOrigins int    `json:"uv"`
}

// Day formats t as a local calendar day.
func Day(t time.Time) string {
	return t.Local().Format(DayLayout)
}

// WindowDays returns the n days ending at today, oldest first.
func WindowDays(today time.Time, n int) []string {
	days := make([]string, 0, n)
	for i := n - 1; i >= 0; i-- {
		days = append(days, Day(today.AddDate(0, 0, -i)))
	}
	return days
}

// ParseClientClass classifies a User-Agent header.
func ParseClientClass(userAgent string) ClientClass {
	if userAgent == "" {
		return ClassOther
	}
	ua := strings.ToLower(userAgent)
	if strings.Contains(ua, "mobile") || strings.Contains(ua, "android") ||
		strings.Contains(ua, "iphone") || strings.Contains(ua, "ipad") {
		if strings.Contains(ua, "iphone") || strings.Contains(ua, "ipad") {
			return ClassIOS
		}
		return ClassAndroid
	}
	switch {
	case strings.Contains(userAgent, "Windows"):
		return ClassWindows
	case strings.Contains(userAgent, "Macintosh"):
		return ClassMac
	case strings.Contains(userAgent, "Linux"):
		return ClassLinux
	}
	return ClassOther
}

// NormalizeClientClass maps arbitrary input onto a known class.
func NormalizeClientClass(s string) ClientClass {
	for _, c := range ClientClasses {
		if strings.EqualFold(string(c), s) {
			return c
		}
	}
	return ClassOther
}
