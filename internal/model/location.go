package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownLocation is returned when a name does not match a dining hall.
var ErrUnknownLocation = errors.New("unknown location")

// Location is one of the dining halls whose menus are published.
type Location string

const (
	Berkshire Location = "Berkshire"
	Worcester Location = "Worcester"
	Franklin  Location = "Franklin"
	Hampshire Location = "Hampshire"
)

// AllLocations lists every dining hall in canonical processing order.
var AllLocations = []Location{Berkshire, Worcester, Franklin, Hampshire}

const menuBaseURL = "https://umassdining.com/menu/"

var menuPaths = map[Location]string{
	Berkshire: "berkshire-grab-n-go-menu",
	Worcester: "worcester-menu",
	Franklin:  "franklin-menu",
	Hampshire: "hampshire-menu",
}

// BaseURL returns the menu page for the location.
func (l Location) BaseURL() string {
	return menuBaseURL + menuPaths[l]
}

// Rank returns the position of l in AllLocations, or -1.
func (l Location) Rank() int {
	for i, loc := range AllLocations {
		if loc == l {
			return i
		}
	}
	return -1
}

func (l Location) Valid() bool { return l.Rank() >= 0 }

func (l Location) String() string { return string(l) }

// ParseLocation matches s against the known dining halls, ignoring case.
func ParseLocation(s string) (Location, error) {
	s = strings.TrimSpace(s)
	for _, loc := range AllLocations {
		if strings.EqualFold(s, string(loc)) {
			return loc, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownLocation, s)
}

// ParseLocations parses a comma separated list. An empty list means every location.
func ParseLocations(list string) ([]Location, error) {
	if strings.TrimSpace(list) == "" {
		return append([]Location(nil), AllLocations...), nil
	}
	var out []Location
	seen := make(map[Location]bool)
	for _, part := range strings.Split(list, ",") {
		loc, err := ParseLocation(part)
		if err != nil {
			return nil, err
		}
		if !seen[loc] {
			seen[loc] = true
			out = append(out, loc)
		}
	}
	SortLocations(out)
	return out, nil
}

// SortLocations orders locs canonically in place.
func SortLocations(locs []Location) {
	for i := 1; i < len(locs); i++ {
		for j := i; j > 0 && locs[j].Rank() < locs[j-1].Rank(); j-- {
			locs[j], locs[j-1] = locs[j-1], locs[j]
		}
	}
}
