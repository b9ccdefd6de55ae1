package models

import (
	"time"
)

// Outcome is one priced side inside a bookmaker market
type Outcome struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// Market groups the outcomes a bookmaker offers for one bet type
type Market struct {
	Key      string    `json:"key"`
	Outcomes []Outcome `json:"outcomes"`
}

// Bookmaker is one bookmaker's set of markets for a matchup
type Bookmaker struct {
	Key     string   `json:"key"`
	Title   string   `json:"title"`
	Markets []Market `json:"markets"`
}

// Matchup is an upcoming contest as produced by the odds feed. It is read-only
// and never persisted.
type Matchup struct {
	ID           string      `json:"id"`
	SportKey     string      `json:"sport_key"`
	HomeSide     string      `json:"home_team"`
	AwaySide     string      `json:"away_team"`
	CommenceTime time.Time   `json:"commence_time"`
	Bookmakers   []Bookmaker `json:"bookmakers"`
}

// Label returns the display label used to identify the matchup
func (m *Matchup) Label() string {
	return m.HomeSide + " vs " + m.AwaySide
}
