package controller

import "github.com/couchcryptid/aew-track-map/internal/domain"

// View is what the page shows outside the map canvas.
type View struct {
	Year        string    `json:"year"`
	Month       string    `json:"month"`
	PointsOnly  bool      `json:"points_only"`
	Loaded      bool      `json:"loaded"`
	Status      string    `json:"status"`
	Count       string    `json:"count"`
	Shown       int       `json:"shown"`
	Highlighted *int      `json:"highlighted,omitempty"`
	Info        InfoPanel `json:"info"`
}

// InfoPanel describes the clicked sample.
type InfoPanel struct {
	Visible   bool            `json:"visible"`
	Date      string          `json:"date"`
	Vorticity string          `json:"vorticity"`
	SystemID  string          `json:"system_id,omitempty"`
	Track     *domain.Summary `json:"track,omitempty"`
	Cyclone   *CyclonePanel   `json:"cyclone,omitempty"`
}

// CyclonePanel is the supplementary section for tracks that became named storms.
type CyclonePanel struct {
	Name        string `json:"name"`
	GenesisDate string `json:"genesis_date"`
}

func (p InfoPanel) clone() InfoPanel {
	if p.Track != nil {
		t := *p.Track
		p.Track = &t
	}
	if p.Cyclone != nil {
		cy := *p.Cyclone
		p.Cyclone = &cy
	}
	return p
}
