package components

import "github.com/leapstack-labs/dataexplorer/internal/dashboard"

// Signals represents the signals sent from the frontend.
type Signals struct {
	Species string `json:"species"`
}

// PageData holds everything the full page render needs.
type PageData struct {
	Title        string
	FilterColumn string
	Views        *dashboard.Views
	IsDev        bool
}
