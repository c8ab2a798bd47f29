// Package domain holds the persistence-facing entities of the service.
package domain

import "time"

// Generation records one video generation request through its lifecycle. The
// row is written at submission and updated on every observed state change so
// the extension can recover in-flight work after a popup reload.
type Generation struct {
	ID             string
	State          string
	Model          string
	Prompt         string
	AspectRatio    string
	Duration       int
	TargetLanguage string
	Backend        string
	TaskID         string
	VideoURL       string
	Content        string
	ErrorMessage   string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
