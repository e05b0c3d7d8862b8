// Package naming derives display names and categories for ingested photos.
package naming

import (
	"fmt"
	"strings"
	"time"
)

// CategoryAbbrev maps category codes to the short tags used in photo names.
var CategoryAbbrev = map[string]string{
	"casing_fullview":  "CSG-FV",
	"casing_pressure":  "CSG-PR",
	"casing_reference": "CSG-RF",
	"tubing_fullview":  "TBG-FV",
	"tubing_pressure":  "TBG-PR",
	"tubing_reference": "TBG-RF",
	"overview":         "OVW",
	"signage":          "SGN",
	"equipment":        "EQP",
	"":                 "UNC",
}

// SmartName builds the name assigned at ingest time:
// CLI_JOB_YYYYMMDD_0001.webp, using the capture date when known.
func SmartName(client, job string, captureDate time.Time, counter int) string {
	return fmt.Sprintf("%s_%s_%s_%04d.webp",
		prefix(client), prefix(job), captureDate.UTC().Format("20060102"), counter)
}

// PhotoName builds the organized name used once a photo is assigned:
// CLI_JOB_WEL_TAG_YYYYMMDD_0001.webp.
func PhotoName(client, job, well, category string, captureTime time.Time, index int) string {
	w := well
	if w == "" {
		w = "UNK"
	}
	tag, ok := CategoryAbbrev[category]
	if !ok {
		tag = "UNC"
	}
	return fmt.Sprintf("%s_%s_%s_%s_%s_%04d.webp",
		prefix(client), prefix(job), prefix(w), tag, captureTime.UTC().Format("20060102"), index)
}

func prefix(s string) string {
	if len(s) > 3 {
		s = s[:3]
	}
	return strings.ToUpper(s)
}

// DetectCategory guesses a category code from filename keywords. No match
// returns the empty (unassigned) category.
func DetectCategory(filename string) string {
	lower := strings.ToLower(filename)
	switch {
	case strings.Contains(lower, "casing"):
		return qualify(lower, "casing")
	case strings.Contains(lower, "tubing"):
		return qualify(lower, "tubing")
	case strings.Contains(lower, "overview"):
		return "overview"
	case strings.Contains(lower, "sign"):
		return "signage"
	case strings.Contains(lower, "equipment"):
		return "equipment"
	}
	return ""
}

func qualify(lower, group string) string {
	switch {
	case strings.Contains(lower, "reference"), strings.Contains(lower, "manual"), strings.Contains(lower, "baseline"):
		return group + "_reference"
	case strings.Contains(lower, "pressure"), strings.Contains(lower, "digital"), strings.Contains(lower, "psi"):
		return group + "_pressure"
	}
	return group + "_fullview"
}
