// Package report renders analysis results as text tables, JSON, YAML or an
// XLSX workbook.
package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sells-group/cts-trends/internal/analysis"
	"github.com/sells-group/cts-trends/internal/crime"
	"github.com/sells-group/cts-trends/internal/geo"
	"github.com/sells-group/cts-trends/internal/sites"
)

// Table is a titled grid of formatted cells.
type Table struct {
	// Name is a short identifier, used as the workbook sheet name.
	Name   string
	Title  string
	Header []string
	Rows   [][]string
}

func (t *Table) add(cells ...string) { t.Rows = append(t.Rows, cells) }

func itoa(n int) string { return strconv.Itoa(n) }

func ftoa(f float64) string { return analysis.Value(f).String() }

func pct(f float64) string { return strconv.FormatFloat(f, 'f', 0, 64) + "%" }

// IndexTable renders a baseline index series.
func IndexTable(points []analysis.IndexPoint, baselineYear int) Table {
	t := Table{
		Name:   "index",
		Title:  fmt.Sprintf("Violent crime index (%d = 100)", baselineYear),
		Header: []string{"YEAR", "CTS_INDEX", "CONTROL_INDEX"},
	}
	for _, p := range points {
		t.add(itoa(p.Year), p.Treatment.String(), p.Control.String())
	}
	return t
}

// DiDTable renders a difference-in-differences series.
func DiDTable(points []analysis.DiDPoint, cohortYear int) Table {
	t := Table{
		Name:   "did",
		Title:  fmt.Sprintf("Difference-in-differences (cohort %d)", cohortYear),
		Header: []string{"YEAR", "CTS_AREAS", "CONTROL_AREAS", "DIFFERENCE", "RELATIVE_CHANGE"},
	}
	for _, p := range points {
		t.add(itoa(p.Year), p.Treatment.String(), p.Control.String(), p.Difference.String(), p.RelativeChange.String())
	}
	return t
}

// TrendTable renders trend residuals.
func TrendTable(points []analysis.TrendPoint) Table {
	t := Table{
		Name:   "trend",
		Title:  "Deviation from linear trend",
		Header: []string{"YEAR", "CTS_DIFF", "CONTROL_DIFF"},
	}
	for _, p := range points {
		t.add(itoa(p.Year), p.Treatment.String(), p.Control.String())
	}
	return t
}

// ZoneTable renders distance-zone averages.
func ZoneTable(stats []analysis.ZoneStat, year int) Table {
	t := Table{
		Name:   "zones",
		Title:  fmt.Sprintf("Average violent crime by distance zone (%d)", year),
		Header: []string{"ZONE", "DESCRIPTION", "AVG_CRIME_RATE", "NEIGHBORHOODS"},
	}
	for _, s := range stats {
		t.add(itoa(int(s.Zone)), s.Description, ftoa(s.AvgCrimeRate), itoa(s.NeighborhoodCount))
	}
	return t
}

// ComparisonTable renders the near/far comparison.
func ComparisonTable(rows []analysis.ComparisonRow, opts analysis.CompareOptions) Table {
	km := opts.NearThresholdKM
	if km == 0 {
		km = analysis.DefaultNearThresholdKM
	}
	t := Table{
		Name:   "compare",
		Title:  fmt.Sprintf("Within %gkm of a CTS vs other areas", km),
		Header: []string{"CRIME_TYPE", "NEAR_CTS", "OTHER_AREAS", "DIFFERENCE", "CHANGE_NEAR", "CHANGE_OTHER"},
	}
	for _, r := range rows {
		t.add(r.CrimeType, ftoa(r.NearCTS), ftoa(r.OtherAreas), pct(r.PercentDifference), pct(r.ChangeNearCTS), pct(r.ChangeOtherAreas))
	}
	return t
}

// DistanceTable renders each neighbourhood's nearest-site distance.
func DistanceTable(rows []analysis.DistanceRow) Table {
	t := Table{
		Name:   "distances",
		Title:  "Distance to nearest CTS",
		Header: []string{"NEIGHBORHOOD", "DISTANCE_KM", "NEAREST_SITE", "ZONE"},
	}
	for _, r := range rows {
		km := "n/a"
		if r.DistanceKM.Defined() {
			km = strconv.FormatFloat(float64(r.DistanceKM), 'f', 2, 64)
		}
		t.add(r.Name, km, r.NearestSite, itoa(int(r.Zone)))
	}
	return t
}

// BoundsTable renders a bounding box with six decimals.
func BoundsTable(b geo.BBox) Table {
	deg := func(f float64) string { return strconv.FormatFloat(f, 'f', 6, 64) }
	return Table{
		Name:   "bounds",
		Title:  "Neighbourhood bounds",
		Header: []string{"MIN_LNG", "MIN_LAT", "MAX_LNG", "MAX_LAT"},
		Rows:   [][]string{{deg(b.MinLng), deg(b.MinLat), deg(b.MaxLng), deg(b.MaxLat)}},
	}
}

// CrimeTypeTable renders the per-type group totals.
func CrimeTypeTable(rows []analysis.CrimeTypeRow, year int) Table {
	t := Table{
		Name:   "crime_types",
		Title:  fmt.Sprintf("Crime by type (%d)", year),
		Header: []string{"TYPE", "CTS_AREAS", "CONTROL_AREAS"},
	}
	for _, r := range rows {
		t.add(r.CrimeType, itoa(r.Treatment), itoa(r.Control))
	}
	return t
}

// SummaryTable renders a neighbourhood card as one row per year.
func SummaryTable(s analysis.Summary) Table {
	role := "other"
	switch {
	case s.IsTreatment:
		role = "CTS site"
		if s.OpeningYear != nil {
			role = fmt.Sprintf("CTS site (opened %d)", *s.OpeningYear)
		}
	case s.IsControl:
		role = "control"
	}

	header := []string{"YEAR"}
	for _, ct := range crime.ViolentTypes {
		header = append(header, ct.String())
	}
	header = append(header, "TOTAL")

	t := Table{
		Name:   "neighborhood",
		Title:  fmt.Sprintf("%s: %s, latest %d, year-over-year %s%%", s.Name, role, s.LatestTotal, s.YearOverYearPct),
		Header: header,
	}
	for _, y := range s.Years {
		row := []string{itoa(y.Year)}
		for _, ct := range crime.ViolentTypes {
			row = append(row, itoa(y.Counts[strings.ToLower(ct.String())]))
		}
		row = append(row, itoa(y.Total))
		t.add(row...)
	}
	return t
}

// NeighborhoodRow is one search hit: the neighbourhood's group ("cts",
// "control" or empty) and its latest-year violent-crime total.
type NeighborhoodRow struct {
	Name          string `json:"name" yaml:"name"`
	Group         string `json:"group,omitempty" yaml:"group,omitempty"`
	LatestViolent int    `json:"latest_violent" yaml:"latest_violent"`
}

// NeighborhoodRows describes records under c.
func NeighborhoodRows(records []*crime.Record, c *sites.Classifier) []NeighborhoodRow {
	rows := make([]NeighborhoodRow, 0, len(records))
	for _, r := range records {
		row := NeighborhoodRow{
			Name:          r.Name(),
			LatestViolent: crime.SumTypesForYear(r, crime.ViolentTypes, crime.LastYear),
		}
		switch {
		case c.IsTreatmentSite(r.Name()):
			row.Group = "cts"
		case c.IsControlSite(r.Name()):
			row.Group = "control"
		}
		rows = append(rows, row)
	}
	return rows
}

// SearchTable lists neighbourhoods with their classification and latest
// violent-crime total.
func SearchTable(rows []NeighborhoodRow) Table {
	t := Table{
		Name:   "neighborhoods",
		Title:  "Neighbourhoods",
		Header: []string{"NEIGHBORHOOD", "GROUP", fmt.Sprintf("VIOLENT_%d", crime.LastYear)},
	}
	for _, r := range rows {
		t.add(r.Name, r.Group, itoa(r.LatestViolent))
	}
	return t
}

// ControlRow is a control candidate and whether it is a default control and
// part of the active selection.
type ControlRow struct {
	Name     string `json:"name" yaml:"name"`
	Default  bool   `json:"default" yaml:"default"`
	Selected bool   `json:"selected" yaml:"selected"`
}

// ControlRows marks each candidate against c's selection.
func ControlRows(candidates []string, c *sites.Classifier) []ControlRow {
	rows := make([]ControlRow, 0, len(candidates))
	for _, name := range candidates {
		rows = append(rows, ControlRow{
			Name:     name,
			Default:  sites.IsDefaultControl(name),
			Selected: c.IsControlSite(name),
		})
	}
	return rows
}

// ControlsTable lists control candidates and marks the active selection.
func ControlsTable(rows []ControlRow) Table {
	t := Table{
		Name:   "controls",
		Title:  "Control candidates",
		Header: []string{"NEIGHBORHOOD", "DEFAULT", "SELECTED"},
	}
	for _, r := range rows {
		t.add(r.Name, yesNo(r.Default), yesNo(r.Selected))
	}
	return t
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return ""
}
