package analysis

import (
	"github.com/sells-group/cts-trends/internal/crime"
	"github.com/sells-group/cts-trends/internal/sites"
)

// Groups holds the treatment and control record sets an engine compares.
type Groups struct {
	Treatment []*crime.Record
	Control   []*crime.Record
}

// Partition splits records into treatment and control groups. Records in
// neither group are dropped.
func Partition(records []*crime.Record, c *sites.Classifier) Groups {
	var g Groups
	for _, r := range records {
		switch {
		case c.IsTreatmentSite(r.Name()):
			g.Treatment = append(g.Treatment, r)
		case c.IsControlSite(r.Name()):
			g.Control = append(g.Control, r)
		}
	}
	return g
}

// PartitionCohort is Partition restricted to treatment sites opened in
// cohortYear. Sites opened in other years belong to neither group.
func PartitionCohort(records []*crime.Record, c *sites.Classifier, cohortYear int) Groups {
	var g Groups
	for _, r := range records {
		switch {
		case c.IsTreatmentSite(r.Name()):
			if c.InCohort(r.Name(), cohortYear) {
				g.Treatment = append(g.Treatment, r)
			}
		case c.IsControlSite(r.Name()):
			g.Control = append(g.Control, r)
		}
	}
	return g
}
