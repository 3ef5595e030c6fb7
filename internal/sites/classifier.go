package sites

// Classifier answers treatment/control membership for neighbourhood names.
// The zero value is not usable; build one with NewClassifier.
type Classifier struct {
	treatment []TreatmentSite
	controls  Selection
}

// ClassifierOption configures a Classifier.
type ClassifierOption func(*Classifier)

// WithControls replaces the default control list with sel. An empty
// selection means no control neighbourhoods.
func WithControls(sel Selection) ClassifierOption {
	return func(c *Classifier) {
		c.controls = sel
	}
}

// WithTreatmentSites replaces the static treatment table.
func WithTreatmentSites(ts []TreatmentSite) ClassifierOption {
	return func(c *Classifier) {
		c.treatment = append([]TreatmentSite(nil), ts...)
	}
}

// NewClassifier creates a classifier over the static reference tables,
// adjusted by opts.
func NewClassifier(opts ...ClassifierOption) *Classifier {
	c := &Classifier{
		treatment: TreatmentSites(),
		controls:  DefaultSelection(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var defaultClassifier = NewClassifier()

// Default returns the classifier over the static tables.
func Default() *Classifier { return defaultClassifier }

// Controls returns the active control selection.
func (c *Classifier) Controls() Selection { return c.controls }

// TreatmentSites returns the active treatment table.
func (c *Classifier) TreatmentSites() []TreatmentSite {
	return append([]TreatmentSite(nil), c.treatment...)
}

func (c *Classifier) lookup(name string) (TreatmentSite, bool) {
	key := Normalize(name)
	if key == "" {
		return TreatmentSite{}, false
	}
	for _, s := range c.treatment {
		if Normalize(s.Neighborhood) == key {
			return s, true
		}
	}
	return TreatmentSite{}, false
}

// IsTreatmentSite reports whether name hosts a treatment site.
func (c *Classifier) IsTreatmentSite(name string) bool {
	_, ok := c.lookup(name)
	return ok
}

// IsControlSite reports whether name is in the active control selection.
// Treatment neighbourhoods are never controls, even if selected.
func (c *Classifier) IsControlSite(name string) bool {
	if c.IsTreatmentSite(name) {
		return false
	}
	return c.controls.Contains(name)
}

// OpeningYear returns the treatment site's opening year if name matches one.
func (c *Classifier) OpeningYear(name string) (int, bool) {
	s, ok := c.lookup(name)
	if !ok {
		return 0, false
	}
	return s.OpeningYear, true
}

// InCohort reports whether name is a treatment site opened in year.
func (c *Classifier) InCohort(name string, year int) bool {
	y, ok := c.OpeningYear(name)
	return ok && y == year
}

// IsTreatmentSite reports whether name hosts a treatment site in the static table.
func IsTreatmentSite(name string) bool { return defaultClassifier.IsTreatmentSite(name) }

// IsControlSite reports whether name is a default control site.
func IsControlSite(name string) bool { return defaultClassifier.IsControlSite(name) }

// OpeningYear returns the static treatment site's opening year for name.
func OpeningYear(name string) (int, bool) { return defaultClassifier.OpeningYear(name) }
