package sites

// TreatmentSite is a neighbourhood hosting a supervised consumption service.
type TreatmentSite struct {
	Neighborhood string `json:"neighborhood" yaml:"neighborhood"`
	OpeningYear  int    `json:"opening_year" yaml:"opening_year"`
}

// ControlSite is a default comparison neighbourhood.
type ControlSite struct {
	Neighborhood string `json:"neighborhood" yaml:"neighborhood"`
}

// Reference tables. Callers get copies through the accessor functions.
var (
	treatmentSites = []TreatmentSite{
		{Neighborhood: "Downtown Yonge East", OpeningYear: 2017},
		{Neighborhood: "South Riverdale", OpeningYear: 2017},
		{Neighborhood: "South Parkdale", OpeningYear: 2017},
		{Neighborhood: "Regent Park", OpeningYear: 2017},
		{Neighborhood: "Moss Park", OpeningYear: 2017},
		{Neighborhood: "West Queen West", OpeningYear: 2017},
	}

	controlSites = []ControlSite{
		{Neighborhood: "South Eglinton-Davisville"},
		{Neighborhood: "North Toronto"},
		{Neighborhood: "Dovercourt Village"},
		{Neighborhood: "Yonge-Bay Corridor"},
		{Neighborhood: "Black Creek"},
		{Neighborhood: "Pelmo Park-Humberlea"},
	}
)

// TreatmentSites returns the static treatment-site table.
func TreatmentSites() []TreatmentSite {
	out := make([]TreatmentSite, len(treatmentSites))
	copy(out, treatmentSites)
	return out
}

// ControlSites returns the static default control-site table.
func ControlSites() []ControlSite {
	out := make([]ControlSite, len(controlSites))
	copy(out, controlSites)
	return out
}

// IsDefaultControl reports whether name is one of the static control sites.
func IsDefaultControl(name string) bool {
	key := Normalize(name)
	if key == "" {
		return false
	}
	for _, s := range controlSites {
		if Normalize(s.Neighborhood) == key {
			return true
		}
	}
	return false
}
