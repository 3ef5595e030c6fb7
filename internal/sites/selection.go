package sites

import "sort"

// Selection is an immutable set of control neighbourhoods. Every mutator
// returns a new Selection and leaves the receiver untouched.
type Selection struct {
	// normalized key -> name as first supplied
	names map[string]string
}

// NewSelection builds a selection from display names. Blank names are dropped.
func NewSelection(names ...string) Selection {
	s := Selection{names: make(map[string]string, len(names))}
	for _, n := range names {
		s.add(n)
	}
	return s
}

// DefaultSelection returns the static control-site list as a selection.
func DefaultSelection() Selection {
	names := make([]string, len(controlSites))
	for i, c := range controlSites {
		names[i] = c.Neighborhood
	}
	return NewSelection(names...)
}

func (s *Selection) add(name string) {
	key := Normalize(name)
	if key == "" {
		return
	}
	if _, ok := s.names[key]; !ok {
		s.names[key] = name
	}
}

func (s Selection) clone() Selection {
	cp := Selection{names: make(map[string]string, len(s.names)+1)}
	for k, v := range s.names {
		cp.names[k] = v
	}
	return cp
}

// Contains reports whether name (after normalization) is selected.
func (s Selection) Contains(name string) bool {
	key := Normalize(name)
	if key == "" {
		return false
	}
	_, ok := s.names[key]
	return ok
}

// Toggle adds name if absent, removes it if present.
func (s Selection) Toggle(name string) Selection {
	cp := s.clone()
	key := Normalize(name)
	if key == "" {
		return cp
	}
	if _, ok := cp.names[key]; ok {
		delete(cp.names, key)
	} else {
		cp.names[key] = name
	}
	return cp
}

// SelectAll adds every name, keeping existing entries.
func (s Selection) SelectAll(names []string) Selection {
	cp := s.clone()
	for _, n := range names {
		cp.add(n)
	}
	return cp
}

// Clear returns an empty selection.
func (s Selection) Clear() Selection {
	return NewSelection()
}

// Names returns the selected display names sorted alphabetically.
func (s Selection) Names() []string {
	out := make([]string, 0, len(s.names))
	for _, n := range s.names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of selected neighbourhoods.
func (s Selection) Len() int { return len(s.names) }
