package domain

// PsychologicalTheme is a named category matched by case-insensitive
// substring presence of its name in message text. Names are unique.
type PsychologicalTheme struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ThemeNames returns the names of themes in order.
func ThemeNames(themes []*PsychologicalTheme) []string {
	names := make([]string, 0, len(themes))
	for _, t := range themes {
		names = append(names, t.Name)
	}
	return names
}
