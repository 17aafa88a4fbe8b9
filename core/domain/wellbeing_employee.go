package domain

import (
	"math"
	"time"
)

// Employee is a person whose chat messages are analyzed.
// Word counters only ever grow from message processing; an administrative
// reset is the only operation that lowers them.
type Employee struct {
	ID                int64     `json:"id"`
	FirstName         string    `json:"first_name"`
	LastName          string    `json:"last_name"`
	BirthDate         time.Time `json:"birth_date"`
	TotalWordsCount   int64     `json:"total_words_count"`
	ViolentWordsCount int64     `json:"violent_words_count"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// FullName returns "first last".
func (e *Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}

// ViolentWordsRatio is violent/total rounded to 4 decimals, 0 when no words were counted.
func (e *Employee) ViolentWordsRatio() float64 {
	if e.TotalWordsCount == 0 {
		return 0
	}
	ratio := float64(e.ViolentWordsCount) / float64(e.TotalWordsCount)
	return math.Round(ratio*10000) / 10000
}

// ViolentWordsPercent is the ratio as a percentage rounded to 2 decimals.
func (e *Employee) ViolentWordsPercent() float64 {
	return math.Round(e.ViolentWordsRatio()*100*100) / 100
}

// ViolentWordOccurrence is one recorded violent term from one message.
type ViolentWordOccurrence struct {
	ID         int64     `json:"id"`
	EmployeeID int64     `json:"employee_id"`
	Word       string    `json:"word"`
	Timestamp  time.Time `json:"timestamp"`
}

// EmployeeThemeCounter counts how often a theme appeared in an employee's in-scope messages.
type EmployeeThemeCounter struct {
	ID         int64  `json:"id"`
	EmployeeID int64  `json:"employee_id"`
	ThemeID    int64  `json:"theme_id"`
	ThemeName  string `json:"theme_name"`
	Count      int64  `json:"count"`
}

// NewEmployee holds the fields needed to provision an employee.
type NewEmployee struct {
	FirstName string
	LastName  string
	BirthDate time.Time
}

// EmployeeStats is the statistics view of a single employee.
type EmployeeStats struct {
	Employee           *Employee                `json:"employee"`
	ViolentWordsRatio  float64                  `json:"violent_words_ratio"`
	ViolentWordsPct    float64                  `json:"violent_words_percentage"`
	RecentViolentWords []*ViolentWordOccurrence `json:"recent_violent_words"`
	ThemeCounters      []*EmployeeThemeCounter  `json:"theme_counters"`
}
