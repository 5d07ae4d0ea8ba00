package qualify

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Criteria is the pass/fail gate configuration. It is evaluated
// independently of the score buckets: a lead always receives a full score,
// but fails qualification if any enabled check fails.
type Criteria struct {
	MinScore       int      `yaml:"min_score" json:"min_score"`
	RequireEmail   bool     `yaml:"require_email" json:"require_email"`
	RequirePhone   bool     `yaml:"require_phone" json:"require_phone"`
	AllowedSizes   []string `yaml:"allowed_sizes" json:"allowed_sizes"`
	ExcludedStates []string `yaml:"excluded_states" json:"excluded_states"`
	MinDaysActive  int      `yaml:"min_days_active" json:"min_days_active"`
}

// CriteriaPatch is a partial criteria update. Nil fields keep the current
// value; set fields fully overwrite it (slices replace, never merge).
type CriteriaPatch struct {
	MinScore       *int      `yaml:"min_score" json:"min_score,omitempty"`
	RequireEmail   *bool     `yaml:"require_email" json:"require_email,omitempty"`
	RequirePhone   *bool     `yaml:"require_phone" json:"require_phone,omitempty"`
	AllowedSizes   *[]string `yaml:"allowed_sizes" json:"allowed_sizes,omitempty"`
	ExcludedStates *[]string `yaml:"excluded_states" json:"excluded_states,omitempty"`
	MinDaysActive  *int      `yaml:"min_days_active" json:"min_days_active,omitempty"`
}

// StandardCriteria returns the default gate used for regular plans.
func StandardCriteria() Criteria {
	return Criteria{
		MinScore:     50,
		RequirePhone: true,
		AllowedSizes: []string{"PEQUENA", "MEDIA", "GRANDE"},
	}
}

// PremiumCriteria returns the stricter gate used for premium lead lists.
func PremiumCriteria() Criteria {
	return Criteria{
		MinScore:      70,
		RequireEmail:  true,
		RequirePhone:  true,
		AllowedSizes:  []string{"MEDIA", "GRANDE"},
		MinDaysActive: 30,
	}
}

// LoadCriteria reads a criteria preset from a YAML file.
func LoadCriteria(path string) (Criteria, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Criteria{}, eris.Wrap(err, "qualify: read criteria file")
	}
	var c Criteria
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Criteria{}, eris.Wrap(err, "qualify: parse criteria file")
	}
	return c, nil
}

// apply merges the patch over c and returns the result.
func (c Criteria) apply(p CriteriaPatch) Criteria {
	if p.MinScore != nil {
		c.MinScore = *p.MinScore
	}
	if p.RequireEmail != nil {
		c.RequireEmail = *p.RequireEmail
	}
	if p.RequirePhone != nil {
		c.RequirePhone = *p.RequirePhone
	}
	if p.AllowedSizes != nil {
		c.AllowedSizes = append([]string(nil), (*p.AllowedSizes)...)
	}
	if p.ExcludedStates != nil {
		c.ExcludedStates = append([]string(nil), (*p.ExcludedStates)...)
	}
	if p.MinDaysActive != nil {
		c.MinDaysActive = *p.MinDaysActive
	}
	return c
}
