// Package qualify scores and gates prospective leads.
//
// The score is an additive 0-100 value over four independent buckets
// (company size, contact availability, data completeness, location). The
// pass/fail gate is evaluated separately against a Criteria value, so a
// disqualified lead still carries its full score for ranking.
package qualify

import (
	"math"
	"regexp"
	"sort"
	"sync"
	"time"

	"github.com/CaioMigueldeSaRodrigues/ai-assistpro/internal/model"
)

// Tier is the coarse quality bucket derived from a score.
type Tier string

const (
	TierA Tier = "A" // score >= 80
	TierB Tier = "B" // score >= 60
	TierC Tier = "C" // score >= 40
	TierD Tier = "D"
)

// Result is the outcome of qualifying a single lead. It is derived and
// never persisted; identical input and criteria always produce an
// identical Result.
type Result struct {
	Score     int      `json:"score"`
	Qualified bool     `json:"qualified"`
	Reasons   []string `json:"reasons"`
	Tier      Tier     `json:"tier"`
}

// ScoredLead pairs a lead with its qualification for ranked output.
type ScoredLead struct {
	model.Lead
	Qualification Result `json:"qualification"`
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// majorCities are the urban centers worth the full location bucket.
// Stored pre-folded; compared accent-insensitively.
var majorCities = []string{
	"SAO PAULO", "RIO DE JANEIRO", "BRASILIA", "BELO HORIZONTE",
	"CURITIBA", "PORTO ALEGRE", "SALVADOR", "FORTALEZA", "RECIFE",
}

// priorityStates earn a partial location score.
var priorityStates = map[string]bool{
	"SP": true, "RJ": true, "MG": true, "RS": true, "PR": true, "SC": true,
}

// Qualifier evaluates leads against a mutable Criteria. Safe for
// concurrent use; criteria replacement takes effect on the next call.
type Qualifier struct {
	mu       sync.RWMutex
	criteria Criteria

	// now allows tests to pin the clock for the days-active check.
	now func() time.Time
}

// New creates a Qualifier with the given gate criteria.
func New(c Criteria) *Qualifier {
	return &Qualifier{criteria: c, now: time.Now}
}

// Criteria returns a copy of the current gate criteria.
func (q *Qualifier) Criteria() Criteria {
	q.mu.RLock()
	defer q.mu.RUnlock()
	c := q.criteria
	c.AllowedSizes = append([]string(nil), c.AllowedSizes...)
	c.ExcludedStates = append([]string(nil), c.ExcludedStates...)
	return c
}

// ReplaceCriteria merges the patch over the held criteria. Unset patch
// fields keep their prior values.
func (q *Qualifier) ReplaceCriteria(p CriteriaPatch) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.criteria = q.criteria.apply(p)
}

// Qualify scores the lead and evaluates the pass/fail gate. Malformed or
// absent fields contribute zero points rather than failing.
func (q *Qualifier) Qualify(lead model.Lead) Result {
	q.mu.RLock()
	criteria := q.criteria
	now := q.now()
	q.mu.RUnlock()

	score := 0
	var reasons []string

	pts, reason := scoreSize(lead.PorteDaEmpresa)
	score += pts
	if reason != "" {
		reasons = append(reasons, reason)
	}

	pts, contactReasons := scoreContact(lead)
	score += pts
	reasons = append(reasons, contactReasons...)

	pts, reason = scoreCompleteness(lead)
	score += pts
	if reason != "" {
		reasons = append(reasons, reason)
	}

	pts, reason = scoreLocation(lead.UF, lead.Municipio)
	score += pts
	if reason != "" {
		reasons = append(reasons, reason)
	}

	return Result{
		Score:     score,
		Qualified: passesGate(lead, score, criteria, now),
		Reasons:   reasons,
		Tier:      tierFor(score),
	}
}

// FilterQualified keeps only leads whose qualification gate passes.
func (q *Qualifier) FilterQualified(leads []model.Lead) []model.Lead {
	var out []model.Lead
	for _, l := range leads {
		if q.Qualify(l).Qualified {
			out = append(out, l)
		}
	}
	return out
}

// RankByScore annotates every lead with its qualification and sorts
// descending by score. Equal scores keep their input order.
func (q *Qualifier) RankByScore(leads []model.Lead) []ScoredLead {
	out := make([]ScoredLead, len(leads))
	for i, l := range leads {
		out[i] = ScoredLead{Lead: l, Qualification: q.Qualify(l)}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Qualification.Score > out[j].Qualification.Score
	})
	return out
}

// scoreSize awards up to 30 points for the company-size label.
func scoreSize(porte string) (int, string) {
	if porte == "" {
		return 0, ""
	}
	switch {
	case containsFold(porte, "GRANDE"):
		return 30, "large company"
	case containsFold(porte, "MEDIA"):
		return 25, "medium company"
	case containsFold(porte, "PEQUENA"):
		return 20, "small company"
	case containsFold(porte, "MEI"), containsFold(porte, "MICRO"):
		return 10, "micro company"
	}
	return 5, ""
}

// scoreContact awards up to 40 points for reachable contact channels.
func scoreContact(lead model.Lead) (int, []string) {
	score := 0
	var reasons []string
	if validEmail(lead.Email) {
		score += 20
		reasons = append(reasons, "valid email available")
	}
	if validPhone(lead.Telefone1) {
		score += 15
		reasons = append(reasons, "valid primary phone")
	}
	if validPhone(lead.Telefone2) {
		score += 5
		reasons = append(reasons, "secondary phone available")
	}
	return score, reasons
}

// completenessFields is the set of fields counted toward the 20-point
// completeness bucket.
const completenessFields = 7

func scoreCompleteness(lead model.Lead) (int, string) {
	present := 0
	for _, f := range []string{
		lead.RazaoSocial,
		lead.PorteDaEmpresa,
		lead.Email,
		lead.Telefone1,
		lead.Municipio,
		lead.CNAEFiscalPrincipal,
		lead.DataInicioAtividade,
	} {
		if f != "" {
			present++
		}
	}
	score := present * 20 / completenessFields
	if score >= 15 {
		return score, "complete record"
	}
	return score, ""
}

// scoreLocation awards up to 10 points: major city > priority state > rest.
func scoreLocation(uf, municipio string) (int, string) {
	if municipio != "" {
		for _, city := range majorCities {
			if containsFold(municipio, city) {
				return 10, "major urban center"
			}
		}
	}
	if priorityStates[foldUpper(uf)] {
		return 5, "priority state"
	}
	return 3, ""
}

func tierFor(score int) Tier {
	switch {
	case score >= 80:
		return TierA
	case score >= 60:
		return TierB
	case score >= 40:
		return TierC
	}
	return TierD
}

// passesGate evaluates every enabled criteria check. All checks are
// AND-ed; the first failure decides.
func passesGate(lead model.Lead, score int, c Criteria, now time.Time) bool {
	if score < c.MinScore {
		return false
	}
	if c.RequireEmail && !validEmail(lead.Email) {
		return false
	}
	if c.RequirePhone && !validPhone(lead.Telefone1) {
		return false
	}
	if lead.PorteDaEmpresa != "" && len(c.AllowedSizes) > 0 {
		allowed := false
		for _, size := range c.AllowedSizes {
			if containsFold(lead.PorteDaEmpresa, size) {
				allowed = true
				break
			}
		}
		if !allowed {
			return false
		}
	}
	for _, uf := range c.ExcludedStates {
		if foldUpper(uf) == foldUpper(lead.UF) {
			return false
		}
	}
	if c.MinDaysActive > 0 && daysActive(lead.DataInicioAtividade, now) < c.MinDaysActive {
		return false
	}
	return true
}

func validEmail(email string) bool {
	return email != "" && emailPattern.MatchString(email)
}

// validPhone accepts Brazilian numbers: 10 or 11 digits once separators
// are stripped.
func validPhone(phone string) bool {
	n := len(digitsOnly(phone))
	return n >= 10 && n <= 11
}

// daysActive computes elapsed days since the incorporation date, rounding
// up. An unparseable date degrades to 0 rather than erroring.
func daysActive(dataInicio string, now time.Time) int {
	start, err := time.Parse("2006-01-02", dataInicio)
	if err != nil {
		return 0
	}
	diff := now.Sub(start).Hours() / 24
	return int(math.Ceil(math.Abs(diff)))
}
