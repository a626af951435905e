package resolve

import (
	"log/slog"
	"strings"

	"github.com/wellpulse/wellpulse-go/internal/models"
)

// Candidate is one respondent's declared identity for one week.
type Candidate struct {
	Name  string
	Team  string
	Role  string
	Phone string
	Email string
}

// RosterSource is the slice of the external roster the resolver needs: the
// registered teams for a given staff name.
type RosterSource interface {
	TeamsFor(name string) []string
}

// Matcher is one disambiguation rule. Matchers run in a fixed order and the
// first hit wins; a miss falls through to the next rule.
type Matcher interface {
	Name() string
	Match(c Candidate, store *Store) (string, bool)
}

// PhoneMatcher matches when exactly one existing record shares both the
// candidate's phone number and name.
type PhoneMatcher struct{}

func (PhoneMatcher) Name() string { return "phone" }

func (PhoneMatcher) Match(c Candidate, store *Store) (string, bool) {
	if c.Phone == "" {
		return "", false
	}
	name := strings.TrimSpace(c.Name)
	var matches []string
	for _, key := range store.Keys() {
		rec, _ := store.Get(key)
		if rec.Phone == c.Phone && rec.Name == name {
			matches = append(matches, key)
		}
	}
	if len(matches) == 1 {
		return matches[0], true
	}
	return "", false
}

// UniqueNameMatcher matches when the candidate's name is unique across all
// existing records. Names collide far more often than (name, team) pairs, so
// this rule only fires on an unambiguous population.
type UniqueNameMatcher struct{}

func (UniqueNameMatcher) Name() string { return "unique_name" }

func (UniqueNameMatcher) Match(c Candidate, store *Store) (string, bool) {
	matches := nameMatches(c, store)
	if len(matches) == 1 {
		return matches[0], true
	}
	return "", false
}

// RosterMatcher cross-references the external roster: if exactly one roster
// entry with the candidate's name maps to a team whose (name, team) key is
// already in the store, that key wins.
type RosterMatcher struct {
	Roster RosterSource
}

func (RosterMatcher) Name() string { return "roster" }

func (m RosterMatcher) Match(c Candidate, store *Store) (string, bool) {
	if m.Roster == nil {
		return "", false
	}
	name := strings.TrimSpace(c.Name)
	var matches []string
	for _, team := range m.Roster.TeamsFor(name) {
		key := models.ParticipantKey(name, team)
		if _, ok := store.Get(key); ok {
			matches = append(matches, key)
		}
	}
	if len(matches) == 1 {
		return matches[0], true
	}
	return "", false
}

// EmailMatcher matches a name-sharing record by stored email. Runs last: it
// only helps when several same-name records exist and one of them carries
// the candidate's email from an earlier week.
type EmailMatcher struct{}

func (EmailMatcher) Name() string { return "email" }

func (EmailMatcher) Match(c Candidate, store *Store) (string, bool) {
	if c.Email == "" {
		return "", false
	}
	for _, key := range nameMatches(c, store) {
		rec, _ := store.Get(key)
		if rec.Email == c.Email {
			return key, true
		}
	}
	return "", false
}

func nameMatches(c Candidate, store *Store) []string {
	name := strings.TrimSpace(c.Name)
	var matches []string
	for _, key := range store.Keys() {
		rec, _ := store.Get(key)
		if rec.Name == name {
			matches = append(matches, key)
		}
	}
	return matches
}

// Resolver assigns stable participant keys across weekly batches. Early
// weeks key directly on (name, team); late-week exports drop the team
// column, so blank-team candidates run through the matcher chain before a
// new record is created.
//
// An ambiguous fallthrough (several same-name records, no matcher hit) still
// creates a new record - it may duplicate a real person, so it is counted
// and logged with full candidate context for manual review.
type Resolver struct {
	store              *Store
	matchers           []Matcher
	logger             *slog.Logger
	ambiguousFallbacks int
}

// NewResolver creates a resolver over the given store. ros may be nil when
// no roster file is available; the roster rule then never fires.
func NewResolver(store *Store, ros RosterSource) *Resolver {
	return &Resolver{
		store: store,
		matchers: []Matcher{
			PhoneMatcher{},
			UniqueNameMatcher{},
			RosterMatcher{Roster: ros},
			EmailMatcher{},
		},
		logger: slog.Default().With("component", "identity_resolver"),
	}
}

// Store returns the resolver's participant store.
func (r *Resolver) Store() *Store {
	return r.store
}

// AmbiguousFallbacks returns how many candidates fell through to new-record
// creation despite multiple same-name records existing.
func (r *Resolver) AmbiguousFallbacks() int {
	return r.ambiguousFallbacks
}

// Resolve returns the participant key for a candidate, creating a new
// record when no existing one can be matched. Attaching the week's scores
// to the resolved record is the caller's responsibility.
func (r *Resolver) Resolve(c Candidate, lateWeek bool) string {
	defaultKey := models.ParticipantKey(c.Name, c.Team)
	if _, ok := r.store.Get(defaultKey); ok {
		return defaultKey
	}

	// Early weeks always carry a team, and a known team in any week makes
	// the (name, team) key authoritative.
	if !lateWeek || models.TeamKnown(c.Team) {
		return r.create(defaultKey, c)
	}

	for _, m := range r.matchers {
		if key, ok := m.Match(c, r.store); ok {
			r.logger.Debug("late-week candidate matched",
				"rule", m.Name(),
				"name", c.Name,
				"key", key,
			)
			return key
		}
	}

	if sameName := nameMatches(c, r.store); len(sameName) > 1 {
		r.ambiguousFallbacks++
		r.logger.Warn("ambiguous identity, creating new record",
			"name", c.Name,
			"phone", c.Phone,
			"email", c.Email,
			"same_name_keys", sameName,
			"new_key", defaultKey,
		)
	}
	return r.create(defaultKey, c)
}

func (r *Resolver) create(key string, c Candidate) string {
	rec := &models.ParticipantRecord{
		Name:         models.NormalizeField(c.Name),
		Team:         models.NormalizeField(c.Team),
		Role:         strings.TrimSpace(c.Role),
		Phone:        c.Phone,
		Email:        c.Email,
		WeeklyScores: make(map[string]*models.WeeklyScore),
	}
	r.store.Put(key, rec)
	return key
}
