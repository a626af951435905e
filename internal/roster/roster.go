package roster

import (
	"encoding/csv"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/wellpulse/wellpulse-go/internal/models"
)

// Entry is one roster row: a staff member's registered identity.
type Entry struct {
	Name       string
	Team       string
	ExternalID string
	Gender     string
}

// Roster is the external staff registry, keyed by (name, team). It is a
// disambiguation signal and the source of external IDs and gender
// attributes; survey data never writes back to it.
type Roster struct {
	entries map[string]Entry
	byName  map[string][]Entry
	logger  *slog.Logger
}

// Load reads a roster CSV with a header row containing at least the columns
// name and team, plus optional id and gender columns. The roster only
// disambiguates identities and decorates records, so any load problem,
// whether a missing file, an unreadable header, or a header without the
// required columns, yields an empty roster and a warning: runs proceed
// without external IDs rather than failing.
func Load(path string) *Roster {
	r := &Roster{
		entries: make(map[string]Entry),
		byName:  make(map[string][]Entry),
		logger:  slog.Default().With("component", "roster"),
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			r.logger.Warn("roster file not found, participants will lack external IDs", "path", path)
		} else {
			r.logger.Warn("roster unreadable, participants will lack external IDs", "path", path, "error", err)
		}
		return r
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		r.logger.Warn("roster header unreadable, roster ignored", "path", path, "error", err)
		return r
	}
	cols := columnIndex(header)
	for _, required := range []string{"name", "team"} {
		if _, ok := cols[required]; !ok {
			r.logger.Warn("roster ignored, header lacks required column", "path", path, "column", required)
			return r
		}
	}

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			r.logger.Warn("skipping malformed roster row", "error", err)
			continue
		}
		entry := Entry{
			Name:       field(row, cols, "name"),
			Team:       field(row, cols, "team"),
			ExternalID: field(row, cols, "id"),
			Gender:     field(row, cols, "gender"),
		}
		if entry.Name == "" || entry.Team == "" {
			continue
		}
		r.add(entry)
	}

	r.logger.Info("roster loaded", "path", path, "entries", len(r.entries))
	return r
}

func columnIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return cols
}

func field(row []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (r *Roster) add(entry Entry) {
	key := models.ParticipantKey(entry.Name, entry.Team)
	if _, exists := r.entries[key]; exists {
		r.logger.Warn("duplicate roster entry ignored", "name", entry.Name, "team", entry.Team)
		return
	}
	r.entries[key] = entry
	r.byName[entry.Name] = append(r.byName[entry.Name], entry)
}

// Len returns the number of roster entries.
func (r *Roster) Len() int {
	return len(r.entries)
}

// Lookup returns the entry exactly matching (name, team).
func (r *Roster) Lookup(name, team string) (Entry, bool) {
	entry, ok := r.entries[models.ParticipantKey(name, team)]
	return entry, ok
}

// ByName returns all entries sharing a name, in file order.
func (r *Roster) ByName(name string) []Entry {
	return r.byName[strings.TrimSpace(name)]
}

// TeamsFor returns the registered teams for a name, in file order. This is
// the resolver's roster cross-reference signal.
func (r *Roster) TeamsFor(name string) []string {
	entries := r.ByName(name)
	teams := make([]string, 0, len(entries))
	for _, e := range entries {
		teams = append(teams, e.Team)
	}
	return teams
}

// Find locates the best roster entry for a participant: an exact
// (name, team) match first, then - only when the team is unknown - a
// name-only match provided it is unambiguous.
func (r *Roster) Find(name, team string) (Entry, bool) {
	if entry, ok := r.Lookup(name, team); ok {
		return entry, true
	}
	if models.TeamKnown(team) {
		return Entry{}, false
	}
	candidates := r.ByName(name)
	if len(candidates) == 1 {
		return candidates[0], true
	}
	return Entry{}, false
}
