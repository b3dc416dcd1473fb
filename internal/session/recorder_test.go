package session

import "github.com/theirongolddev/quotekit/internal/notify"

type entry struct {
	Message  string
	Severity notify.Severity
}

// recorder keeps every notification in memory.
type recorder struct {
	Entries []entry
}

func (r *recorder) Notify(message string, severity notify.Severity) {
	r.Entries = append(r.Entries, entry{Message: message, Severity: severity})
}

func (r *recorder) Last() (entry, bool) {
	if len(r.Entries) == 0 {
		return entry{}, false
	}
	return r.Entries[len(r.Entries)-1], true
}

func (r *recorder) Count(s notify.Severity) int {
	n := 0
	for _, e := range r.Entries {
		if e.Severity == s {
			n++
		}
	}
	return n
}
