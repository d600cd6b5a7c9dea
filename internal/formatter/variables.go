package formatter

import (
	"strconv"
	"strings"
	"time"

	"github.com/cloudcurio/cloudcurio-installer/internal/history"
	"github.com/dustin/go-humanize"
)

// VariableContext is one install run plus the clock used for relative times.
type VariableContext struct {
	Entry history.Entry
	Now   time.Time
}

type variable struct {
	name    string
	resolve func(ctx VariableContext) string
}

// variables in the order they are listed to users.
var variables = []variable{
	{"run-id", func(c VariableContext) string { return c.Entry.RunID }},
	{"short-id", func(c VariableContext) string { return shortID(c.Entry.RunID) }},
	{"status", func(c VariableContext) string { return c.Entry.Status }},
	{"tags", func(c VariableContext) string { return strings.Join(c.Entry.Tags, ",") }},
	{"tag-count", func(c VariableContext) string { return strconv.Itoa(len(c.Entry.Tags)) }},
	{"exit-code", func(c VariableContext) string {
		if !c.Entry.HasExit {
			return ""
		}
		return strconv.Itoa(c.Entry.ExitCode)
	}},
	{"started", func(c VariableContext) string { return c.Entry.StartedAt.Format(time.RFC3339) }},
	{"finished", func(c VariableContext) string {
		if c.Entry.FinishedAt.IsZero() {
			return ""
		}
		return c.Entry.FinishedAt.Format(time.RFC3339)
	}},
	{"age", func(c VariableContext) string { return humanize.RelTime(c.Entry.StartedAt, c.Now, "ago", "from now") }},
	{"duration", func(c VariableContext) string {
		if c.Entry.FinishedAt.IsZero() {
			return ""
		}
		return c.Entry.Duration().Round(time.Second).String()
	}},
	{"log-lines", func(c VariableContext) string { return strconv.Itoa(c.Entry.LogLines) }},
	{"last-line", func(c VariableContext) string { return c.Entry.LastLine }},
	{"command", func(c VariableContext) string { return c.Entry.Command }},
}

// Variables returns the names of all template variables.
func Variables() []string {
	names := make([]string, len(variables))
	for i, v := range variables {
		names[i] = v.name
	}
	return names
}

func lookup(name string) (func(VariableContext) string, bool) {
	for _, v := range variables {
		if v.name == name {
			return v.resolve, true
		}
	}
	return nil, false
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
