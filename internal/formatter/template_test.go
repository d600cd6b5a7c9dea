package formatter

import (
	"testing"
	"time"

	"github.com/cloudcurio/cloudcurio-installer/internal/history"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func finishedRun() VariableContext {
	started := now.Add(-3 * time.Minute)
	return VariableContext{
		Now: now,
		Entry: history.Entry{
			RunID:      "9b1deb4d-3b7d-4bad-9bdd-2b0d7b3dcb6d",
			Tags:       []string{"docker", "podman"},
			Command:    "ansible-playbook -i inventory/hosts.ini sites.yml --tags docker,podman",
			Status:     "failed",
			ExitCode:   2,
			HasExit:    true,
			StartedAt:  started,
			FinishedAt: started.Add(42 * time.Second),
			LogLines:   17,
			LastLine:   "PLAY RECAP",
		},
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		template string
		want     []string
		wantErr  bool
	}{
		{name: "empty template", template: "", want: []string{}},
		{name: "no variables", template: "plain text", want: []string{}},
		{name: "single variable", template: "Run {{run-id}}", want: []string{"run-id"}},
		{name: "duplicates collapse", template: "{{status}} {{tags}} {{status}}", want: []string{"status", "tags"}},
		{name: "unbalanced delimiters", template: "{{status} done", wantErr: true},
		{name: "unknown variable", template: "{{unread-count}}", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.template)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Variables())
		})
	}
}

func TestRender(t *testing.T) {
	ctx := finishedRun()

	tests := []struct {
		name     string
		template string
		want     string
	}{
		{name: "ids", template: "{{run-id}} {{short-id}}", want: "9b1deb4d-3b7d-4bad-9bdd-2b0d7b3dcb6d 9b1deb4d"},
		{name: "result", template: "{{status}} ({{exit-code}})", want: "failed (2)"},
		{name: "tags", template: "{{tag-count}}: {{tags}}", want: "2: docker,podman"},
		{name: "timing", template: "{{age}}, took {{duration}}", want: "3 minutes ago, took 42s"},
		{name: "output", template: "{{log-lines}} lines, last: {{last-line}}", want: "17 lines, last: PLAY RECAP"},
		{name: "no variables", template: "static", want: "static"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Render(tt.template, ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRenderRunningEntryLeavesBlanks(t *testing.T) {
	ctx := finishedRun()
	ctx.Entry.Status = "running"
	ctx.Entry.HasExit = false
	ctx.Entry.FinishedAt = time.Time{}

	got, err := Render("[{{exit-code}}][{{finished}}][{{duration}}]", ctx)
	require.NoError(t, err)
	assert.Equal(t, "[][][]", got)
}

func TestRenderUnknownVariable(t *testing.T) {
	_, err := Render("{{status}} {{unread-count}}", finishedRun())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown variable: unread-count")
	assert.Contains(t, err.Error(), "run-id")
}

func TestVariablesAreAllResolvable(t *testing.T) {
	for _, name := range Variables() {
		_, err := Render("{{"+name+"}}", finishedRun())
		assert.NoError(t, err, name)
	}
}
