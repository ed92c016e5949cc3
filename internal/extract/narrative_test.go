package extract

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFlattenHTML(t *testing.T) {
	content := `
	<html>
	<head><title>Complaint</title><style>p { color: red }</style></head>
	<body>
		<h1>Timeline</h1>
		<p>I reported the  <b>pay gap</b> on March 3.</p>
		<script>track()</script>
		<ul><li>Email to HR</li><li>Demotion on March 5</li></ul>
		Line one<br>Line two
	</body>
	</html>`

	text, err := FlattenHTML(content)
	if err != nil {
		t.Fatalf("FlattenHTML failed: %v", err)
	}

	want := "Timeline\n\nI reported the pay gap on March 3.\n\nEmail to HR\n\nDemotion on March 5\n\nLine one\n\nLine two"
	if text != want {
		t.Errorf("unexpected text:\n%q\nwant:\n%q", text, want)
	}
	for _, hidden := range []string{"track()", "color: red", "Complaint"} {
		if strings.Contains(text, hidden) {
			t.Errorf("expected %q to be skipped", hidden)
		}
	}
}

func TestReadNarrative(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"story.txt", "\xef\xbb\xbf  I was let go.\n", "I was let go."},
		{"story.md", "# Notes\n\n*Fired* on Friday.", "# Notes\n\n*Fired* on Friday."},
		{"story.HTML", "<p>Fired on <i>Friday</i>.</p>", "Fired on Friday."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name)
			if err := os.WriteFile(path, []byte(tt.content), 0o600); err != nil {
				t.Fatal(err)
			}
			got, err := ReadNarrative(path)
			if err != nil {
				t.Fatalf("ReadNarrative failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestReadNarrative_Errors(t *testing.T) {
	if _, err := ReadNarrative(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("expected error for missing file")
	}

	big := filepath.Join(t.TempDir(), "big.txt")
	if err := os.WriteFile(big, make([]byte, MaxNarrativeBytes+1), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadNarrative(big); !errors.Is(err, ErrNarrativeTooLarge) {
		t.Errorf("expected ErrNarrativeTooLarge, got %v", err)
	}
}
