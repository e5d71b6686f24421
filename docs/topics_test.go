package docs

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// listed matches the "* topic: description" lines of the readme.
var listed = regexp.MustCompile(`(?m)^\*\s+([^:]+):`)

func TestTopics(t *testing.T) {
	readme, err := GetTopic("readme")
	if err != nil {
		t.Fatal(err)
	}
	var inReadme []string
	for _, m := range listed.FindAllStringSubmatch(readme, -1) {
		inReadme = append(inReadme, strings.TrimSpace(m[1]))
	}
	slices.Sort(inReadme)
	all, err := GetAllTopics()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(all, inReadme); diff != "" {
		t.Errorf("topics listed in readme.md mismatch (-files +listed):\n%s", diff)
	}
	if _, err := GetTopic("payroll"); err == nil {
		t.Errorf("GetTopic(payroll) succeeded")
	}
}

// example is a fenced block of a topic that the tests execute or compare.
type example struct {
	info    string // "bash setup", "bash run", "bash check" or "console check"
	content string
	line    int
}

// examples returns the example blocks of the markdown source, in order.
func examples(source []byte) []example {
	var blocks []example
	root := goldmark.DefaultParser().Parse(text.NewReader(source))
	ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		fcb, ok := n.(*ast.FencedCodeBlock)
		if !entering || !ok || fcb.Info == nil {
			return ast.WalkContinue, nil
		}
		info := string(fcb.Info.Segment.Value(source))
		switch info {
		case "bash setup", "bash run", "bash check", "console check":
		default:
			return ast.WalkContinue, nil
		}
		var content strings.Builder
		for i := 0; i < fcb.Lines().Len(); i++ {
			line := fcb.Lines().At(i)
			content.Write(line.Value(source))
		}
		start := fcb.Info.Segment.Start
		blocks = append(blocks, example{info: info, content: content.String(), line: strings.Count(string(source[:start]), "\n") + 1})
		return ast.WalkContinue, nil
	})
	return blocks
}

// TestExamples runs the examples of every topic with a freshly built sbk.
// "bash setup" starts a new book, "console check" compares the output of the
// last "bash run", "bash check" must succeed.
func TestExamples(t *testing.T) {
	if testing.Short() {
		t.Skip("builds sbk")
	}
	bin := t.TempDir()
	if out, err := exec.Command("go", "build", "-o", filepath.Join(bin, "sbk"), "../sbk/").CombinedOutput(); err != nil {
		t.Fatalf("building sbk: %v\n%s", err, out)
	}
	// Later entries win over the inherited environment.
	env := append(os.Environ(),
		fmt.Sprintf("PATH=%s%c%s", bin, os.PathListSeparator, os.Getenv("PATH")),
		"SITEBOOK_STORE=dir",
		"SITEBOOK_PATH=book",
		"SITEBOOK_CURRENCY=USD",
		"SITEBOOK_LOG_LEVEL=error",
		"SITEBOOK_REBALANCE=false",
	)

	topics, err := GetAllTopics()
	if err != nil {
		t.Fatal(err)
	}
	for _, topic := range append(topics, "readme") {
		t.Run(topic, func(t *testing.T) {
			source, err := docs.ReadFile(topic + ".md")
			if err != nil {
				t.Fatal(err)
			}
			dir, last := t.TempDir(), ""
			for _, ex := range examples(source) {
				where := fmt.Sprintf("%s.md:%d", topic, ex.line)
				if ex.info == "console check" {
					if got, want := strings.TrimSpace(last), strings.TrimSpace(ex.content); got != want {
						t.Errorf("%s: output mismatch:\ngot:\n%s\nwant:\n%s", where, got, want)
					}
					continue
				}
				if ex.info == "bash setup" {
					dir = t.TempDir()
				}
				cmd := exec.Command("bash", "-c", "set -e; "+ex.content)
				cmd.Dir, cmd.Env = dir, env
				out, err := cmd.CombinedOutput()
				if ex.info == "bash run" {
					last = string(out)
				}
				if err != nil {
					t.Errorf("%s: %s failed: %v\n%s", where, ex.info, err, out)
					if ex.info != "bash check" {
						return
					}
				}
			}
		})
	}
}
