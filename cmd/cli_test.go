package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	cfgpkg "github.com/KaramelBytes/tipscope/internal/config"
)

var tipsHead = filepath.Join("testdata", "tips_head.csv")

// resetFlags clears values and Changed state that persist between Execute
// calls on the shared command tree.
func resetFlags(c *cobra.Command) {
	c.Flags().VisitAll(func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	})
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func execCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	cfg = nil
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func runCmd(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execCmd(t, args...)
	if err != nil {
		t.Fatalf("command %v failed: %v", args, err)
	}
	return out
}

func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func TestCLI_AnalyzeMarkdownToFile(t *testing.T) {
	isolateHome(t)
	out := filepath.Join(t.TempDir(), "summary.md")
	runCmd(t, "analyze", tipsHead, "--correlations", "--group-by", "sex", "-o", out)

	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	body := string(b)
	for _, want := range []string{"[DATASET SUMMARY]", "Rows: 10", "[GROUPED AVERAGES]", "tip by sex:", "[CORRELATIONS]", "[HEAD AND SAMPLE ROWS]"} {
		if !strings.Contains(body, want) {
			t.Errorf("summary missing %q", want)
		}
	}
}

func TestCLI_AnalyzeFormats(t *testing.T) {
	isolateHome(t)
	html := runCmd(t, "analyze", tipsHead, "--format", "html")
	if !strings.Contains(html, "<html") || !strings.Contains(html, "DATASET SUMMARY") {
		t.Fatalf("html output missing page or summary:\n%s", html)
	}

	js := runCmd(t, "analyze", tipsHead, "--format", "json", "--sample-rows", "0")
	var rep struct {
		Rows    int `json:"rows"`
		Columns []struct {
			Name string `json:"name"`
			Kind string `json:"kind"`
		} `json:"columns"`
		Samples [][]string `json:"samples"`
	}
	if err := json.Unmarshal([]byte(js), &rep); err != nil {
		t.Fatalf("decode json: %v\n%s", err, js)
	}
	if rep.Rows != 10 || len(rep.Columns) != 7 {
		t.Fatalf("rows=%d cols=%d, want 10 and 7", rep.Rows, len(rep.Columns))
	}
	if len(rep.Samples) != 0 {
		t.Fatalf("samples should be suppressed, got %d", len(rep.Samples))
	}

	if _, err := execCmd(t, "analyze", tipsHead, "--format", "yaml"); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
}

func TestCLI_ExploreJSON(t *testing.T) {
	isolateHome(t)
	out := runCmd(t, "explore", tipsHead, "--category", "Sex", "--field", "tip", "--cell", "0,1", "--format", "json")

	var got struct {
		State struct {
			Category string `json:"category"`
			Field    string `json:"field"`
		} `json:"state"`
		Heatmap struct {
			Fields []string `json:"fields"`
			Cells  []struct {
				Value *float64 `json:"value"`
			} `json:"cells"`
		} `json:"heatmap"`
		Bars struct {
			Bars []struct {
				Category string  `json:"category"`
				Value    float64 `json:"value"`
				Count    int     `json:"count"`
			} `json:"bars"`
		} `json:"bars"`
		Scatter *struct {
			XField string `json:"x_field"`
			YField string `json:"y_field"`
			Points []any  `json:"points"`
		} `json:"scatter"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if got.State.Category != "sex" || got.State.Field != "tip" {
		t.Fatalf("state = %+v", got.State)
	}
	if len(got.Heatmap.Fields) != 3 || len(got.Heatmap.Cells) != 9 {
		t.Fatalf("heatmap fields=%v cells=%d", got.Heatmap.Fields, len(got.Heatmap.Cells))
	}
	if v := got.Heatmap.Cells[0].Value; v == nil || *v < 0.999999 {
		t.Fatalf("diagonal = %v, want 1", v)
	}
	if len(got.Bars.Bars) != 2 || got.Bars.Bars[0].Category != "Female" || got.Bars.Bars[0].Count != 2 {
		t.Fatalf("bars = %+v", got.Bars.Bars)
	}
	if d := got.Bars.Bars[0].Value - 2.31; d > 1e-9 || d < -1e-9 {
		t.Fatalf("Female mean tip = %v, want 2.31", got.Bars.Bars[0].Value)
	}
	if got.Scatter == nil || got.Scatter.XField != "tip" || got.Scatter.YField != "total_bill" || len(got.Scatter.Points) != 10 {
		t.Fatalf("scatter = %+v", got.Scatter)
	}
}

func TestCLI_ExploreText(t *testing.T) {
	isolateHome(t)
	out := runCmd(t, "explore", tipsHead, "--category", "day")
	for _, want := range []string{"[HEATMAP]", "[BARS] tip (Average) by day", "Sun", "[SCATTER] no cell selected"} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q:\n%s", want, out)
		}
	}
}

func TestCLI_ExploreRejectsBadSelection(t *testing.T) {
	isolateHome(t)
	for _, args := range [][]string{
		{"explore", tipsHead, "--category", "weekday"},
		{"explore", tipsHead, "--field", "bill"},
		{"explore", tipsHead, "--cell", "3,0"},
		{"explore", filepath.Join(t.TempDir(), "missing.csv")},
	} {
		if _, err := execCmd(t, args...); err == nil {
			t.Errorf("%v: expected error", args)
		}
	}
}

func TestCLI_RenderWritesPNGs(t *testing.T) {
	isolateHome(t)
	dir := t.TempDir()
	runCmd(t, "render", tipsHead, "--cell", "1,2", "-o", dir)

	for _, name := range []string{"bars.png", "scatter.png"} {
		b, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		if !bytes.HasPrefix(b, []byte("\x89PNG")) {
			t.Fatalf("%s is not a PNG", name)
		}
	}
}

func TestCLI_ConfigSetAndShow(t *testing.T) {
	home := isolateHome(t)
	runCmd(t, "config", "set", "default_category", "Day")
	runCmd(t, "config", "set", "low_color", "#abc")

	if _, err := os.Stat(filepath.Join(home, ".tipscope", "config.yaml")); err != nil {
		t.Fatalf("config not saved: %v", err)
	}
	c, err := cfgpkg.Load("")
	if err != nil {
		t.Fatalf("reload config: %v", err)
	}
	if c.DefaultCategory != "day" || c.LowColor != "#aabbcc" {
		t.Fatalf("saved values = %q %q", c.DefaultCategory, c.LowColor)
	}

	if _, err := execCmd(t, "config", "set", "default_field", "bill"); err == nil {
		t.Fatalf("expected error for unknown field")
	}
	if _, err := execCmd(t, "config", "set", "nope", "1"); err == nil {
		t.Fatalf("expected error for unknown key")
	}

	cfg = c
	var out bytes.Buffer
	configShowCmd.SetOut(&out)
	defer configShowCmd.SetOut(nil)
	if err := configShowCmd.RunE(configShowCmd, nil); err != nil {
		t.Fatalf("show: %v", err)
	}
	if !strings.Contains(out.String(), "default_category: day") {
		t.Fatalf("show output:\n%s", out.String())
	}
}

func TestOpenSession_NeverReturnsInertSession(t *testing.T) {
	isolateHome(t)
	resetFlags(rootCmd)
	cfg = nil

	sess, err := openSession(exploreCmd, []string{filepath.Join(t.TempDir(), "missing.csv")}, "", "", 1)
	if err == nil || sess != nil {
		t.Fatalf("missing file: sess=%v err=%v, want nil session and an error", sess, err)
	}

	sess, err = openSession(exploreCmd, []string{tipsHead}, "", "", 1)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if !sess.Ready() || sess.Outputs() == nil {
		t.Fatalf("session has no outputs")
	}
}
