package cli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/speakerbox/pkg/config"
	"github.com/matzehuels/speakerbox/pkg/enclosure"
	"github.com/matzehuels/speakerbox/pkg/errors"
	"github.com/matzehuels/speakerbox/pkg/pipeline"
	"github.com/matzehuels/speakerbox/pkg/render/panel/sink"
	"github.com/matzehuels/speakerbox/pkg/store"
)

// testCLI returns a non-interactive CLI whose config, cache and store live
// in a temporary directory.
func testCLI(t *testing.T, edit func(*config.Config)) (*CLI, string) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", dir)
	cfg := config.Default(dir)
	if edit != nil {
		edit(&cfg)
	}
	path := filepath.Join(dir, config.FileName)
	if err := config.WriteFile(path, cfg, false); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}

	c := New(&bytes.Buffer{}, LogInfo)
	c.interactive = func() bool { return false }
	c.configPath = path
	return c, dir
}

func execute(t *testing.T, c *CLI, args ...string) error {
	t.Helper()
	path := c.configPath
	root := c.RootCommand()
	root.SetArgs(append([]string{"--config", path}, args...))
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	return root.ExecuteContext(context.Background())
}

func TestCalculateWritesDXF(t *testing.T) {
	c, dir := testCLI(t, nil)
	out := filepath.Join(dir, "out", "box")

	if err := execute(t, c, "calculate", "--fs", "40", "--qts", "0.4", "--vas", "50", "-o", out); err != nil {
		t.Fatalf("calculate error: %v", err)
	}

	data, err := os.ReadFile(out + ".dxf")
	if err != nil {
		t.Fatalf("read dxf: %v", err)
	}
	want, _ := sink.GenerateLayout(2.9, 4.6, 1.8, 12)
	if string(data) != want {
		t.Error("calculate wrote a different sheet than the 2.9 × 4.6 × 1.8 layout")
	}
}

func TestCalculateFormats(t *testing.T) {
	c, dir := testCLI(t, nil)
	out := filepath.Join(dir, "sub.dxf")

	err := execute(t, c, "calc", "--fs", "35", "--qts", "0.38", "--vas", "60", "-t", "vented", "-f", "dxf,json,dot", "-o", out)
	if err != nil {
		t.Fatalf("calculate error: %v", err)
	}
	for _, name := range []string{"sub.dxf", "sub.json", "sub.dot"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
}

func TestCalculateErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"missing vas", []string{"--fs", "40", "--qts", "0.4"}, errors.ErrCodeMissingInput},
		{"infeasible", []string{"--fs", "40", "--qts", "0.8", "--vas", "50"}, errors.ErrCodeInfeasibleDesign},
		{"bad topology", []string{"--fs", "40", "--qts", "0.4", "--vas", "50", "-t", "bandpass"}, errors.ErrCodeInvalidTopology},
		{"bad format", []string{"--fs", "40", "--qts", "0.4", "--vas", "50", "-f", "stl"}, errors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, dir := testCLI(t, nil)
			args := append([]string{"calculate", "-o", filepath.Join(dir, "box")}, tt.args...)
			err := execute(t, c, args...)
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
			if _, serr := os.Stat(filepath.Join(dir, "box.dxf")); serr == nil {
				t.Error("file written despite error")
			}
		})
	}
}

func TestCalculateSaveAndManage(t *testing.T) {
	c, _ := testCLI(t, nil)
	out := filepath.Join(t.TempDir(), "box")

	if err := execute(t, c, "calculate", "--fs", "40", "--qts", "0.4", "--vas", "50", "-o", out, "--save", "living room", "--text", "Fs 40"); err != nil {
		t.Fatalf("calculate --save error: %v", err)
	}

	calcs, err := c.listCalculations(context.Background())
	if err != nil {
		t.Fatalf("listCalculations() error: %v", err)
	}
	if len(calcs) != 1 || calcs[0].Name != "living room" || calcs[0].ParsedText != "Fs 40" {
		t.Fatalf("saved calculations = %+v", calcs)
	}
	id := calcs[0].ID

	if err := execute(t, c, "saved", "list"); err != nil {
		t.Errorf("saved list error: %v", err)
	}
	if err := execute(t, c, "saved", "show", id[:8]); err != nil {
		t.Errorf("saved show error: %v", err)
	}

	reout := filepath.Join(t.TempDir(), "again")
	if err := execute(t, c, "saved", "show", "living room", "-o", reout); err != nil {
		t.Fatalf("saved show -o error: %v", err)
	}
	if _, err := os.Stat(reout + ".dxf"); err != nil {
		t.Errorf("re-render missing: %v", err)
	}

	if err := execute(t, c, "saved", "delete", id); err == nil {
		t.Error("delete without --yes should fail without a terminal")
	}
	if err := execute(t, c, "saved", "delete", id, "--yes"); err != nil {
		t.Fatalf("saved delete error: %v", err)
	}
	if err := execute(t, c, "saved", "show", id); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("show after delete = %v, want NOT_FOUND", err)
	}
}

func TestLayoutDefaults(t *testing.T) {
	c, dir := testCLI(t, nil)
	out := filepath.Join(dir, "raw")

	if err := execute(t, c, "layout", "-o", out); err != nil {
		t.Fatalf("layout error: %v", err)
	}
	data, err := os.ReadFile(out + ".dxf")
	if err != nil {
		t.Fatalf("read dxf: %v", err)
	}
	want, _ := sink.GenerateLayout(3, 4.8, 1.8, 12)
	if string(data) != want {
		t.Error("blank layout inputs should use the 3 × 4.8 × 1.8 cm defaults")
	}
}

func TestLayoutConfigDefaults(t *testing.T) {
	c, dir := testCLI(t, func(cfg *config.Config) {
		cfg.Defaults.WidthCm = 30
		cfg.Defaults.DriverDiameterCm = 16.5
	})
	out := filepath.Join(dir, "raw")

	if err := execute(t, c, "layout", "--height", "48", "-o", out); err != nil {
		t.Fatalf("layout error: %v", err)
	}
	data, _ := os.ReadFile(out + ".dxf")
	want, _ := sink.GenerateLayout(30, 48, 1.8, 16.5)
	if string(data) != want {
		t.Error("layout ignored config defaults or flags")
	}
}

func TestLayoutNegativeDimension(t *testing.T) {
	c, dir := testCLI(t, nil)
	err := execute(t, c, "layout", "--depth", "-2", "-o", filepath.Join(dir, "raw"))
	if !errors.Is(err, errors.ErrCodeNonPositiveGeometry) {
		t.Errorf("error = %v, want NON_POSITIVE_GEOMETRY", err)
	}
}

func TestExtractCalculate(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"fs\": 40, \"qts\": \"0.4\", \"vas\": \"50 L\"}"}}]}`))
	}))
	defer srv.Close()

	c, dir := testCLI(t, func(cfg *config.Config) {
		cfg.Extract.Endpoint = srv.URL
		cfg.Extract.APIKey = "sk-config"
	})
	out := filepath.Join(dir, "extracted")

	err := execute(t, c, "extract", "--text", "Fs 40 Hz Qts 0.4 Vas 50 L", "--calculate", "-o", out, "--save", "datasheet")
	if err != nil {
		t.Fatalf("extract --calculate error: %v", err)
	}
	if auth != "Bearer sk-config" {
		t.Errorf("Authorization = %q", auth)
	}
	if _, err := os.Stat(out + ".dxf"); err != nil {
		t.Errorf("missing dxf: %v", err)
	}
	calcs, _ := c.listCalculations(context.Background())
	if len(calcs) != 1 || calcs[0].ParsedText != "Fs 40 Hz Qts 0.4 Vas 50 L" {
		t.Errorf("saved = %+v", calcs)
	}
}

func TestExtractRequiresKey(t *testing.T) {
	c, _ := testCLI(t, nil)
	err := execute(t, c, "extract", "--text", "Fs 40")
	if !errors.Is(err, errors.ErrCodeUnauthorized) {
		t.Errorf("error = %v, want UNAUTHORIZED", err)
	}
}

func TestExtractReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sheet.txt")
	os.WriteFile(path, []byte("Qts 0.4"), 0644)

	text, err := readText("", []string{path})
	if err != nil || text != "Qts 0.4" {
		t.Errorf("readText() = %q, %v", text, err)
	}
	if text, _ := readText("inline", []string{path}); text != "inline" {
		t.Errorf("--text should win over the file, got %q", text)
	}
}

func TestConfigInit(t *testing.T) {
	c := New(&bytes.Buffer{}, LogInfo)
	c.configPath = filepath.Join(t.TempDir(), "nested", "config.toml")

	if err := execute(t, c, "config", "init"); err != nil {
		t.Fatalf("config init error: %v", err)
	}
	if err := execute(t, c, "config", "init"); !errors.Is(err, errors.ErrCodeConflict) {
		t.Errorf("second init = %v, want CONFLICT", err)
	}
	if err := execute(t, c, "config", "init", "--force"); err != nil {
		t.Errorf("init --force error: %v", err)
	}
}

func TestConfigFlagKeepsPath(t *testing.T) {
	c, dir := testCLI(t, func(cfg *config.Config) {
		cfg.Defaults.DriverDiameterCm = 16.5
	})
	path := c.configPath
	c.RootCommand()
	if c.configPath != path {
		t.Fatalf("configPath = %q after RootCommand, want %q", c.configPath, path)
	}

	if err := execute(t, c, "layout", "-o", filepath.Join(dir, "box")); err != nil {
		t.Fatalf("layout error: %v", err)
	}
	cfg, err := c.config()
	if err != nil {
		t.Fatalf("config() error: %v", err)
	}
	if cfg.Defaults.DriverDiameterCm != 16.5 {
		t.Errorf("DriverDiameterCm = %v, want 16.5 from %s", cfg.Defaults.DriverDiameterCm, path)
	}
	if !strings.HasPrefix(cfg.Cache.Dir, dir) {
		t.Errorf("cache dir %q outside %q", cfg.Cache.Dir, dir)
	}
}

func TestCacheCommands(t *testing.T) {
	c, dir := testCLI(t, nil)
	if err := execute(t, c, "calculate", "--fs", "40", "--qts", "0.4", "--vas", "50", "-o", filepath.Join(dir, "box")); err != nil {
		t.Fatalf("calculate error: %v", err)
	}
	if err := execute(t, c, "cache", "info"); err != nil {
		t.Errorf("cache info error: %v", err)
	}
	if err := execute(t, c, "cache", "clear"); err != nil {
		t.Errorf("cache clear error: %v", err)
	}
	cfg, _ := c.config()
	n := 0
	filepath.WalkDir(cfg.Cache.Dir, func(path string, d os.DirEntry, err error) error {
		if err == nil && !d.IsDir() {
			n++
		}
		return nil
	})
	if n != 0 {
		t.Errorf("%d cache files left after clear", n)
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct{ in, want string }{
		{"", defaultOutputBase},
		{"box", "box"},
		{"box.dxf", "box"},
		{"dir/box.svg", "dir/box"},
		{"box.assembly.svg", "box"},
		{"dir/box.assembly.svg", "dir/box"},
		{"box.txt", "box.txt"},
	}
	for _, tt := range tests {
		if got := basePath(tt.in); got != tt.want {
			t.Errorf("basePath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseFormats(t *testing.T) {
	if got := parseFormats(""); len(got) != 1 || got[0] != pipeline.FormatDXF {
		t.Errorf("parseFormats(\"\") = %v", got)
	}
	if got := parseFormats(" dxf, svg ,,json"); strings.Join(got, "|") != "dxf|svg|json" {
		t.Errorf("parseFormats() = %v", got)
	}
}

func TestCompleteDriverNonInteractive(t *testing.T) {
	c, _ := testCLI(t, nil)
	topo := ""
	_, err := c.completeDriver(driverOf(40, 0, 50), &topo, false)
	if !errors.Is(err, errors.ErrCodeMissingInput) || !strings.Contains(err.Error(), "qts") {
		t.Errorf("error = %v, want MISSING_INPUT naming qts", err)
	}
}

func TestPositiveNumber(t *testing.T) {
	check := positiveNumber("fs")
	for _, in := range []string{"40", " 38.5 "} {
		if err := check(in); err != nil {
			t.Errorf("positiveNumber(%q) error: %v", in, err)
		}
	}
	for _, in := range []string{"", "abc", "0", "-3"} {
		if err := check(in); err == nil {
			t.Errorf("positiveNumber(%q) should fail", in)
		}
	}
}

func TestFindCalculation(t *testing.T) {
	c, _ := testCLI(t, nil)
	ctx := context.Background()
	st, _ := c.openStore(ctx)
	a, _ := st.Save(ctx, store.Calculation{Name: "a", Fs: 40, Qts: 0.4, Vas: 50, Topology: "sealed", WidthCm: 2.9, HeightCm: 4.6, DepthCm: 1.8, VolumeLiters: 23.5})
	st.Close()

	if got, err := c.findCalculation(ctx, a.ID[:6]); err != nil || got.ID != a.ID {
		t.Errorf("prefix lookup = %v, %v", got.ID, err)
	}
	if _, err := c.findCalculation(ctx, a.ID[:2]); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("short prefix should not match, got %v", err)
	}
	if got, _ := c.findCalculation(ctx, "a"); got.ID != a.ID {
		t.Error("name lookup failed")
	}
}

func TestCalculationListModel(t *testing.T) {
	now := time.Now()
	calcs := []store.Calculation{
		{ID: "1", Name: "one", Topology: "sealed", CreatedAt: now},
		{ID: "2", Name: "two", Topology: "ported", CreatedAt: now.Add(-time.Hour)},
	}
	var m tea.Model = NewCalculationListModel(calcs)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if got := m.(CalculationListModel).Cursor; got != 1 {
		t.Errorf("cursor = %d, want 1 (clamped)", got)
	}
	if view := m.View(); !strings.Contains(view, "two") || !strings.Contains(view, "[2/2]") {
		t.Errorf("View() missing rows:\n%s", view)
	}

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if sel := m.(CalculationListModel).Selected; sel == nil || sel.ID != "2" {
		t.Errorf("Selected = %+v", sel)
	}
	if cmd == nil {
		t.Error("enter should quit")
	}
}

func TestFormatRelativeTime(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{10 * time.Second, "just now"},
		{5 * time.Minute, "5m ago"},
		{3 * time.Hour, "3h ago"},
		{50 * time.Hour, "2d ago"},
	}
	for _, tt := range tests {
		if got := formatRelativeTime(now.Add(-tt.ago), now); got != tt.want {
			t.Errorf("formatRelativeTime(-%v) = %q, want %q", tt.ago, got, tt.want)
		}
	}
}

func TestFormatBytes(t *testing.T) {
	for n, want := range map[int64]string{512: "512 B", 2048: "2.0 KB", 3 << 20: "3.0 MB"} {
		if got := formatBytes(n); got != want {
			t.Errorf("formatBytes(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestWriteYAML(t *testing.T) {
	r := pipeline.NewRunner(nil, nil, nil)
	res, err := r.Execute(context.Background(), pipeline.Options{Fs: 40, Qts: 0.4, Vas: 50, Topology: "sealed"})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	var buf bytes.Buffer
	if err := writeYAML(&buf, newDesignReport(res, []string{"speaker_box.dxf"})); err != nil {
		t.Fatalf("writeYAML() error: %v", err)
	}
	for _, want := range []string{"topology: sealed", "cut_list:", "name: Front Panel", "- speaker_box.dxf"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("YAML missing %q:\n%s", want, buf.String())
		}
	}
}

func driverOf(fs, qts, vas float64) enclosure.Driver {
	return enclosure.Driver{Fs: fs, Qts: qts, Vas: vas}
}
