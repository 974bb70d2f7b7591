package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"testing"

	"github.com/google/go-cmp/cmp"

	"handwrite/core"
	"handwrite/handwriteapi"
	"handwrite/params"
	"handwrite/shutdown"
	"handwrite/validation"
)

// fakeService stands in for the generation service.
type fakeService struct {
	fonts          []string
	pages          int
	generateStatus int

	mu         sync.Mutex
	fontCalls  int
	requests   []handwriteapi.GenerateRequest
	requestIDs []string
}

func (f *fakeService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodGet && r.URL.Path == handwriteapi.FontsPath:
		f.mu.Lock()
		f.fontCalls++
		f.mu.Unlock()
		json.NewEncoder(w).Encode(map[string]interface{}{"fonts": f.fonts})

	case r.Method == http.MethodPost && r.URL.Path == handwriteapi.GeneratePath:
		var req handwriteapi.GenerateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		f.requests = append(f.requests, req)
		f.requestIDs = append(f.requestIDs, r.Header.Get("X-Request-ID"))
		f.mu.Unlock()

		if f.generateStatus != 0 {
			w.WriteHeader(f.generateStatus)
			json.NewEncoder(w).Encode(map[string]string{"detail": "renderer crashed"})
			return
		}
		images := make(map[string]string, f.pages)
		for i := 1; i <= f.pages; i++ {
			images[fmt.Sprint(i)] = pngBase64(20, 30)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"images": images, "page_count": f.pages})

	default:
		http.NotFound(w, r)
	}
}

func (f *fakeService) generateCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func pngBase64(w, h int) string {
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		panic(err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

type cliTestEnv struct {
	service   *fakeService
	server    *httptest.Server
	baseDir   string
	outputDir string
	envFile   string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	service := &fakeService{fonts: []string{"hongzhi_handwriting", "caveat", "amatic"}, pages: 2}
	server := httptest.NewServer(service)
	t.Cleanup(server.Close)

	base := t.TempDir()
	env := &cliTestEnv{
		service:   service,
		server:    server,
		baseDir:   base,
		outputDir: filepath.Join(base, "out"),
		envFile:   filepath.Join(base, "missing.env"),
	}
	t.Setenv(core.EnvAPIURL, server.URL)
	t.Setenv(core.EnvOutputDir, env.outputDir)
	t.Setenv(core.EnvHistoryDB, filepath.Join(base, "history.db"))
	t.Setenv(core.EnvHistoryEnabled, "true")
	t.Setenv(core.EnvLogFile, "")
	t.Setenv(core.EnvLogLevel, "error")
	t.Setenv(core.EnvDevMode, "false")
	return env
}

func runCLI(t *testing.T, env *cliTestEnv, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--env-file", env.envFile}, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q, got:\n%s", needle, haystack)
	}
}

func TestCLIColor(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "", "color", "#0a141e80")
	if err != nil {
		t.Fatalf("color: %v", err)
	}
	requireContains(t, out, "hex\t#0a141e80")
	requireContains(t, out, `wire	{"r":10,"g":20,"b":30,"a":128}`)

	out, _, err = runCLI(t, env, "", "color", "RED")
	if err != nil {
		t.Fatalf("color RED: %v", err)
	}
	requireContains(t, out, "hex\t#ff0000")
}

func TestCLIColor_Malformed(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, env, "", "color", "#12345")
	var colorErr *params.MalformedColorError
	if !errors.As(err, &colorErr) {
		t.Fatalf("color error = %v, want MalformedColorError", err)
	}
	if code := exitCode(context.Background(), err); code != core.ExitCodeInvalid {
		t.Errorf("exitCode() = %d, want %d", code, core.ExitCodeInvalid)
	}
}

func TestCLIPresetInitAndShow(t *testing.T) {
	env := setupCLITestEnv(t)
	path := filepath.Join(t.TempDir(), "letter.yaml")

	out, _, err := runCLI(t, env, "", "preset", "init", path, "--font", "caveat", "--background", "#102030", "--margins", "150", "--rate", "x4")
	if err != nil {
		t.Fatalf("preset init: %v", err)
	}
	requireContains(t, out, "Wrote preset")

	m, err := params.LoadPreset(path)
	if err != nil {
		t.Fatalf("LoadPreset: %v", err)
	}
	want := params.Default()
	want.Font = "caveat"
	want.Background = params.Color{R: 16, G: 32, B: 48, A: 1}
	want.Margins = params.Margins{Top: 150, Bottom: 150, Left: 150, Right: 150}
	want.Rate = 4
	if diff := cmp.Diff(want, m); diff != "" {
		t.Errorf("preset mismatch (-want +got):\n%s", diff)
	}

	if _, _, err := runCLI(t, env, "", "preset", "init", path); err == nil {
		t.Error("preset init over an existing file should fail without --force")
	}
	if _, _, err := runCLI(t, env, "", "preset", "init", path, "--force"); err != nil {
		t.Errorf("preset init --force: %v", err)
	}

	out, _, err = runCLI(t, env, "", "preset", "show", path)
	if err != nil {
		t.Fatalf("preset show: %v", err)
	}
	requireContains(t, out, "font\t(unselected)")
	requireContains(t, out, "paper\t2480 x 3508")
	requireContains(t, out, "background_color\t#ffffff")
}

func TestCLIPresetInit_UnknownFormat(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, env, "", "preset", "init", filepath.Join(t.TempDir(), "letter.json"))
	if !errors.Is(err, params.ErrUnknownPresetFormat) {
		t.Errorf("preset init .json error = %v, want ErrUnknownPresetFormat", err)
	}
}

func TestCLIFonts(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "", "fonts")
	if err != nil {
		t.Fatalf("fonts: %v", err)
	}
	if diff := cmp.Diff("hongzhi_handwriting\ncaveat\namatic\n", out); diff != "" {
		t.Errorf("fonts output mismatch (-want +got):\n%s", diff)
	}

	out, _, err = runCLI(t, env, "", "fonts", "--sorted")
	if err != nil {
		t.Fatalf("fonts --sorted: %v", err)
	}
	if diff := cmp.Diff("amatic\ncaveat\nhongzhi_handwriting\n", out); diff != "" {
		t.Errorf("sorted fonts mismatch (-want +got):\n%s", diff)
	}
}

func TestCLIFonts_ServiceDown(t *testing.T) {
	env := setupCLITestEnv(t)
	env.server.Close()

	_, _, err := runCLI(t, env, "", "fonts")
	var fetchErr *handwriteapi.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("fonts error = %v, want FetchError", err)
	}
}

func TestCLIValidate(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		wantErr    bool
		wantCode   int
		wantOutput []string
	}{
		{
			name:       "valid",
			args:       []string{"--text", "Hello", "--font", "caveat"},
			wantOutput: []string{"Parameters are valid."},
		},
		{
			name:       "margins equal to paper",
			args:       []string{"--text", "Hello", "--font", "caveat", "--paper-x", "1000", "--paper-y", "1000", "--margin-top", "500", "--margin-bottom", "500", "--margin-left", "10", "--margin-right", "10"},
			wantErr:    true,
			wantCode:   core.ExitCodeInvalid,
			wantOutput: []string{"margins\tMarginsExceedPaper"},
		},
		{
			name:       "every failing field reported",
			args:       []string{"--font", "comic_sans", "--font-size", "0", "--rate", "65"},
			wantErr:    true,
			wantCode:   core.ExitCodeInvalid,
			wantOutput: []string{"text\tRequired", "font\tNotInCatalog", "font_size\tOutOfRange", "rate\tOutOfRange"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupCLITestEnv(t)
			out, _, err := runCLI(t, env, "", append([]string{"validate"}, tt.args...)...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("validate error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if code := exitCode(context.Background(), err); code != tt.wantCode {
					t.Errorf("exitCode() = %d, want %d", code, tt.wantCode)
				}
			}
			for _, want := range tt.wantOutput {
				requireContains(t, out, want)
			}
			if env.service.generateCalls() != 0 {
				t.Error("validate must not call generate")
			}
		})
	}
}

func TestCLIValidate_OfflineLeavesFontPending(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "", "validate", "--offline", "--text", "Hello", "--font", "caveat")
	if err != nil {
		t.Fatalf("validate --offline: %v", err)
	}
	requireContains(t, out, "font\tPending")
	requireContains(t, out, "the font was not checked")
	if env.service.fontCalls != 0 {
		t.Errorf("font catalog fetched %d times in offline mode", env.service.fontCalls)
	}
}

func TestCLIValidate_JSON(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "", "validate", "--json", "--text", "Hi", "--font", "caveat", "--font-color", "#00000080")
	if err != nil {
		t.Fatalf("validate --json: %v", err)
	}
	requireContains(t, out, `"text": "Hi"`)
	requireContains(t, out, `"a": 128`)
}

func TestCLIGenerate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, stderr, err := runCLI(t, env, "Dear friend,\nhello.", "generate",
		"--text-file", "-",
		"--font", "hongzhi_handwriting",
		"--background", "#0a141e80",
		"--thumbnails", "10")
	if err != nil {
		t.Fatalf("generate: %v\nstderr:\n%s", err, stderr)
	}

	wantPaths := []string{
		filepath.Join(env.outputDir, "page-1.png"),
		filepath.Join(env.outputDir, "page-1-thumb.png"),
		filepath.Join(env.outputDir, "page-2.png"),
		filepath.Join(env.outputDir, "page-2-thumb.png"),
	}
	if diff := cmp.Diff(strings.Join(wantPaths, "\n")+"\n", out); diff != "" {
		t.Errorf("generate output mismatch (-want +got):\n%s", diff)
	}
	for _, path := range wantPaths {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("expected %s: %v", path, err)
		}
	}
	requireContains(t, stderr, "2 pages rendered.")

	if n := env.service.generateCalls(); n != 1 {
		t.Fatalf("generate calls = %d, want 1", n)
	}
	req := env.service.requests[0]
	if req.Text != "Dear friend,\nhello." {
		t.Errorf("sent text = %q", req.Text)
	}
	if diff := cmp.Diff(handwriteapi.WireColor{R: 10, G: 20, B: 30, A: 128}, req.Params.BackgroundColor); diff != "" {
		t.Errorf("background mismatch (-want +got):\n%s", diff)
	}

	id := env.service.requestIDs[0]
	if id == "" {
		t.Fatal("request carried no X-Request-ID")
	}
	out, _, err = runCLI(t, env, "", "history", "--id", id)
	if err != nil {
		t.Fatalf("history --id: %v", err)
	}
	requireContains(t, out, "status\tsuccess")
	requireContains(t, out, "pages\t2")
	requireContains(t, out, "text\tDear friend, hello.")
}

func TestCLIGenerate_InvalidNeverCallsService(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "", "generate", "--font", "caveat")
	var invalid *invalidParamsError
	if !errors.As(err, &invalid) {
		t.Fatalf("generate error = %v, want invalidParamsError", err)
	}
	if code := exitCode(context.Background(), err); code != core.ExitCodeInvalid {
		t.Errorf("exitCode() = %d, want %d", code, core.ExitCodeInvalid)
	}
	requireContains(t, out, "text\tRequired")
	if env.service.generateCalls() != 0 {
		t.Error("generate called with invalid parameters")
	}
}

func TestCLIGenerate_ServiceErrorIsRecorded(t *testing.T) {
	env := setupCLITestEnv(t)
	env.service.generateStatus = http.StatusInternalServerError

	_, stderr, err := runCLI(t, env, "", "generate", "--text", "Hello", "--font", "caveat")
	var genErr *handwriteapi.GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("generate error = %v, want GenerationError", err)
	}
	if genErr.Code != handwriteapi.ErrCodeServiceError {
		t.Errorf("Code = %q, want %q", genErr.Code, handwriteapi.ErrCodeServiceError)
	}
	requireContains(t, stderr, "renderer crashed")
	if code := exitCode(context.Background(), err); code != core.ExitCodeError {
		t.Errorf("exitCode() = %d, want %d", code, core.ExitCodeError)
	}
	if entries, _ := os.ReadDir(env.outputDir); len(entries) != 0 {
		t.Errorf("output directory has %d entries after a failure", len(entries))
	}

	out, _, err := runCLI(t, env, "", "history", "--stats")
	if err != nil {
		t.Fatalf("history --stats: %v", err)
	}
	requireContains(t, out, "failed\t1")
}

func TestCLIGenerate_NoHistory(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, env, "", "generate", "--text", "Hi", "--font", "caveat", "--no-history"); err != nil {
		t.Fatalf("generate --no-history: %v", err)
	}
	out, _, err := runCLI(t, env, "", "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "No generation history yet.")
}

func TestCLIHistory_ListAndPrune(t *testing.T) {
	env := setupCLITestEnv(t)

	for _, text := range []string{"first", "second"} {
		if _, _, err := runCLI(t, env, "", "generate", "--text", text, "--font", "caveat"); err != nil {
			t.Fatalf("generate %s: %v", text, err)
		}
	}

	out, _, err := runCLI(t, env, "", "history", "--limit", "1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("history --limit 1 printed %d lines:\n%s", len(lines), out)
	}
	requireContains(t, lines[1], "second")

	out, _, err = runCLI(t, env, "", "history", "--prune-days", "1")
	if err != nil {
		t.Fatalf("history --prune-days: %v", err)
	}
	requireContains(t, out, "Removed 0 record(s)")

	if _, _, err := runCLI(t, env, "", "history", "--prune-days", "-1"); err == nil {
		t.Error("negative --prune-days should fail")
	}
}

func TestCLIConfigErrors(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, env, "", "--api-url", "ftp://example.com", "fonts")
	var cfgErr *core.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("fonts with bad --api-url error = %v, want ConfigError", err)
	}

	t.Setenv(core.EnvAPIURL, "not a url")
	if _, _, err := runCLI(t, env, "", "color", "white"); err != nil {
		t.Errorf("color does not need configuration, got %v", err)
	}
}

func TestParseRate(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"1", 1, false},
		{"x16", 16, false},
		{" X64 ", 64, false},
		{"100", 100, false},
		{"fast", 0, true},
	}
	for _, tt := range tests {
		got, err := parseRate(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("parseRate(%q) = %d, %v", tt.in, got, err)
		}
	}
}

func TestExitCode(t *testing.T) {
	signalled, cancel := context.WithCancelCause(context.Background())
	cancel(&shutdown.SignalError{Signal: syscall.SIGTERM})

	tests := []struct {
		name string
		ctx  context.Context
		err  error
		want int
	}{
		{"success", context.Background(), nil, core.ExitCodeSuccess},
		{"field errors", context.Background(), &invalidParamsError{Errors: validation.Errors{{Field: "text", Reason: validation.ReasonRequired}}}, core.ExitCodeInvalid},
		{"wrapped color error", context.Background(), fmt.Errorf("--background: %w", &params.MalformedColorError{Input: "#1"}), core.ExitCodeInvalid},
		{"other error", context.Background(), errors.New("boom"), core.ExitCodeError},
		{"signal", signalled, context.Canceled, core.ExitCodeSIGTERM},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.ctx, tt.err); got != tt.want {
				t.Errorf("exitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCLIDoctor(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "", "doctor")
	if err != nil {
		t.Fatalf("doctor: %v\n%s", err, out)
	}
	requireContains(t, out, "3 fonts available")
	requireContains(t, out, "schema v1")
	requireContains(t, out, "All Checks Passed")
}

func TestCLIDoctor_Failures(t *testing.T) {
	env := setupCLITestEnv(t)
	env.server.Close()

	out, _, err := runCLI(t, env, "", "doctor")
	if err == nil {
		t.Fatalf("doctor with the service down should fail:\n%s", out)
	}
	var fetchErr *handwriteapi.FetchError
	if !errors.As(err, &fetchErr) {
		t.Errorf("doctor error = %v, want FetchError", err)
	}

	t.Setenv(core.EnvAPIURL, "ftp://nowhere")
	out, _, err = runCLI(t, env, "", "doctor")
	var cfgErr *core.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("doctor error = %v, want ConfigError", err)
	}
	requireContains(t, out, "requires Configuration")
}
