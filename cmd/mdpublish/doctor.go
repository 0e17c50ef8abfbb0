package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/alnah/go-mdpublish/internal/config"
	"github.com/alnah/go-mdpublish/internal/fileutil"
	"github.com/alnah/go-mdpublish/internal/generate"
	"github.com/alnah/go-mdpublish/internal/hints"
	"github.com/alnah/go-mdpublish/internal/yamlutil"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status     string         `json:"status"` // "ready", "warnings", "errors"
	Config     configInfo     `json:"config"`
	Storage    storageInfo    `json:"storage"`
	Generation generationInfo `json:"generation"`
	System     systemInfo     `json:"system"`
	Warnings   []string       `json:"warnings,omitempty"`
	Errors     []string       `json:"errors,omitempty"`
}

// configInfo holds configuration resolution results.
type configInfo struct {
	Source string `json:"source"` // file path or "defaults"
	Valid  bool   `json:"valid"`
	Style  string `json:"style,omitempty"`
}

// storageInfo holds storage directory checks.
type storageInfo struct {
	UploadsDir      string `json:"uploads_dir"`
	UploadsWritable bool   `json:"uploads_writable"`
	PublicDir       string `json:"public_dir"`
	PublicWritable  bool   `json:"public_writable"`
	RoutePrefix     string `json:"route_prefix"`
}

// generationInfo holds slide generation readiness.
type generationInfo struct {
	Provider    string `json:"provider"`
	Credentials bool   `json:"credentials"`
	DotEnv      bool   `json:"dotenv"`
}

// systemInfo holds platform details.
type systemInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	GoMaxProcs    int    `json:"gomaxprocs"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found.
func runDoctorCmd(args []string, env *Environment) int {
	flags, _, err := parseDoctorFlags(args)
	if err != nil {
		return reportFlagError(env, "doctor", err)
	}

	if flags.showConfig {
		return runShowConfig(flags, env)
	}

	result := runDoctor(flags, env)

	if flags.json {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == "errors" {
		return ExitGeneral
	}
	return ExitSuccess
}

// runShowConfig prints the configuration after file, env and flag merging.
func runShowConfig(flags *doctorFlags, env *Environment) int {
	cfg, err := loadConfig(&flags.common, env, func(cfg *config.Config) {
		applyStorageFlags(&flags.storage, cfg)
	})
	if err != nil {
		return reportError(env, err)
	}
	data, err := yamlutil.Marshal(cfg)
	if err != nil {
		return reportError(env, err)
	}
	_, _ = env.Stdout.Write(data)
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor(flags *doctorFlags, env *Environment) *doctorResult {
	result := &doctorResult{Status: "ready"}

	cfg := checkConfig(result, flags, env)
	checkStorage(result, cfg)
	checkGeneration(result, cfg, env.Getenv)
	checkSystem(result, env.Getenv)

	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}

	return result
}

// checkConfig resolves the configuration the other commands would use.
// Falls back to defaults so the remaining checks still run.
func checkConfig(result *doctorResult, flags *doctorFlags, env *Environment) *config.Config {
	result.Config.Source = "defaults"
	name := flags.common.config
	if name == "" {
		name = env.Getenv("MDPUBLISH_CONFIG")
	}
	if name != "" {
		result.Config.Source = name
	}

	quiet := flags.common
	quiet.quiet = true
	cfg, err := loadConfig(&quiet, env, func(cfg *config.Config) {
		applyStorageFlags(&flags.storage, cfg)
	})
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Config: %v", err))
		return config.DefaultConfig()
	}
	result.Config.Valid = true

	if cfg.Preview.Enabled {
		if _, err := loadPreviewStyle(cfg.Preview); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Preview style: %v", err))
		} else {
			result.Config.Style = cfg.Preview.Style
		}
	}
	return cfg
}

// checkStorage verifies the uploads and public directories can be written.
func checkStorage(result *doctorResult, cfg *config.Config) {
	result.Storage.UploadsDir = cfg.Storage.UploadsDir
	result.Storage.PublicDir = cfg.Storage.PublicDir
	result.Storage.RoutePrefix = cfg.Storage.RoutePrefix

	result.Storage.UploadsWritable = checkWritable(result, "Uploads", cfg.Storage.UploadsDir)
	result.Storage.PublicWritable = checkWritable(result, "Public", cfg.Storage.PublicDir)
}

// checkWritable tests dir with a temp file. A missing directory is only a
// warning when its parent can hold it, since publishing creates it.
func checkWritable(result *doctorResult, label, dir string) bool {
	if !fileutil.DirExists(dir) {
		parent := filepath.Dir(filepath.Clean(dir))
		if canWrite(parent) {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("%s directory %s does not exist yet (created on first publish)", label, dir))
			return true
		}
		result.Errors = append(result.Errors,
			fmt.Sprintf("%s directory %s does not exist and %s is not writable", label, dir, parent))
		return false
	}

	if !canWrite(dir) {
		result.Errors = append(result.Errors,
			fmt.Sprintf("%s directory not writable: %s", label, dir))
		return false
	}
	return true
}

// canWrite reports whether a file can be created in dir.
func canWrite(dir string) bool {
	f, err := os.CreateTemp(dir, ".mdpublish-doctor-*")
	if err != nil {
		return false
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)
	return true
}

// checkGeneration reports whether convert can reach its provider.
func checkGeneration(result *doctorResult, cfg *config.Config, getenv func(string) string) {
	provider := strings.ToLower(cfg.Generate.Provider)
	if provider == "" {
		provider = generate.ProviderGemini
	}
	result.Generation.Provider = provider
	result.Generation.DotEnv = hints.HasDotEnv()

	var keys []string
	switch provider {
	case generate.ProviderAnthropic:
		keys = []string{"ANTHROPIC_API_KEY"}
	default:
		keys = []string{"GOOGLE_API_KEY", "GEMINI_API_KEY"}
	}
	for _, k := range keys {
		if getenv(k) != "" {
			result.Generation.Credentials = true
			break
		}
	}

	if !result.Generation.Credentials {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("No %s credentials: set %s (convert unavailable)", provider, strings.Join(keys, " or ")))
	}
}

// checkSystem records platform details and detects containers.
func checkSystem(result *doctorResult, getenv func(string) string) {
	result.System.OS = runtime.GOOS
	result.System.Arch = runtime.GOARCH
	result.System.GoMaxProcs = runtime.GOMAXPROCS(0)
	result.System.Container, result.System.ContainerHint = isContainer(getenv)

	if result.System.Container && getenv("MDPUBLISH_ADDR") == "" && getenv("PORT") == "" {
		result.Warnings = append(result.Warnings,
			"Container detected but neither MDPUBLISH_ADDR nor PORT is set; serve listens on :5181")
	}
}

// isContainer detects if running in a container environment.
// Returns (isContainer, hint) where hint indicates which signal was detected.
func isContainer(getenv func(string) string) (bool, string) {
	// Explicit override (highest priority)
	if getenv("MDPUBLISH_CONTAINER") == "1" {
		return true, "MDPUBLISH_CONTAINER=1"
	}
	// Docker
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true, "/.dockerenv"
	}
	// Podman / systemd-nspawn / general container indicator
	if v := getenv("container"); v != "" {
		return true, "container=" + v
	}
	// Kubernetes
	if getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "mdpublish doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Config")
	if r.Config.Valid {
		fmt.Fprintf(w, "  [OK] Source: %s\n", r.Config.Source)
		if r.Config.Style != "" {
			fmt.Fprintf(w, "  [OK] Preview style: %s\n", r.Config.Style)
		}
	} else {
		fmt.Fprintf(w, "  [ERROR] Source: %s\n", r.Config.Source)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Storage")
	printCheck(w, r.Storage.UploadsWritable, "Uploads: "+r.Storage.UploadsDir)
	printCheck(w, r.Storage.PublicWritable, "Public: "+r.Storage.PublicDir)
	fmt.Fprintf(w, "  [OK] Route: /%s/<id>/\n", r.Storage.RoutePrefix)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Generation")
	fmt.Fprintf(w, "  [OK] Provider: %s\n", r.Generation.Provider)
	if r.Generation.Credentials {
		fmt.Fprintln(w, "  [OK] Credentials: set")
	} else {
		fmt.Fprintln(w, "  [WARN] Credentials: missing")
	}
	if r.Generation.DotEnv {
		fmt.Fprintln(w, "  [OK] .env: found")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "System")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.System.OS, r.System.Arch)
	fmt.Fprintf(w, "  [OK] GOMAXPROCS: %d\n", r.System.GoMaxProcs)
	if r.System.Container {
		fmt.Fprintf(w, "  [OK] Container: detected (%s)\n", r.System.ContainerHint)
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: Ready to publish")
	case "warnings":
		fmt.Fprintln(w, "Status: Ready with warnings")
	case "errors":
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}

// printCheck prints an OK or ERROR line.
func printCheck(w io.Writer, ok bool, label string) {
	if ok {
		fmt.Fprintf(w, "  [OK] %s\n", label)
		return
	}
	fmt.Fprintf(w, "  [ERROR] %s\n", label)
}
