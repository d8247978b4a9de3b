package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/envfile"
	"github.com/eugenenazirov/envfile/internal/logging"
)

func main() {
	app := kingpin.New("envfile", "Read dotenv files: inspect their values or run commands with them applied")
	file := app.Flag("file", "Path to the env file (default: search upward for .env)").Short('f').String()

	getCmd := app.Command("get", "Print the value of a single key")
	getKey := getCmd.Arg("key", "Variable name").Required().String()

	listCmd := app.Command("list", "Print all values from the file")
	listFormat := listCmd.Flag("format", "Output format").Default(formatEnv).Enum(formatEnv, formatJSON, formatYAML)

	runCmd := app.Command("run", "Run a command with the file's variables applied")
	runOverride := runCmd.Flag("override", "Let file values replace existing environment variables").Bool()
	runArgv := runCmd.Arg("command", "Command and its arguments").Required().Strings()

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	logger, err := logging.New()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}

	var code int
	switch command {
	case getCmd.FullCommand():
		code = runGet(*file, *getKey, logger)
	case listCmd.FullCommand():
		code = runList(*file, *listFormat, logger)
	case runCmd.FullCommand():
		code = runRun(*file, *runOverride, *runArgv, logger)
	}

	_ = logger.Sync()
	os.Exit(code)
}

// resolve turns the --file flag into a concrete path, falling back to the
// upward search when no explicit path was given.
func resolve(path string) (string, bool) {
	if path != "" {
		return path, true
	}
	return envfile.Locate("")
}

func runGet(path, key string, logger *zap.Logger) int {
	resolved, ok := resolve(path)
	if !ok {
		logger.Error("no env file found")
		return 1
	}

	vals, err := envfile.Values(resolved)
	if err != nil {
		logger.Error("failed to read env file", zap.String("file", resolved), zap.Error(err))
		return 1
	}

	value, ok := vals[key]
	if !ok {
		logger.Error("key not found", zap.String("key", key), zap.String("file", resolved))
		return 1
	}

	fmt.Println(value)
	return 0
}

func runList(path, format string, logger *zap.Logger) int {
	resolved, ok := resolve(path)
	if !ok {
		logger.Error("no env file found")
		return 1
	}

	entries, err := envfile.ParseFile(resolved)
	if err != nil {
		logger.Error("failed to read env file", zap.String("file", resolved), zap.Error(err))
		return 1
	}

	out, err := formatEntries(entries, format)
	if err != nil {
		logger.Error("failed to format values", zap.Error(err))
		return 1
	}

	fmt.Print(out)
	return 0
}

func runRun(path string, override bool, argv []string, logger *zap.Logger) int {
	loader := envfile.Load
	if override {
		loader = envfile.Overload
	}

	found, err := loader(path)
	if err != nil {
		logger.Error("failed to load env file", zap.Error(err))
		return 1
	}
	if !found {
		logger.Warn("no env file found, running with the inherited environment only")
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode()
		}
		logger.Error("failed to run command", zap.Strings("argv", argv), zap.Error(err))
		return 1
	}
	return 0
}

const (
	formatEnv  = "env"
	formatJSON = "json"
	formatYAML = "yaml"
)

// formatEntries renders entries in the requested output format. The env
// format preserves file order; json and yaml encode a mapping and sort keys.
func formatEntries(entries []envfile.Entry, format string) (string, error) {
	switch format {
	case formatEnv:
		var b strings.Builder
		for _, e := range entries {
			fmt.Fprintf(&b, "%s=%s\n", e.Key, e.Value)
		}
		return b.String(), nil
	case formatJSON:
		data, err := json.MarshalIndent(entriesToMap(entries), "", "  ")
		if err != nil {
			return "", fmt.Errorf("encode JSON: %w", err)
		}
		return string(data) + "\n", nil
	case formatYAML:
		data, err := yaml.Marshal(entriesToMap(entries))
		if err != nil {
			return "", fmt.Errorf("encode YAML: %w", err)
		}
		return string(data), nil
	}
	return "", fmt.Errorf("unknown format %q", format)
}

func entriesToMap(entries []envfile.Entry) map[string]string {
	m := make(map[string]string, len(entries))
	for _, e := range entries {
		m[e.Key] = e.Value
	}
	return m
}
