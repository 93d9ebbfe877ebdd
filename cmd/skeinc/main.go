package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/ComedicChimera/olive"
	"github.com/pterm/pterm"

	"skeinc/build"
	"skeinc/report"
)

const skeinVersion = "0.3.1"

func main() {
	// set up the argument parser and all its extended commands and arguments
	cli := olive.NewCLI("skeinc", "skeinc is the Skein grid compiler", true)
	logLvlArg := cli.AddSelectorArg("loglevel", "ll", "the compiler log level", false, []string{"silent", "error", "warn", "verbose"})
	logLvlArg.SetDefaultValue("verbose")

	buildCmd := cli.AddSubcommand("build", "compile a source file to a grid image", true)
	buildCmd.AddPrimaryArg("file", "the Skein source file to compile", true)
	buildCmd.AddStringArg("out", "o", "the output path of the grid image", false)
	buildCmd.AddStringArg("profile", "p", "the path of the machine profile", false)
	buildCmd.AddStringArg("format", "f", "the output format: json or asm", false)

	checkCmd := cli.AddSubcommand("check", "compile a source file without writing output", true)
	checkCmd.AddPrimaryArg("file", "the Skein source file to check", true)

	cli.AddSubcommand("repl", "start an interactive session", false)
	cli.AddSubcommand("version", "print the skeinc version", false)

	// run the argument parser
	result, err := olive.ParseArgs(cli, os.Args)
	if err != nil {
		fatal(err.Error())
	}

	// process the inputed command line
	subcmdName, subResult, _ := result.Subcommand()
	loglevel := result.Arguments["loglevel"].(string)

	switch subcmdName {
	case "build":
		execBuildCommand(subResult, loglevel, true)
	case "check":
		execBuildCommand(subResult, loglevel, false)
	case "repl":
		runRepl(loadProfileFor("", nil))
	case "version":
		pterm.Info.Println("skeinc version " + skeinVersion)
	}
}

// execBuildCommand executes the build and check subcommands.  check runs the
// full pipeline but writes nothing.
func execBuildCommand(result *olive.ArgParseResult, loglevel string, write bool) {
	path, _ := result.PrimaryArg()

	srcBytes, err := os.ReadFile(path)
	if err != nil {
		fatal(err.Error())
	}

	src := string(srcBytes)

	profile := loadProfileFor(path, result)
	res := build.NewCompiler(profile).Compile(src)

	displayDiagnostics(res, src, loglevel)

	if res.Failed() {
		os.Exit(1)
	}

	if !write {
		return
	}

	format := "json"
	if f, ok := result.Arguments["format"]; ok {
		format = f.(string)
	}

	switch format {
	case "json":
		data, err := res.Artifact().JSON()
		if err != nil {
			fatal(err.Error())
		}

		if err := os.WriteFile(outPath(path, result, ".json"), data, 0644); err != nil {
			fatal(err.Error())
		}
	case "asm":
		sb := &strings.Builder{}
		for _, coord := range res.Coords {
			sb.WriteString(res.Nodes[coord].Disassemble())
			sb.WriteByte('\n')
		}

		if err := os.WriteFile(outPath(path, result, ".s"), []byte(sb.String()), 0644); err != nil {
			fatal(err.Error())
		}
	default:
		fatal("unknown output format: " + format)
	}
}

// loadProfileFor resolves the machine profile: an explicit -p path, else a
// `skein.toml` next to the source, else the stock machine.
func loadProfileFor(srcPath string, result *olive.ArgParseResult) *build.Profile {
	var path string
	if result != nil {
		if p, ok := result.Arguments["profile"]; ok {
			path = p.(string)
		}
	}

	if path == "" && srcPath != "" {
		candidate := filepath.Join(filepath.Dir(srcPath), "skein.toml")
		if _, err := os.Stat(candidate); err == nil {
			path = candidate
		}
	}

	if path == "" {
		return build.DefaultProfile()
	}

	profile, err := build.LoadProfile(path)
	if err != nil {
		fatal(err.Error())
	}

	return profile
}

func outPath(srcPath string, result *olive.ArgParseResult, ext string) string {
	if out, ok := result.Arguments["out"]; ok {
		return out.(string)
	}

	return strings.TrimSuffix(srcPath, filepath.Ext(srcPath)) + ext
}

// displayDiagnostics pretty-prints the compilation's diagnostics subject to
// the log level, followed by the summary line.
func displayDiagnostics(res *build.Result, src, loglevel string) {
	if loglevel == "silent" {
		return
	}

	warnings := 0
	for i := range res.Diagnostics {
		d := &res.Diagnostics[i]
		if !d.IsError() {
			warnings++
			if loglevel == "error" {
				continue
			}
		}

		d.Display(src)
	}

	if loglevel == "verbose" || res.Failed() {
		report.DisplaySummary(res.ErrorCount, warnings)
	}
}

func fatal(msg string) {
	pterm.Error.Println(msg)
	os.Exit(1)
}
