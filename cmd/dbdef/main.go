// Command dbdef is the CLI tool for working with .dbd table schema
// definition files: validation, canonical formatting, build lookup, catalog
// export, and bundling.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/FocuswithJustin/dbdef/core/dbd"
	"github.com/FocuswithJustin/dbdef/internal/bundle"
	"github.com/FocuswithJustin/dbdef/internal/catalog"
	"github.com/FocuswithJustin/dbdef/internal/logging"
)

const version = "0.1.0"

// CLI defines the command-line interface for dbdef.
var CLI struct {
	LogLevel  string `name:"log-level" default:"info" enum:"debug,info,warn,error" help:"Log level (debug, info, warn, error)"`
	LogFormat string `name:"log-format" default:"text" enum:"text,json" help:"Log format (text, json)"`

	Validate ValidateCmd `cmd:"" help:"Parse and resolve definition files, reporting errors with positions"`
	Fmt      FmtCmd      `cmd:"" help:"Rewrite a definition file in canonical form"`
	Lookup   LookupCmd   `cmd:"" help:"Print the definition matching a client build"`
	Export   ExportCmd   `cmd:"" help:"Export resolved definitions into a SQLite catalog"`
	Bundle   BundleCmd   `cmd:"" help:"Pack a directory of definitions into a tar.xz bundle"`
	Version  VersionCmd  `cmd:"" help:"Print version information"`
}

// ValidateCmd parses and resolves definition files.
type ValidateCmd struct {
	Paths []string `arg:"" help:"Definition files to validate" type:"existingfile"`
}

func (c *ValidateCmd) Run() error {
	failed := 0
	for _, path := range c.Paths {
		if err := validateFile(path); err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
		} else {
			fmt.Printf("%s: ok\n", path)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed validation", failed, len(c.Paths))
	}
	return nil
}

func validateFile(path string) error {
	contents, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	f, err := dbd.Parse(string(contents), filepath.Base(path))
	if err != nil {
		if perr, ok := err.(*dbd.ParseError); ok {
			if rest, found := dbd.Locate(string(contents), perr.Line, perr.Column); found {
				return fmt.Errorf("%w\n  at: %s", perr, firstLine(rest))
			}
		}
		return err
	}

	resolved, err := f.Resolve()
	if err != nil {
		return err
	}

	logging.Debug("validated", "file", path, "definitions", len(resolved.Definitions))
	return nil
}

// firstLine truncates recovered source context to the offending line.
func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// FmtCmd rewrites a definition file in canonical form.
type FmtCmd struct {
	Path  string `arg:"" help:"Definition file to format" type:"existingfile"`
	Write bool   `name:"write" short:"w" help:"Rewrite the file in place instead of printing"`
}

func (c *FmtCmd) Run() error {
	f, err := dbd.LoadFile(c.Path)
	if err != nil {
		return err
	}

	canonical := f.Emit()
	if !c.Write {
		fmt.Print(canonical)
		return nil
	}

	if err := os.WriteFile(c.Path, []byte(canonical), 0644); err != nil {
		return fmt.Errorf("rewrite %s: %w", c.Path, err)
	}
	logging.Info("formatted", "file", c.Path)
	return nil
}

// LookupCmd prints the definition matching a client build.
type LookupCmd struct {
	Path  string `arg:"" help:"Definition file to search" type:"existingfile"`
	Build string `name:"build" short:"b" required:"" help:"Client build, e.g. 3.3.5.12340"`
}

func (c *LookupCmd) Run() error {
	build, err := dbd.ParseVersion(c.Build)
	if err != nil {
		return err
	}

	f, err := dbd.LoadFile(c.Path)
	if err != nil {
		return err
	}
	resolved, err := f.Resolve()
	if err != nil {
		return err
	}

	def := resolved.SpecificVersion(build)
	if def == nil {
		return fmt.Errorf("%s: no definition covers build %s", f.Name, build)
	}

	fmt.Printf("%s @ %s (fingerprint %s)\n", f.Name, build, def.Fingerprint()[:12])
	for _, e := range def.Entries {
		var tags []string
		if e.PrimaryKey {
			tags = append(tags, "id")
		}
		if !e.Inline {
			tags = append(tags, "noninline")
		}
		if e.Relation {
			tags = append(tags, "relation")
		}
		suffix := ""
		if len(tags) > 0 {
			suffix = " [" + strings.Join(tags, ",") + "]"
		}
		fmt.Printf("  %-30s %s%s\n", e.Name, e.Type, suffix)
	}
	return nil
}

// ExportCmd exports resolved definitions into a SQLite catalog.
type ExportCmd struct {
	Paths []string `arg:"" help:"Definition files or directories to export" type:"path"`
	DB    string   `name:"db" required:"" help:"Catalog database path"`
}

func (c *ExportCmd) Run() error {
	var files []*dbd.ResolvedFile
	for _, path := range c.Paths {
		found, err := collectFiles(path)
		if err != nil {
			return err
		}
		files = append(files, found...)
	}
	if len(files) == 0 {
		return fmt.Errorf("no definition files found")
	}

	cat, err := catalog.Open(c.DB)
	if err != nil {
		return err
	}
	defer cat.Close()

	batchID, stats, err := cat.Import(files)
	if err != nil {
		return err
	}

	logging.Info("exported",
		"batch", batchID,
		"driver", catalog.DriverType(),
		"files", stats.Files,
		"definitions", stats.Definitions,
		"entries", stats.Entries,
	)
	fmt.Printf("Exported %d files (%d definitions, %d entries) to %s\n",
		stats.Files, stats.Definitions, stats.Entries, c.DB)
	return nil
}

func collectFiles(path string) ([]*dbd.ResolvedFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	var paths []string
	if info.IsDir() {
		err := filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !info.IsDir() && strings.HasSuffix(p, ".dbd") {
				paths = append(paths, p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	} else {
		paths = []string{path}
	}

	var files []*dbd.ResolvedFile
	for _, p := range paths {
		f, err := dbd.LoadFile(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		resolved, err := f.Resolve()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		files = append(files, resolved)
	}
	return files, nil
}

// BundleCmd packs a directory of definitions into a tar.xz bundle.
type BundleCmd struct {
	Dir string `arg:"" help:"Directory of definition files" type:"existingdir"`
	Out string `name:"out" required:"" help:"Output bundle path (.tar.xz)"`
}

func (c *BundleCmd) Run() error {
	count, err := bundle.Create(c.Dir, c.Out)
	if err != nil {
		return err
	}
	logging.Info("bundled", "dir", c.Dir, "out", c.Out, "files", count)
	fmt.Printf("Bundled %d files into %s\n", count, c.Out)
	return nil
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("dbdef %s\n", version)
	return nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("dbdef"),
		kong.Description("Versioned .dbd table schema definition tool"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	if err := logging.Init(CLI.LogLevel, CLI.LogFormat); err != nil {
		ctx.FatalIfErrorf(err)
	}
	err := ctx.Run(ctx)
	ctx.FatalIfErrorf(err)
}
