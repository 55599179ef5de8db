// Command mergecfg is a small driver around the merge core: it reads a
// handful of JSON/YAML/TOML configuration files, decodes each into a
// term.Record, folds them together with the merge operator and prints the
// result. It exists to give internal/eval/merge, internal/cache and
// internal/decode an end-to-end caller the way go/cmd/test_write_amplification
// gives the teacher's store package one.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/attic-labs/kingpin"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"

	"github.com/dolthub/nickelcfg/internal/cache"
	"github.com/dolthub/nickelcfg/internal/decode"
	"github.com/dolthub/nickelcfg/internal/diag"
	"github.com/dolthub/nickelcfg/internal/eval"
	"github.com/dolthub/nickelcfg/internal/eval/merge"
	"github.com/dolthub/nickelcfg/internal/term"
)

var (
	app = kingpin.New("mergecfg", "Fold configuration files together with the merge operator.")

	mergeCmd   = app.Command("merge", "Merge two or more configuration files left to right.").Default()
	mergeFiles = mergeCmd.Arg("file", "configuration file (json, yaml or toml, by extension)").Required().Strings()
	mergeOut   = mergeCmd.Flag("out", "output format").Default("yaml").Enum("yaml", "json")
	traceFlag  = mergeCmd.Flag("trace", "log every cache operation the merge performs").Bool()

	verbose = app.Flag("verbose", "enable debug logging").Short('v').Bool()
)

func main() {
	kingpin.MustParse(app.Parse(os.Args[1:]))

	log := logrus.New()
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	if err := run(log); err != nil {
		log.WithError(err).Error("mergecfg failed")
		printDiagnostic(err)
		os.Exit(1)
	}
}

func run(log *logrus.Logger) error {
	if len(*mergeFiles) < 2 {
		return errors.New("mergecfg merge needs at least two files")
	}

	ctx := context.Background()
	store := cache.NewMemStore()
	var activeStore cache.Store = store
	if *traceFlag {
		activeStore = cache.NewRecorder(store, os.Stderr, log)
	}

	acc, err := loadRecord((*mergeFiles)[0])
	if err != nil {
		return errors.Wrapf(err, "loading %s", (*mergeFiles)[0])
	}
	log.WithField("file", (*mergeFiles)[0]).Debug("loaded base configuration")

	var accEnv term.Environment
	mode := term.NewStandardMode(term.NoPosition)
	for _, path := range (*mergeFiles)[1:] {
		next, err := loadRecord(path)
		if err != nil {
			return errors.Wrapf(err, "loading %s", path)
		}

		var stack diag.CallStack
		closure, err := merge.Merge(ctx, activeStore, &stack, acc, accEnv, next, term.Environment{}, term.NoPosition, mode)
		if err != nil {
			return errors.Wrapf(err, "merging %s", path)
		}

		inst, err := eval.ForceRecord(ctx, store, closure.Body, closure.Env)
		if err != nil {
			return errors.Wrapf(err, "forcing the result of merging %s", path)
		}
		acc, accEnv = inst.Record, inst.Env
		log.WithFields(logrus.Fields{"file": path, "fields": acc.Fields.Len()}).Debug("merged configuration")
	}

	out, err := eval.ToGo(ctx, store, acc, accEnv)
	if err != nil {
		return errors.Wrap(err, "converting merged configuration to output")
	}

	encoded, err := encode(out, *mergeOut)
	if err != nil {
		return errors.Wrap(err, "encoding output")
	}
	fmt.Println(encoded)

	printCacheStats(log, store)
	return nil
}

func loadRecord(path string) (term.Record, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return term.Record{}, err
	}

	var v interface{}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(raw, &v)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &v)
	case ".toml":
		_, err = toml.Decode(string(raw), &v)
	default:
		return term.Record{}, fmt.Errorf("unrecognized config extension %q", ext)
	}
	if err != nil {
		return term.Record{}, errors.Wrap(err, "decoding file")
	}

	return decode.MustRecord(term.Position{File: path}, v)
}

func encode(v interface{}, format string) (string, error) {
	switch format {
	case "json":
		b, err := json.MarshalIndent(v, "", "  ")
		return string(b), err
	default:
		b, err := yaml.Marshal(v)
		return strings.TrimRight(string(b), "\n"), err
	}
}

// printDiagnostic renders a merge error the way a terminal expects:
// colorized when attached to one, plain otherwise (spec.md §7's error
// types carry everything needed; this is just formatting on top).
func printDiagnostic(err error) {
	useColor := isatty.IsTerminal(os.Stderr.Fd()) && os.Getenv("NO_COLOR") == ""
	bold := color.New(color.FgRed, color.Bold)
	if !useColor {
		bold.DisableColor()
	}

	switch e := errors.Cause(err).(type) {
	case *diag.IncompatibleArgs:
		bold.Fprintln(os.Stderr, "incompatible values")
		fmt.Fprintf(os.Stderr, "  left:  %s\n", e.LeftPos)
		fmt.Fprintf(os.Stderr, "  right: %s\n", e.RightPos)
	case *diag.BlameError:
		bold.Fprintln(os.Stderr, "contract violated")
		if len(e.ExtraFields) > 0 {
			fmt.Fprintf(os.Stderr, "  extra fields: %v\n", e.ExtraFields)
		}
	case *diag.IllegalPolymorphicTailAccess:
		bold.Fprintln(os.Stderr, "cannot merge a sealed polymorphic record")
	default:
		fmt.Fprintln(os.Stderr, err)
	}
}

func printCacheStats(log *logrus.Logger, store *cache.MemStore) {
	log.WithField("handles", humanize.Comma(int64(store.Len()))).Info("merge cache usage")
}
