package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/jwebster45206/rando-engine/pkg/world"
)

func main() {
	strict := flag.Bool("strict", false, "fail on tolerated issues as well as errors")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [-strict] <world-dir>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}

	dir := flag.Arg(0)
	validator := &WorldValidator{strict: *strict}

	if err := validator.validateDir(dir); err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("World definition is valid!")
}

type WorldValidator struct {
	strict   bool
	errors   []string
	warnings []string
}

func (v *WorldValidator) validateDir(dir string) error {
	fmt.Printf("Validating %s...\n", dir)

	v.errors = nil
	v.warnings = nil

	w, err := world.Load(filepath.Base(filepath.Clean(dir)), dir)
	if err != nil {
		return err
	}

	v.validateWorld(w)

	if len(v.warnings) > 0 {
		fmt.Printf("%d tolerated issues:\n%s\n", len(v.warnings), strings.Join(v.warnings, "\n"))
	}
	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors in %s:\n%s", dir, strings.Join(v.errors, "\n"))
	}
	if v.strict && len(v.warnings) > 0 {
		return fmt.Errorf("%d tolerated issues in %s (strict mode)", len(v.warnings), dir)
	}
	return nil
}

func (v *WorldValidator) validateWorld(w *world.World) {
	issues := world.Lint(w)
	sort.SliceStable(issues, func(i, j int) bool { return issues[i].Kind < issues[j].Kind })
	for _, issue := range issues {
		v.addWarning(issue.String())
	}

	for ri := range w.Regions {
		r := &w.Regions[ri]
		for ni := range r.Nodes {
			n := &r.Nodes[ni]
			if n.Type == world.NodeItem && n.Item == "" {
				v.addWarning(fmt.Sprintf("item node %q in %s has no nodeItem", n.Name, r.Name))
			}
		}
	}

	seen := make(map[string]string)
	check := func(kind string, re *regexp.Regexp, defs []world.Helper) {
		for _, h := range defs {
			if prev, ok := seen[h.Name]; ok {
				v.addError(fmt.Sprintf("%s %q is already defined as a %s", kind, h.Name, prev))
				continue
			}
			seen[h.Name] = kind
			if !re.MatchString(h.Name) {
				v.addWarning(fmt.Sprintf("%s %q does not follow the %s naming convention", kind, h.Name, re))
			}
		}
	}
	check("helper", validHelperRegex, w.Helpers)
	check("tech", validTechRegex, w.Techs)
}

func (v *WorldValidator) addError(msg string) {
	v.errors = append(v.errors, "  - "+msg)
}

func (v *WorldValidator) addWarning(msg string) {
	v.warnings = append(v.warnings, "  - "+msg)
}

var (
	validHelperRegex = regexp.MustCompile(`^h_[A-Za-z0-9_]+$`)
	validTechRegex   = regexp.MustCompile(`^can[A-Z][A-Za-z0-9]*$`)
)
