// Package main provides tempfs-sweep, a tool to clean stale scope
// directories out of a temp root.
//
// When the harness exhausts its naming attempts it tells the user to clean
// the temp directory manually; this is the tool that does it. Only entries
// matching the harness naming scheme ("<scope> <seed>-<NNN>") are touched.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/peterh/liner"
	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/tempfs"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flags := flag.NewFlagSet("tempfs-sweep", flag.ContinueOnError)

	root := flags.String("root", os.TempDir(), "temp root to sweep")
	olderThan := flags.Duration("older-than", time.Hour, "only sweep scope dirs older than this")
	dryRun := flags.Bool("dry-run", false, "list what would be removed without removing")
	yes := flags.BoolP("yes", "y", false, "remove without prompting")

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}

		fmt.Fprintln(os.Stderr, "error:", err)

		return 2
	}

	stale, err := findStaleScopeDirs(*root, *olderThan)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)

		return 1
	}

	if len(stale) == 0 {
		fmt.Printf("nothing to sweep in %s\n", *root)

		return 0
	}

	for _, d := range stale {
		fmt.Printf("%s\t(age %s)\n", d.path, d.age.Round(time.Minute))
	}

	if *dryRun {
		return 0
	}

	if !*yes && !confirm(len(stale)) {
		fmt.Println("aborted")

		return 0
	}

	failed := 0

	for _, d := range stale {
		if err := os.RemoveAll(d.path); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)

			failed++
		}
	}

	fmt.Printf("removed %d of %d\n", len(stale)-failed, len(stale))

	if failed > 0 {
		return 1
	}

	return 0
}

type staleDir struct {
	path string
	age  time.Duration
}

// findStaleScopeDirs lists harness scope directories under root older than
// minAge, oldest first.
func findStaleScopeDirs(root string, minAge time.Duration) ([]staleDir, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", root, err)
	}

	var stale []staleDir

	now := time.Now()

	for _, e := range entries {
		if !e.IsDir() || !tempfs.IsScopeDirName(e.Name()) {
			continue
		}

		info, err := e.Info()
		if err != nil {
			continue
		}

		age := now.Sub(info.ModTime())
		if age < minAge {
			continue
		}

		stale = append(stale, staleDir{path: filepath.Join(root, e.Name()), age: age})
	}

	sort.Slice(stale, func(i, j int) bool { return stale[i].age > stale[j].age })

	return stale, nil
}

// confirm asks before deleting. Any answer other than y/yes declines.
func confirm(n int) bool {
	l := liner.NewLiner()
	defer l.Close()

	l.SetCtrlCAborts(true)

	answer, err := l.Prompt(fmt.Sprintf("remove %d director(ies)? [y/N] ", n))
	if err != nil {
		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			return false
		}

		return false
	}

	answer = strings.ToLower(strings.TrimSpace(answer))

	return answer == "y" || answer == "yes"
}
