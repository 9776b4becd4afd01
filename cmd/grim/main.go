// Grimoire CLI - assembles, stores and casts spells for a project.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/grimoire-vm/grimoire/internal/logger"
	"github.com/grimoire-vm/grimoire/manifest"
	"github.com/grimoire-vm/grimoire/pkg/runner"
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: grim [options] <command> [args...]\n\n")
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  build <file.gasm>...        Assemble spell source and store it\n")
	fmt.Fprintf(os.Stderr, "  cast <spell> [breed...]     Execute a spell against freshly spawned wizards\n")
	fmt.Fprintf(os.Stderr, "  show <spell>                Disassemble a stored spell\n")
	fmt.Fprintf(os.Stderr, "  list                        List stored spells\n")
	fmt.Fprintf(os.Stderr, "  breeds                      List loaded breeds\n")
	fmt.Fprintf(os.Stderr, "  verify <run-id> <run-id>    Compare the journaled events of two runs\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nExamples:\n")
	fmt.Fprintf(os.Stderr, "  grim build spells/heal.gasm\n")
	fmt.Fprintf(os.Stderr, "  grim cast heal apprentice\n")
	fmt.Fprintf(os.Stderr, "  grim -v cast fireball archmage goblin\n")
}

func main() {
	verbose := flag.Bool("v", false, "Verbose output (per-instruction trace)")
	noColor := flag.Bool("no-color", false, "Disable colored log output")
	dir := flag.String("C", "", "Project directory (default: walk up from cwd)")

	flag.Usage = usage
	flag.Parse()

	logger.Init(*verbose, *noColor)

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	m, err := loadManifest(*dir)
	if err != nil {
		log.Fatal("no project found", "err", err)
	}

	r, err := runner.Open(m)
	if err != nil {
		log.Fatal("opening project", "err", err)
	}
	defer r.Close()
	r.Effects = runner.LogDispatcher{}

	switch cmd, rest := args[0], args[1:]; cmd {
	case "build":
		err = cmdBuild(r, rest)
	case "cast", "run":
		err = cmdCast(r, rest)
	case "show":
		err = cmdShow(r, rest)
	case "list":
		err = cmdList(r)
	case "breeds":
		err = cmdBreeds(r)
	case "verify":
		err = cmdVerify(r, rest)
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatal(err.Error())
	}
}

func loadManifest(dir string) (*manifest.Manifest, error) {
	if dir != "" {
		return manifest.Load(dir)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	m, err := manifest.FindAndLoad(cwd)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("no %s in %s or any parent", manifest.ManifestName, cwd)
	}
	return m, nil
}

func cmdBuild(r *runner.Runner, files []string) error {
	if len(files) == 0 {
		return fmt.Errorf("build: need at least one source file")
	}
	for _, file := range files {
		source, err := os.ReadFile(file)
		if err != nil {
			return err
		}
		name := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
		id, err := r.Build(name, string(source))
		if err != nil {
			return err
		}
		fmt.Printf("%s  %s\n", id, name)
	}
	return nil
}

func cmdCast(r *runner.Runner, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("cast: need a spell name or id")
	}
	party, err := r.SpawnParty(args[1:])
	if err != nil {
		return err
	}

	run, res, err := r.Cast(args[0], party)
	if err != nil {
		return err
	}

	fmt.Printf("run %s: %d steps, %d fuel\n", run.ID, res.Steps, res.FuelUsed)
	for i := range args[1:] {
		w := party[int64(i)]
		fmt.Printf("  wizard %d (%s): health=%d wisdom=%d agility=%d\n",
			i, args[1+i], w.Health(), w.Wisdom(), w.Agility())
	}
	return nil
}

func cmdShow(r *runner.Runner, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("show: need exactly one spell name or id")
	}
	chunk, err := r.Book.GetByName(args[0])
	if err != nil {
		if chunk, err = r.Book.Get(args[0]); err != nil {
			return err
		}
	}
	fmt.Print(chunk.DisassembleWithName(args[0]))
	return nil
}

func cmdList(r *runner.Runner) error {
	entries, err := r.Book.List()
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Printf("%s  %-20s %s\n", e.ID, e.Name, e.CreatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func cmdBreeds(r *runner.Runner) error {
	for _, name := range r.Breeds.Names() {
		b, err := r.Breeds.Get(name)
		if err != nil {
			return err
		}
		w, err := b.Spawn()
		if err != nil {
			return err
		}
		fmt.Printf("%-20s health=%d wisdom=%d agility=%d\n",
			name, w.Health(), w.Wisdom(), w.Agility())
	}
	return nil
}

func cmdVerify(r *runner.Runner, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("verify: need exactly two run ids")
	}
	same, err := r.Verify(args[0], args[1])
	if err != nil {
		return err
	}
	if !same {
		return fmt.Errorf("runs %s and %s diverge", args[0], args[1])
	}
	fmt.Println("runs match")
	return nil
}
