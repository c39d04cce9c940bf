package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	humanize "github.com/dustin/go-humanize"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/studio1767/fsclip/internal/archive"
	"github.com/studio1767/fsclip/internal/config"
	"github.com/studio1767/fsclip/internal/match"
	"github.com/studio1767/fsclip/internal/ops"
	"github.com/studio1767/fsclip/internal/store"
	"github.com/studio1767/fsclip/internal/xfer"
)

func main() {
	// process the command line
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [-c clipboard] [-f] [-g] [-s] [-p passphrase] [-v] <action> [<item> ...]\n", filepath.Base(os.Args[0]))
		fmt.Fprintf(os.Stderr, "Actions: cut copy add paste show status info note remove load clear export import\n")
		flag.PrintDefaults()
	}

	name := flag.String("c", "", "clipboard to use (default from configuration)")
	force := flag.Bool("f", false, "steal the lock even if the holding process is alive")
	glob := flag.Bool("g", false, "treat patterns as globs instead of regular expressions")
	safe := flag.Bool("s", false, "safe copy: disable the hardlink fast path")
	passphrase := flag.String("p", "", "passphrase for export/import bundles")
	verbose := flag.Bool("v", false, "verbose reporting")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Error: no action provided\n")
		flag.Usage()
		os.Exit(1)
	}

	action := flag.Arg(0)
	items := flag.Args()[1:]

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if *safe {
		cfg.SafeCopy = true
	}
	if *glob {
		cfg.Dialect = config.DialectGlob
	}
	if *name == "" {
		*name = cfg.Clipboard
	}

	logger := newLogger(cfg.LogLevel, *verbose)
	defer logger.Sync()

	st := store.New(cfg.TemporaryRoot, cfg.PersistentRoot)
	clip := st.Open(*name)

	err = run(st, clip, cfg, logger, action, items, *force, *passphrase)
	if err != nil {
		log.Fatal(err)
	}
}

func run(st *store.Store, clip *store.Clipboard, cfg *config.Config, logger *zap.Logger, action string, items []string, force bool, passphrase string) error {

	switch action {
	case "cut", "copy":
		return copyIn(clip, cfg, logger, action == "cut", items, force)
	case "add":
		return add(clip, cfg, logger, items, force)
	case "paste":
		return paste(clip, cfg, logger, items, force)
	case "show":
		return show(clip, cfg, items)
	case "status":
		return status(st)
	case "info":
		return info(clip)
	case "note":
		return note(clip, items)
	case "remove":
		return remove(clip, cfg, logger, items, force)
	case "load":
		return load(st, clip, cfg, logger, items)
	case "clear":
		return clear(clip, cfg, logger, force)
	case "export":
		return export(clip, items, passphrase)
	case "import":
		return importBundle(clip, items, passphrase)
	}

	return fmt.Errorf("unknown action: %s", action)
}

func copyIn(clip *store.Clipboard, cfg *config.Config, logger *zap.Logger, cut bool, items []string, force bool) error {
	unlock, err := acquire(clip, force)
	if err != nil {
		return err
	}
	defer unlock()

	// a fresh cut or copy replaces the clipboard's contents
	err = clip.ClearData()
	if err != nil {
		return err
	}
	err = clip.ClearOriginals()
	if err != nil {
		return err
	}

	op := ops.New(clip, ops.Config{
		Cut:      cut,
		SafeCopy: cfg.SafeCopy,
		Logger:   logger,
	})

	if len(items) == 0 {
		if stdinIsPiped() == false {
			return fmt.Errorf("nothing to %s: provide items or pipe input", verb(cut))
		}
		err = op.PipeIn(os.Stdin)
	} else if len(items) == 1 && pathExists(items[0]) == false {
		err = op.CopyText(items[0])
	} else {
		err = op.CopyIn(items)
	}
	if err != nil {
		return err
	}

	report(op, verb(cut))
	return nil
}

func add(clip *store.Clipboard, cfg *config.Config, logger *zap.Logger, items []string, force bool) error {
	unlock, err := acquire(clip, force)
	if err != nil {
		return err
	}
	defer unlock()

	op := ops.New(clip, ops.Config{
		SafeCopy: cfg.SafeCopy,
		Logger:   logger,
	})

	if len(items) == 0 {
		if stdinIsPiped() == false {
			return fmt.Errorf("nothing to add: provide items or pipe input")
		}
		err = op.AddPipe(os.Stdin)
	} else if allPathsExist(items) {
		err = op.AddFiles(items)
	} else {
		err = op.AddText(strings.Join(items, " "))
	}
	if err != nil {
		return err
	}

	report(op, "added")
	return nil
}

func paste(clip *store.Clipboard, cfg *config.Config, logger *zap.Logger, items []string, force bool) error {
	patterns, err := buildPatterns(cfg, items)
	if err != nil {
		return err
	}

	unlock, err := acquire(clip, force)
	if err != nil {
		return err
	}
	defer unlock()

	op := ops.New(clip, ops.Config{
		Cut:      clipWasCut(clip),
		SafeCopy: cfg.SafeCopy,
		Patterns: patterns,
		Decider:  newPromptDecider(),
		Logger:   logger,
	})

	if stdoutIsPiped() {
		err = op.PipeOut(os.Stdout)
	} else {
		cwd, werr := os.Getwd()
		if werr != nil {
			return werr
		}
		err = op.Paste(cwd)
	}
	if err != nil {
		return err
	}

	report(op, "pasted")
	return nil
}

func show(clip *store.Clipboard, cfg *config.Config, items []string) error {
	if clip.IsText() {
		data, err := clip.ReadRaw()
		if err != nil {
			return err
		}
		preview := strings.ReplaceAll(string(data), "\n", "")
		if len(preview) > 250 {
			preview = preview[:250]
		}
		fmt.Printf("Text in clipboard %s:\n", clip.Name())
		fmt.Printf("  %s\n", preview)
		return nil
	}

	patterns, err := buildPatterns(cfg, items)
	if err != nil {
		return err
	}

	op := ops.New(clip, ops.Config{Patterns: patterns})
	names, err := op.Entries()
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Printf("Clipboard %s is empty\n", clip.Name())
		return nil
	}

	fmt.Printf("Items in clipboard %s:\n", clip.Name())
	for _, name := range names {
		fmt.Printf("  %s\n", name)
	}
	return nil
}

func status(st *store.Store) error {
	summaries, err := st.List()
	if err != nil {
		return err
	}
	if len(summaries) == 0 {
		fmt.Printf("All clipboards are empty\n")
		return nil
	}

	for _, summary := range summaries {
		marker := ""
		if summary.Persistent {
			marker = " (p)"
		}
		fmt.Printf("%s%s: %s\n", summary.Name, marker, strings.Join(summary.Preview, ", "))
	}
	return nil
}

func info(clip *store.Clipboard) error {
	ci, err := clip.Info()
	if err != nil {
		return err
	}

	fmt.Printf("Clipboard Info\n")
	fmt.Printf("-        name: %s\n", ci.Name)
	fmt.Printf("-    location: %s\n", ci.Location)
	fmt.Printf("-  persistent: %t\n", ci.Persistent)
	if ci.Text {
		fmt.Printf("-        mode: text\n")
		fmt.Printf("-       bytes: %s\n", humanize.Comma(ci.RawBytes))
		fmt.Printf("-        type: %s\n", ci.ContentType)
	} else {
		fmt.Printf("-        mode: items\n")
		fmt.Printf("-       files: %d\n", ci.Files)
		fmt.Printf("- directories: %d\n", ci.Directories)
		fmt.Printf("-       bytes: %s\n", humanize.Comma(ci.TotalBytes))
	}
	if ci.Locked {
		fmt.Printf("-      locked: by process %d\n", ci.LockPid)
	} else {
		fmt.Printf("-      locked: no\n")
	}
	if ci.Note != "" {
		fmt.Printf("-        note: %s\n", ci.Note)
	}
	return nil
}

func note(clip *store.Clipboard, items []string) error {
	if stdinIsPiped() {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return err
		}
		return clip.SetNote(string(data))
	}

	switch len(items) {
	case 0:
		text, err := clip.Note()
		if err != nil {
			return err
		}
		if text == "" {
			fmt.Printf("There is no note for clipboard %s\n", clip.Name())
		} else {
			fmt.Printf("%s\n", text)
		}
		return nil
	case 1:
		if items[0] == "" {
			return clip.ClearNote()
		}
		return clip.SetNote(items[0])
	}

	return fmt.Errorf("a note is a single piece of text")
}

func remove(clip *store.Clipboard, cfg *config.Config, logger *zap.Logger, items []string, force bool) error {
	if len(items) == 0 && stdinIsPiped() {
		data, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && len(data) == 0 {
			return err
		}
		items = []string{strings.TrimSuffix(data, "\n")}
	}

	patterns, err := buildPatterns(cfg, items)
	if err != nil {
		return err
	}

	unlock, err := acquire(clip, force)
	if err != nil {
		return err
	}
	defer unlock()

	op := ops.New(clip, ops.Config{
		Patterns: patterns,
		Logger:   logger,
	})

	err = op.Remove()
	if err != nil {
		return err
	}

	report(op, "removed")
	return nil
}

func load(st *store.Store, clip *store.Clipboard, cfg *config.Config, logger *zap.Logger, items []string) error {
	op := ops.New(clip, ops.Config{
		SafeCopy: cfg.SafeCopy,
		Logger:   logger,
	})

	err := op.Load(st, items)
	if err != nil {
		return err
	}

	report(op, "loaded")
	return nil
}

func clear(clip *store.Clipboard, cfg *config.Config, logger *zap.Logger, force bool) error {
	unlock, err := acquire(clip, force)
	if err != nil {
		return err
	}
	// clearing removes the lock marker along with everything else
	defer unlock()

	op := ops.New(clip, ops.Config{Logger: logger})
	return op.Clear()
}

func export(clip *store.Clipboard, items []string, passphrase string) error {
	sink := os.Stdout
	if len(items) == 1 {
		f, err := os.Create(items[0])
		if err != nil {
			return err
		}
		defer f.Close()
		sink = f
	} else if stdoutIsPiped() == false {
		return fmt.Errorf("provide a bundle file or pipe the output")
	}

	size, err := archive.Export(clip, sink, passphrase)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Exported clipboard %s (%s bytes)\n", clip.Name(), humanize.Comma(size))
	return nil
}

func importBundle(clip *store.Clipboard, items []string, passphrase string) error {
	source := os.Stdin
	if len(items) == 1 {
		f, err := os.Open(items[0])
		if err != nil {
			return err
		}
		defer f.Close()
		source = f
	} else if stdinIsPiped() == false {
		return fmt.Errorf("provide a bundle file or pipe the input")
	}

	size, err := archive.Import(clip, source, passphrase)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Imported clipboard %s (%s bytes)\n", clip.Name(), humanize.Comma(size))
	return nil
}

// acquire takes the clipboard lock for this process. A lock held by a
// live process is respected unless forced; a dead holder's lock is
// stale and stolen silently.
func acquire(clip *store.Clipboard, force bool) (func(), error) {
	pid, held := clip.LockedBy()
	if held && pid != os.Getpid() {
		if force == false && processAlive(pid) {
			return nil, fmt.Errorf("clipboard '%s' is in use by process %d; use -f to take over", clip.Name(), pid)
		}
	}

	err := clip.Lock(os.Getpid())
	if err != nil {
		return nil, err
	}

	return func() { clip.Unlock() }, nil
}

func processAlive(pid int) bool {
	return syscall.Kill(pid, syscall.Signal(0)) == nil
}

// clipWasCut reports whether the staged contents came from a cut, i.e.
// originals were recorded for later removal.
func clipWasCut(clip *store.Clipboard) bool {
	originals, err := clip.Originals()
	return err == nil && len(originals) > 0
}

func buildPatterns(cfg *config.Config, items []string) (match.Set, error) {
	if cfg.Dialect == config.DialectGlob {
		return match.NewGlobSet(items)
	}
	return match.NewRegexSet(items)
}

func stdinIsPiped() bool {
	st, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return st.Mode()&os.ModeCharDevice == 0
}

func stdoutIsPiped() bool {
	st, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return st.Mode()&os.ModeCharDevice == 0
}

func pathExists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

func allPathsExist(paths []string) bool {
	for _, path := range paths {
		if pathExists(path) == false {
			return false
		}
	}
	return true
}

func verb(cut bool) string {
	if cut {
		return "cut"
	}
	return "copied"
}

// promptDecider asks the user on the terminal how to handle a
// collision and maps the answer to a policy value.
type promptDecider struct {
	in *bufio.Reader
}

func newPromptDecider() *promptDecider {
	return &promptDecider{in: bufio.NewReader(os.Stdin)}
}

func (d *promptDecider) Decide(name string) (xfer.Policy, error) {
	for {
		fmt.Fprintf(os.Stderr, "'%s' already exists: [s]kip, [S]kip all, [r]eplace, [R]eplace all? ", name)

		line, err := d.in.ReadString('\n')
		if err != nil {
			return xfer.Undecided, err
		}

		switch strings.TrimSpace(line) {
		case "s":
			return xfer.SkipOnce, nil
		case "S":
			return xfer.SkipAll, nil
		case "r":
			return xfer.ReplaceOnce, nil
		case "R":
			return xfer.ReplaceAll, nil
		}
	}
}

func report(op *ops.Op, verb string) {
	fmt.Fprintf(os.Stderr, "Summary\n")
	fmt.Fprintf(os.Stderr, "- %s files: %d\n", verb, op.Totals.Files)
	fmt.Fprintf(os.Stderr, "- %s directories: %d\n", verb, op.Totals.Directories)
	fmt.Fprintf(os.Stderr, "- %s bytes: %s\n", verb, humanize.Comma(op.Totals.Bytes))
	if len(op.Failed) > 0 {
		fmt.Fprintf(os.Stderr, "- failed: %d\n", len(op.Failed))
		for _, item := range op.Failed {
			fmt.Fprintf(os.Stderr, "  - %s: %s\n", item.Name, item.Err)
		}
		os.Exit(1)
	}
}

func newLogger(level string, verbose bool) *zap.Logger {
	zcfg := zap.NewDevelopmentConfig()

	parsed, err := zapcore.ParseLevel(level)
	if err != nil {
		parsed = zapcore.WarnLevel
	}
	if verbose {
		parsed = zapcore.DebugLevel
	}
	zcfg.Level = zap.NewAtomicLevelAt(parsed)

	logger, err := zcfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
