// Command schemadef is the CLI surface for the schema-management and
// migration engine, per spec.md §6. Subcommand wiring follows the teacher's
// cmd/psqldef/psqldef.go use of github.com/jessevdk/go-flags, generalized from
// one flat flag set to go-flags' command registry since this CLI has seven
// subcommands rather than one.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jessevdk/go-flags"
	"github.com/k0kubun/pp/v3"

	schemadef "github.com/schemadef/schemadef"
	"github.com/schemadef/schemadef/config"
	"github.com/schemadef/schemadef/orchestrator"
	"github.com/schemadef/schemadef/seedfile"
	"github.com/schemadef/schemadef/util"
)

var version string

type globalOptions struct {
	Config string `long:"config" description:"Path to the configuration file" value-name:"path" default:"schemadef.yml"`
}

type upCommand struct {
	globalOptions
	Yes         bool   `long:"yes" description:"Apply without confirmation"`
	Create      bool   `long:"create" description:"Create the target database if missing"`
	Name        string `long:"name" description:"Limit to a single cluster by name"`
	Tenant      string `long:"tenant" description:"Limit to nodes carrying this tenant key"`
	Mute        bool   `long:"mute" description:"Suppress statement-level output"`
	Dry         bool   `long:"dry" description:"Render statements without applying them"`
	DropOrphans bool   `long:"drop-orphans" description:"Drop tables present in the database but absent from declarations"`
	Display     string `long:"display" description:"Output mode: plain or pretty" default:"plain"`
}

type diffCommand struct {
	globalOptions
	Name        string `long:"name" description:"Limit to a single cluster by name"`
	Tenant      string `long:"tenant" description:"Limit to nodes carrying this tenant key"`
	DropOrphans bool   `long:"drop-orphans" description:"Include orphan-table drops in the rendered diff"`
	Display     string `long:"display" description:"Output mode: plain or pretty" default:"plain"`
}

type statusCommand struct {
	globalOptions
	Name   string `long:"name" description:"Limit to a single cluster by name"`
	Tenant string `long:"tenant" description:"Limit to nodes carrying this tenant key"`
}

type queryCommand struct {
	globalOptions
	Name string `long:"name" description:"Limit to a single cluster by name"`
	Args struct {
		SQL string `positional-arg-name:"sql" required:"true"`
	} `positional-args:"yes"`
}

type seedCommand struct {
	globalOptions
	Yes   bool   `long:"yes" description:"Apply without confirmation"`
	Table string `long:"table" description:"Limit to a single table"`
	Args  struct {
		File string `positional-arg-name:"file"`
	} `positional-args:"yes"`
}

type seedDumpCommand struct {
	globalOptions
	Table    string `long:"table" description:"Table to dump" required:"true"`
	Exclude  string `long:"exclude" description:"Comma-separated column names to exclude"`
	All      bool   `long:"all" description:"Dump every row, ignoring --limit"`
	Limit    int    `long:"limit" description:"Maximum number of rows to dump" default:"100"`
	SkipAuto bool   `long:"skip-auto" description:"Exclude columns whose default is a sequence (nextval)"`
}

type initCommand struct {
	globalOptions
}

func (c *upCommand) Execute(args []string) error {
	util.InitSlog()
	cfg, err := config.Load(c.Config, warnMissingEnv)
	if err != nil {
		return err
	}
	targets, closers, err := buildTargets(cfg, c.Name, c.Tenant, c.Create)
	if err != nil {
		return err
	}
	defer closeAll(closers)

	if !c.Yes && !c.Dry {
		if !confirm("Apply these changes?") {
			cancelErr := &schemadef.Error{Kind: schemadef.ErrKindUserCancel, Context: c.Config, Message: "user declined to apply"}
			slog.Info(cancelErr.Error())
			fmt.Println("aborted")
			return nil
		}
	}

	ctx, cancel := rootContext()
	defer cancel()

	results, err := orchestrator.Up(ctx, targets, cfg.CustomFields, orchestrator.Options{
		Create:      c.Create,
		DropOrphans: c.DropOrphans,
		Dry:         c.Dry,
	})
	if err != nil {
		return err
	}

	failed := false
	for _, r := range results {
		if !c.Mute {
			renderTargetResult(r, c.Display)
		}
		if r.Failed() {
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
	return nil
}

func (c *diffCommand) Execute(args []string) error {
	util.InitSlog()
	cfg, err := config.Load(c.Config, warnMissingEnv)
	if err != nil {
		return err
	}
	targets, closers, err := buildTargets(cfg, c.Name, c.Tenant, false)
	if err != nil {
		return err
	}
	defer closeAll(closers)

	ctx, cancel := rootContext()
	defer cancel()

	plans, err := orchestrator.Diff(ctx, targets, cfg.CustomFields, c.DropOrphans)
	if err != nil {
		return err
	}
	for target, stmts := range plans {
		fmt.Printf("-- %s --\n", target)
		renderStatements(stmts, c.Display)
	}
	return nil
}

func (c *statusCommand) Execute(args []string) error {
	util.InitSlog()
	cfg, err := config.Load(c.Config, warnMissingEnv)
	if err != nil {
		return err
	}
	targets, closers, err := buildTargets(cfg, c.Name, c.Tenant, false)
	if err != nil {
		return err
	}
	defer closeAll(closers)

	ctx, cancel := rootContext()
	defer cancel()

	statuses, err := orchestrator.Status(ctx, targets, cfg.CustomFields)
	if err != nil {
		return err
	}
	for target, tables := range statuses {
		fmt.Printf("-- %s --\n", target)
		for _, t := range tables {
			if t.UpToDate {
				fmt.Printf("  %-32s up-to-date\n", t.Table)
			} else {
				fmt.Printf("  %-32s pending (%d statements)\n", t.Table, t.Statement)
			}
		}
	}
	return nil
}

func (c *queryCommand) Execute(args []string) error {
	util.InitSlog()
	cfg, err := config.Load(c.Config, warnMissingEnv)
	if err != nil {
		return err
	}
	targets, closers, err := buildTargets(cfg, c.Name, "", false)
	if err != nil {
		return err
	}
	defer closeAll(closers)

	ctx, cancel := rootContext()
	defer cancel()

	for _, tgt := range targets {
		rows, err := tgt.Exec.QueryContext(ctx, c.Args.SQL)
		if err != nil {
			return fmt.Errorf("target %s: %w", tgt.Name, err)
		}
		printRows(tgt.Name, rows)
	}
	return nil
}

func (c *seedCommand) Execute(args []string) error {
	util.InitSlog()
	cfg, err := config.Load(c.Config, warnMissingEnv)
	if err != nil {
		return err
	}
	dirs := []string{cfg.SeedPath}
	if c.Args.File != "" {
		dirs = []string{c.Args.File}
	}
	tables, fileErrs := seedfile.LoadDirs(dirs)
	for _, fe := range fileErrs {
		fmt.Fprintln(os.Stderr, "parse error:", fe)
	}
	if c.Table != "" {
		tables = filterSeedTables(tables, c.Table)
	}

	if !c.Yes {
		if !confirm(fmt.Sprintf("Reconcile %d table(s)?", len(tables))) {
			cancelErr := &schemadef.Error{Kind: schemadef.ErrKindUserCancel, Context: c.Config, Message: "user declined to reconcile"}
			slog.Info(cancelErr.Error())
			fmt.Println("aborted")
			return nil
		}
	}

	return runSeed(cfg, tables)
}

func (c *seedDumpCommand) Execute(args []string) error {
	util.InitSlog()
	cfg, err := config.Load(c.Config, warnMissingEnv)
	if err != nil {
		return err
	}
	exclude := map[string]bool{}
	if c.Exclude != "" {
		for _, col := range strings.Split(c.Exclude, ",") {
			exclude[strings.TrimSpace(col)] = true
		}
	}
	limit := c.Limit
	if c.All {
		limit = 0
	}
	return runSeedDump(cfg, c.Table, exclude, limit, c.SkipAuto)
}

func (c *initCommand) Execute(args []string) error {
	sample := `clusters:
  main:
    name: app_db
    host: 127.0.0.1
    port: 5432
    user: postgres
    pass: "<ENV.SCHEMADEF_PASS>"
    path: ["./declarations"]
customFields:
  id:
    type: SERIAL
    key: PRIMARY
seedPath: ./seeds
displayMode: plain
`
	if err := os.WriteFile(c.Config, []byte(sample), 0644); err != nil {
		return err
	}
	if err := os.MkdirAll("declarations", 0755); err != nil {
		return err
	}
	if err := os.MkdirAll("seeds", 0755); err != nil {
		return err
	}
	fmt.Printf("wrote %s, declarations/, seeds/\n", c.Config)
	return nil
}

func rootContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func warnMissingEnv(name string) {
	fmt.Fprintf(os.Stderr, "warning: environment variable %s is not set, substituting empty string\n", name)
}

func renderTargetResult(r schemadef.TargetResult, display string) {
	if display == "pretty" {
		pp.Println(r)
		return
	}
	fmt.Printf("%s: executed %d/%d statement(s)", r.Target, r.ExecutedCount, r.TotalCount)
	if len(r.Failures) > 0 {
		fmt.Printf(", %d failure(s)", len(r.Failures))
	}
	fmt.Println()
	for _, f := range r.Failures {
		fmt.Printf("  FAILED: %s (%v)\n", f.Statement.SQL, f.Err)
	}
	for _, orphan := range r.OrphanTables {
		fmt.Printf("  orphan table: %s\n", orphan)
	}
}

func renderStatements(stmts interface{}, display string) {
	if display == "pretty" {
		pp.Println(stmts)
		return
	}
	data, _ := json.MarshalIndent(stmts, "", "  ")
	fmt.Println(string(data))
}

func filterSeedTables(tables []seedfile.Table, name string) []seedfile.Table {
	var out []seedfile.Table
	for _, t := range tables {
		if t.Name == name {
			out = append(out, t)
		}
	}
	return out
}

func main() {
	parser := flags.NewParser(nil, flags.Default)
	parser.AddCommand("up", "Apply pending schema changes", "Reflect, diff, and apply statements for every matching target.", &upCommand{})
	parser.AddCommand("diff", "Render pending schema changes", "Reflect and diff without applying anything.", &diffCommand{})
	parser.AddCommand("status", "Report per-table up-to-date/pending status", "Pure composition of parse, reflect, and diff.", &statusCommand{})
	parser.AddCommand("query", "Run a raw SQL query against every matching target", "", &queryCommand{})
	parser.AddCommand("seed", "Reconcile declared seed rows against live data", "", &seedCommand{})
	parser.AddCommand("seed:dump", "Dump a table's rows as a seed file", "", &seedDumpCommand{})
	parser.AddCommand("init", "Write a sample configuration and directory layout", "", &initCommand{})

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		log.Fatal(err)
	}
}
