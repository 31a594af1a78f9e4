package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/shishobooks/catalog/pkg/migrations"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
	"github.com/urfave/cli/v2"
)

// runner holds what every command needs. Output goes to out so the commands
// can be driven from tests.
type runner struct {
	db  *bun.DB
	out io.Writer
}

func newApp(db *bun.DB, out io.Writer) *cli.App {
	r := &runner{db, out}

	return &cli.App{
		Name:        "migrations",
		Usage:       "manage the catalog database schema",
		Description: "Runs, rolls back and creates bun migrations for the catalog database.",
		Writer:      out,
		Commands: []*cli.Command{
			{
				Name:   "init",
				Usage:  "create migration tables",
				Action: r.init,
			},
			{
				Name:   "migrate",
				Usage:  "apply every pending migration as one group",
				Action: r.migrate,
			},
			{
				Name:   "rollback",
				Usage:  "roll back the last migration group",
				Action: r.rollback,
			},
			{
				Name:      "create",
				Usage:     "create a Go migration",
				ArgsUsage: "<words of the migration name>",
				Action:    r.create,
			},
			{
				Name:   "status",
				Usage:  "print migration status and catalog table sizes",
				Action: r.status,
			},
		},
	}
}

func (r *runner) init(c *cli.Context) error {
	if err := migrations.NewMigrator(r.db).Init(c.Context); err != nil {
		return errors.WithStack(err)
	}
	fmt.Fprintln(r.out, "Migration tables are ready")
	return nil
}

func (r *runner) migrate(c *cli.Context) error {
	group, err := migrations.BringUpToDate(c.Context, r.db)
	if err != nil {
		return err
	}

	if group.ID == 0 {
		fmt.Fprintln(r.out, "There are no new migrations to run")
		return nil
	}
	fmt.Fprintf(r.out, "Migrated to %s\n", group)
	return nil
}

func (r *runner) rollback(c *cli.Context) error {
	group, err := migrations.NewMigrator(r.db).Rollback(c.Context)
	if err != nil {
		return errors.WithStack(err)
	}

	if group.ID == 0 {
		fmt.Fprintln(r.out, "There are no groups to roll back")
		return nil
	}
	fmt.Fprintf(r.out, "Rolled back %s\n", group)
	return nil
}

func (r *runner) create(c *cli.Context) error {
	name := strings.Join(c.Args().Slice(), "_")
	if name == "" {
		return errors.New("a migration name is required")
	}

	mf, err := migrations.NewMigrator(r.db).CreateGoMigration(
		c.Context,
		name,
		migrate.WithGoTemplate(migrationTemplate),
	)
	if err != nil {
		return errors.WithStack(err)
	}
	fmt.Fprintf(r.out, "Created migration %s (%s)\n", mf.Name, mf.Path)
	return nil
}

func (r *runner) status(c *cli.Context) error {
	ms, err := migrations.NewMigrator(r.db).MigrationsWithStatus(c.Context)
	if err != nil {
		return errors.WithStack(err)
	}
	fmt.Fprintf(r.out, "Migrations: %s\n", ms)
	fmt.Fprintf(r.out, "Unapplied migrations: %s\n", ms.Unapplied())
	fmt.Fprintf(r.out, "Last migration group: %s\n", ms.LastGroup())

	fmt.Fprintln(r.out, "Catalog tables:")
	for _, table := range migrations.Tables {
		rows, ok, err := countRows(c.Context, r.db, table)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintf(r.out, "  %s: missing\n", table)
			continue
		}
		fmt.Fprintf(r.out, "  %s: %d rows\n", table, rows)
	}
	return nil
}

// countRows counts the rows in table. ok is false when the table doesn't
// exist yet.
func countRows(ctx context.Context, db *bun.DB, table string) (rows int, ok bool, err error) {
	ok, err = db.NewSelect().
		Table("sqlite_master").
		Where("type = 'table' AND name = ?", table).
		Exists(ctx)
	if err != nil || !ok {
		return 0, ok, errors.WithStack(err)
	}

	rows, err = db.NewSelect().Table(table).Count(ctx)
	if err != nil {
		return 0, true, errors.WithStack(err)
	}
	return rows, true, nil
}

const migrationTemplate = `package %s

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

func init() {
	up := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec("")
		return errors.WithStack(err)
	}

	down := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec("")
		return errors.WithStack(err)
	}

	Migrations.MustRegister(up, down)
}
`
