package main

import (
	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Globals

	Version kong.VersionFlag `short:"v" help:"Show version"`
	Serve   ServeCmd         `cmd:"" help:"Serve the range API and change stream"`
	List    ListCmd          `cmd:"" help:"List saved ranges"`
	Show    ShowCmd          `cmd:"" help:"Show a range as a 13x13 grid"`
	Paint   PaintCmd         `cmd:"" help:"Assign an action to hands in a range"`
	Clear   ClearCmd         `cmd:"" help:"Remove an action (or everything) from a range"`
	Delete  DeleteCmd        `cmd:"" help:"Delete a saved range"`
	Export  ExportCmd        `cmd:"" help:"Export every range as JSON"`
	Import  ImportCmd        `cmd:"" help:"Import ranges from an export file"`
	Migrate MigrateCmd       `cmd:"" help:"Migrate legacy data and repair the range index"`
	Options OptionsCmd       `cmd:"" help:"List the legal positions for a role"`
	Library LibraryCmd       `cmd:"" help:"Manage free-form ranges kept in folders"`
}

func main() {
	// A missing .env file is fine; real environment variables still apply.
	_ = godotenv.Load()

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("rangebook"),
		kong.Description("Build and store preflop ranges for six-handed cash games"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}
