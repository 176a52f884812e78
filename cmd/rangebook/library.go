package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss/tree"
	"github.com/lox/rangebook/internal/display"
	"github.com/lox/rangebook/internal/library"
)

// LibraryCmd manages free-form ranges kept in folders
type LibraryCmd struct {
	Tree         LibraryTreeCmd         `cmd:"" default:"1" help:"Show the folder tree"`
	AddFolder    LibraryAddFolderCmd    `cmd:"" help:"Create a folder"`
	DeleteFolder LibraryDeleteFolderCmd `cmd:"" help:"Delete a folder and everything in it"`
	Toggle       LibraryToggleCmd       `cmd:"" help:"Expand or collapse a folder"`
	Add          LibraryAddCmd          `cmd:"" help:"Create an empty range in a folder"`
	Show         LibraryShowCmd         `cmd:"" help:"Show a range as a 13x13 grid"`
	Paint        LibraryPaintCmd        `cmd:"" help:"Set the weight of hands in a range"`
	Delete       LibraryDeleteCmd       `cmd:"" help:"Delete a range"`
	Export       LibraryExportCmd       `cmd:"" help:"Print a range in its portable JSON form"`
}

type LibraryTreeCmd struct {
	All  bool `help:"Show the ranges of collapsed folders too"`
	JSON bool `help:"Print JSON instead of a tree"`
}

func (c *LibraryTreeCmd) Run(g *Globals) error {
	return withApp(g, func(ctx context.Context, a *app) error {
		folders, err := a.lib.Folders(ctx)
		if err != nil {
			return err
		}
		if c.JSON {
			return printJSON(folders)
		}
		fmt.Println(formatLibrary(folders, c.All))
		return nil
	})
}

// formatLibrary renders the folder tree. Collapsed folders only show how
// many ranges they hold unless all is set.
func formatLibrary(folders []library.Folder, all bool) string {
	root := tree.Root(display.HeaderStyle.Render(" Library ")).
		EnumeratorStyle(display.InfoStyle)
	for _, f := range folders {
		root.Child(folderNode(f, all))
	}
	return root.String()
}

func folderNode(f library.Folder, all bool) *tree.Tree {
	marker := "+"
	if f.IsExpanded {
		marker = "-"
	}
	node := tree.Root(fmt.Sprintf("%s %s %s", marker, f.Name, display.InfoStyle.Render(f.ID)))
	if !f.IsExpanded && !all {
		if len(f.Ranges) > 0 {
			node.Child(display.InfoStyle.Render(fmt.Sprintf("%d ranges", len(f.Ranges))))
		}
		return node
	}
	for _, sub := range f.Subfolders {
		node.Child(folderNode(sub, all))
	}
	for _, r := range f.Ranges {
		node.Child(fmt.Sprintf("%s  %.1f combos %.1f%%  %s",
			r.Name, r.Combinations, r.TotalPercentage, display.InfoStyle.Render(r.ID)))
	}
	return node
}

type LibraryAddFolderCmd struct {
	Name   string `arg:"" help:"Folder name"`
	Parent string `help:"Parent folder id; omit for a top-level folder"`
}

func (c *LibraryAddFolderCmd) Run(g *Globals) error {
	return withApp(g, func(ctx context.Context, a *app) error {
		f, err := a.lib.AddFolder(ctx, c.Parent, c.Name)
		if err != nil {
			return err
		}
		fmt.Printf("Created folder %s (%s)\n", f.Name, f.ID)
		return nil
	})
}

type LibraryDeleteFolderCmd struct {
	ID string `arg:"" help:"Folder id"`
}

func (c *LibraryDeleteFolderCmd) Run(g *Globals) error {
	return withApp(g, func(ctx context.Context, a *app) error {
		existed, err := a.lib.DeleteFolder(ctx, c.ID)
		if err != nil {
			return err
		}
		if !existed {
			fmt.Println(display.WarningStyle.Render("No folder " + c.ID))
			return nil
		}
		fmt.Println("Deleted folder " + c.ID)
		return nil
	})
}

type LibraryToggleCmd struct {
	ID string `arg:"" help:"Folder id"`
}

func (c *LibraryToggleCmd) Run(g *Globals) error {
	return withApp(g, func(ctx context.Context, a *app) error {
		f, err := a.lib.ToggleFolder(ctx, c.ID)
		if err != nil {
			return err
		}
		state := "collapsed"
		if f.IsExpanded {
			state = "expanded"
		}
		fmt.Printf("%s %s\n", f.Name, state)
		return nil
	})
}

type LibraryAddCmd struct {
	Folder string `arg:"" help:"Folder id"`
	Name   string `arg:"" help:"Range name"`
}

func (c *LibraryAddCmd) Run(g *Globals) error {
	return withApp(g, func(ctx context.Context, a *app) error {
		r, err := a.lib.AddRange(ctx, c.Folder, c.Name)
		if err != nil {
			return err
		}
		fmt.Printf("Created range %s (%s)\n", r.Name, r.ID)
		return nil
	})
}

type LibraryShowCmd struct {
	ID string `arg:"" help:"Range id"`
}

func (c *LibraryShowCmd) Run(g *Globals) error {
	return withApp(g, func(ctx context.Context, a *app) error {
		r, err := a.lib.FindRange(ctx, c.ID)
		if err != nil {
			return err
		}
		fmt.Println(display.HeaderStyle.Render(r.Name))
		fmt.Println(display.RenderWeightGrid(r.Hands))
		fmt.Println(formatShape(r))
		return nil
	})
}

func formatShape(r library.Range) string {
	s := library.ShapeOf(r.Hands)
	return fmt.Sprintf("%.1f combos, %.1f%%  pairs %d  suited %d  offsuit %d",
		r.Combinations, r.TotalPercentage, s.Pairs, s.Suited, s.Offsuit)
}

type LibraryPaintCmd struct {
	ID     string `arg:"" help:"Range id"`
	Hands  string `short:"H" required:"" help:"Hands in range notation, e.g. 'TT+,AQs+,KQo'"`
	Weight int    `short:"w" default:"100" help:"Weight 0-100; 0 removes the hands"`
}

func (c *LibraryPaintCmd) Run(g *Globals) error {
	return withApp(g, func(ctx context.Context, a *app) error {
		r, err := a.lib.FindRange(ctx, c.ID)
		if err != nil {
			return err
		}
		hands, err := library.Paint(r.Hands, c.Hands, c.Weight)
		if err != nil {
			return err
		}
		saved, err := a.lib.UpdateRange(ctx, c.ID, library.RangeUpdate{Hands: &hands})
		if err != nil {
			return err
		}
		fmt.Println(formatShape(saved))
		return nil
	})
}

type LibraryDeleteCmd struct {
	ID string `arg:"" help:"Range id"`
}

func (c *LibraryDeleteCmd) Run(g *Globals) error {
	return withApp(g, func(ctx context.Context, a *app) error {
		existed, err := a.lib.DeleteRange(ctx, c.ID)
		if err != nil {
			return err
		}
		if !existed {
			fmt.Println(display.WarningStyle.Render("No range " + c.ID))
			return nil
		}
		fmt.Println("Deleted range " + c.ID)
		return nil
	})
}

type LibraryExportCmd struct {
	ID string `arg:"" help:"Range id"`
}

func (c *LibraryExportCmd) Run(g *Globals) error {
	return withApp(g, func(ctx context.Context, a *app) error {
		exported, err := a.lib.ExportRange(ctx, c.ID)
		if err != nil {
			return err
		}
		return printJSON(exported)
	})
}
