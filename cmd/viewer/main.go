// Command viewer is a terminal inspector for tour projects. It fetches a
// project's hierarchy from a running tour service and walks it with the
// same navigator the interactive viewer uses, so what it prints is what
// the viewer would show.
package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/alecthomas/kong"
	"github.com/demointeriors/tour-service/internal/client"
	"github.com/demointeriors/tour-service/internal/navigator"
	"github.com/demointeriors/tour-service/internal/orientation"
)

type cliCtx struct {
	context.Context
	client *client.Client
}

type cli struct {
	Server string `help:"Tour service base URL" default:"http://localhost:8080" env:"TOUR_SERVER"`
	Token  string `help:"Bearer token for authenticated endpoints" env:"TOUR_TOKEN"`

	Tree      TreeCmd      `cmd:"" help:"Print the project hierarchy"`
	Show      ShowCmd      `cmd:"" help:"Show the current scene of a project"`
	Analytics AnalyticsCmd `cmd:"" help:"Print viewer activity counters"`
	Snapshot  SnapshotCmd  `cmd:"" help:"Record a snapshot event"`
}

func main() {
	var cli cli
	ctx := kong.Parse(&cli,
		kong.UsageOnError(),
		kong.Name("viewer"),
		kong.Description("viewer inspects tour projects through the tour service API"),
	)

	err := ctx.Run(&cliCtx{
		Context: context.Background(),
		client:  client.New(cli.Server, cli.Token),
	})
	ctx.FatalIfErrorf(err)
}

type TreeCmd struct {
	Project string `arg:"" help:"Project ID"`
}

func (c *TreeCmd) Run(ctx *cliCtx) error {
	tree, err := ctx.client.Hierarchy(ctx, c.Project)
	if err != nil {
		return err
	}

	fmt.Printf("%s (%s)\n", tree.Project.Name, tree.Project.ID)
	for _, building := range tree.Buildings {
		fmt.Printf("  %s\n", building.Name)
		for _, flat := range building.Flats {
			fmt.Printf("    %s (level %d)\n", flat.Name, flat.Level)
			for _, room := range flat.Rooms {
				fmt.Printf("      %s  views=%d pins=%d\n", room.Name, len(room.Views), len(room.Pins))
				for _, view := range room.Views {
					at := orientation.Orientation{Yaw: view.DefaultYaw, Pitch: view.DefaultPitch}
					fmt.Printf("        %s  default %s\n", view.Name, orientation.Format(at))
				}
			}
		}
	}
	return nil
}

type ShowCmd struct {
	Project string `arg:"" help:"Project ID"`
	Room    string `help:"Select a room before showing" short:"r"`
	View    string `help:"Select a view before showing" short:"v"`
}

func (c *ShowCmd) Run(ctx *cliCtx) error {
	tree, err := ctx.client.Hierarchy(ctx, c.Project)
	if err != nil {
		return err
	}

	nav := navigator.New(ctx.client, nil)
	nav.SetHierarchy(tree)

	if c.Room != "" {
		if err := nav.SelectRoom(c.Room); err != nil {
			return err
		}
	}
	if c.View != "" {
		nav.SelectView(c.View)
	}

	room, ok := nav.CurrentRoom()
	if !ok {
		fmt.Println("project has no rooms")
		return nil
	}
	fmt.Printf("room: %s (%s)\n", room.Name, room.ID)

	view, ok := nav.CurrentView()
	if !ok {
		fmt.Println("room has no views")
		return nil
	}
	at := orientation.Orientation{Yaw: view.DefaultYaw, Pitch: view.DefaultPitch}
	fmt.Printf("view: %s (%s)  default %s\n", view.Name, view.ID, orientation.Format(at))

	switch url, err := nav.CurrentAssetURL(ctx); {
	case errors.Is(err, navigator.ErrAssetUnresolved):
		fmt.Println("panorama: pending")
	case err != nil:
		return err
	default:
		fmt.Printf("panorama: %s\n", url)
	}

	for _, pin := range nav.CurrentPins() {
		anchor := orientation.Orientation{Yaw: pin.Yaw, Pitch: pin.Pitch}
		fmt.Printf("pin: %-20s -> room %s  at %s\n", pin.Label, pin.TargetRoomID, orientation.Format(anchor))
	}
	return nil
}

type AnalyticsCmd struct {
	Project string `arg:"" help:"Project ID"`
}

func (c *AnalyticsCmd) Run(ctx *cliCtx) error {
	analytics, err := ctx.client.Analytics(ctx, c.Project)
	if err != nil {
		return err
	}
	fmt.Printf("views:     %d\n", analytics.TotalViews)
	fmt.Printf("snapshots: %d\n", analytics.SnapshotsDownloaded)
	if !analytics.LastViewedAt.IsZero() {
		fmt.Printf("last view: %s\n", analytics.LastViewedAt.Format("2006-01-02 15:04:05 MST"))
	}
	return nil
}

type SnapshotCmd struct {
	Project string `arg:"" help:"Project ID"`
	View    string `help:"View the snapshot was taken from" short:"v"`
}

func (c *SnapshotCmd) Run(ctx *cliCtx) error {
	if err := ctx.client.RecordSnapshot(ctx, c.Project, c.View); err != nil {
		return err
	}
	fmt.Println("snapshot recorded")
	return nil
}
