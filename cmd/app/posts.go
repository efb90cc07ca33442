package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/urfave/cli/v3"

	"github.com/starford/algonotes/internal/client"
	"github.com/starford/algonotes/internal/models"
)

func listPosts(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	base := cfg.Desk.APIBase
	if v := cmd.String("api"); v != "" {
		base = v
	}

	var opts []client.Option
	if cfg.Auth.AuthEnabled() {
		opts = append(opts, client.WithToken(cfg.Auth.Token))
	}
	posts, err := client.New(base, opts...).ListPosts(ctx, client.Filter{
		Tag:        cmd.String("tag"),
		Difficulty: cmd.String("difficulty"),
		Query:      cmd.String("query"),
	})
	if err != nil {
		return err
	}

	printPosts(color.Output, posts)
	return nil
}

var difficultyColor = map[string]*color.Color{
	"easy":   color.New(color.FgGreen),
	"medium": color.New(color.FgYellow),
	"hard":   color.New(color.FgRed),
}

// printPosts renders posts as an aligned table.
func printPosts(w io.Writer, posts []models.PostSummary) {
	if len(posts) == 0 {
		_, _ = fmt.Fprintln(w, color.New(color.Faint).Sprint("no posts"))
		return
	}

	bold := color.New(color.Bold)
	faint := color.New(color.Faint)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 48
	tbl.AddRow(bold.Sprint("DATE"), bold.Sprint("SLUG"), bold.Sprint("TITLE"), bold.Sprint("LEVEL"), bold.Sprint("TAGS"))
	for _, p := range posts {
		date := faint.Sprint("-")
		if p.Date != nil {
			date = *p.Date
		}
		level := faint.Sprint("-")
		if p.Difficulty != nil {
			level = *p.Difficulty
			if c, ok := difficultyColor[level]; ok {
				level = c.Sprint(level)
			}
		}
		tbl.AddRow(date, p.Slug, p.Title, level, strings.Join(p.Tags, ", "))
	}

	_, _ = fmt.Fprintln(w, tbl)
}
