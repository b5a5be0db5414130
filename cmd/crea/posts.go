package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/hrygo/creastudio/client"
	"github.com/hrygo/creastudio/conversation"
	"github.com/hrygo/creastudio/plugin/feed"
)

func newPostsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "posts",
		Short: "Browse the post history",
	}
	cmd.AddCommand(newPostsListCmd(), newPostsGetCmd(), newPostsDeleteCmd(), newPostsFeedCmd())
	return cmd
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.Errorf("invalid id %q", arg)
	}
	return id, nil
}

func newPostsListCmd() *cobra.Command {
	var f client.PostFilter
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List generated posts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			resp := c.Posts.ListFiltered(cmd.Context(), f)
			page, err := unwrap(cmd.ErrOrStderr(), resp)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), page)
			}

			rows := [][]string{{"ID", "STATUS", "OBJECTIVE", "STYLE", "CREATED", "CAPTION"}}
			for _, p := range page.Posts {
				rows = append(rows, []string{
					strconv.FormatInt(p.ID, 10),
					string(p.Status),
					p.Objective,
					p.Style,
					p.CreatedAt,
					truncate(conversation.ParseCaption(p.Content).Body, 50),
				})
			}
			if err := table(cmd.OutOrStdout(), rows); err != nil {
				return err
			}
			pg := page.Pagination
			fmt.Fprintf(cmd.OutOrStdout(), "\npage %d of %d, %d posts\n", pg.Page, pg.Pages, pg.Total)
			return nil
		},
	}
	cmd.Flags().IntVar(&f.Page, "page", 1, "page number")
	cmd.Flags().IntVar(&f.PerPage, "per-page", 10, "posts per page")
	cmd.Flags().StringVar(&f.Status, "status", "", "draft, scheduled, published or failed")
	cmd.Flags().StringVar(&f.Platform, "platform", "", "platform name")
	cmd.Flags().StringVar(&f.Objective, "objective", "", "objective name")
	cmd.Flags().StringVar(&f.Style, "style", "", "style name")
	cmd.Flags().StringVar(&f.Search, "search", "", "text search")
	cmd.Flags().StringVar(&f.StartDate, "from", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.EndDate, "to", "", "end date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.SortBy, "sort", "", "sort field")
	cmd.Flags().StringVar(&f.SortOrder, "order", "", "asc or desc")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func newPostsGetCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "get ID",
		Short: "Show one post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			c, err := newClient()
			if err != nil {
				return err
			}
			post, err := unwrap(cmd.ErrOrStderr(), c.Posts.Get(cmd.Context(), id))
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), post)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Post %d (%s)\n", post.ID, post.Status)
			fmt.Fprintf(out, "Objective: %s  Style: %s\n", post.Objective, post.Style)
			if post.ImageURL != "" {
				fmt.Fprintf(out, "Image: %s\n", post.ImageURL)
			}
			fmt.Fprintf(out, "\n%s\n", conversation.ParseCaption(post.Content))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func newPostsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			c, err := newClient()
			if err != nil {
				return err
			}
			resp := c.Posts.Delete(cmd.Context(), id)
			if _, err := unwrap(cmd.ErrOrStderr(), resp); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Message)
			return nil
		},
	}
}

func newPostsFeedCmd() *cobra.Command {
	var format, output, title string
	var pages, perPage int
	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Export the post history as RSS, Atom or JSON Feed",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ff, err := feed.ParseFormat(format)
			if err != nil {
				return err
			}
			c, err := newClient()
			if err != nil {
				return err
			}

			var posts []client.Post
			for page := 1; page <= pages; page++ {
				p, err := unwrap(cmd.ErrOrStderr(), c.Posts.List(cmd.Context(), page, perPage))
				if err != nil {
					return err
				}
				posts = append(posts, p.Posts...)
				if !p.Pagination.HasNext {
					break
				}
			}

			f := feed.Build(posts, feed.Options{Title: title, BaseURL: c.BaseURL()})
			w := cmd.OutOrStdout()
			if output != "" && output != "-" {
				file, err := os.Create(output)
				if err != nil {
					return errors.Wrapf(err, "failed to create %s", output)
				}
				defer file.Close()
				w = file
			}
			return feed.Write(w, f, ff)
		},
	}
	cmd.Flags().StringVar(&format, "format", "rss", "rss, atom or json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to a file instead of stdout")
	cmd.Flags().StringVar(&title, "title", "", "feed title")
	cmd.Flags().IntVar(&pages, "pages", 1, "history pages to include")
	cmd.Flags().IntVar(&perPage, "per-page", 50, "posts per page")
	return cmd
}
