package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hrygo/creastudio/client"
)

func newTemplatesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "Manage image templates",
	}
	cmd.AddCommand(newTemplatesListCmd(), newTemplatesUploadCmd(), newTemplatesDeleteCmd())
	return cmd
}

func newTemplatesListCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List image templates",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			list, err := unwrap(cmd.ErrOrStderr(), c.Templates.List(cmd.Context()))
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), list)
			}
			rows := [][]string{{"ID", "NAME", "PREVIEW"}}
			for _, t := range list {
				rows = append(rows, []string{strconv.FormatInt(t.ID, 10), t.TemplateName, c.Templates.PreviewURL(t.StoragePath)})
			}
			return table(cmd.OutOrStdout(), rows)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

// newTemplatesUploadCmd uploads the image and then registers it as a
// template named after the file unless --name is given.
func newTemplatesUploadCmd() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "upload PATH",
		Short: "Upload an image and save it as a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := client.OpenUpload(args[0])
			if err != nil {
				return err
			}
			c, err := newClient()
			if err != nil {
				return err
			}
			up, err := unwrap(cmd.ErrOrStderr(), c.Templates.Upload(cmd.Context(), file))
			if err != nil {
				return err
			}
			if name == "" {
				name = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			}
			tpl, err := unwrap(cmd.ErrOrStderr(), c.Templates.Create(cmd.Context(), &client.ImageTemplateInput{
				TemplateName: name,
				StoragePath:  up.StoragePath,
			}))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Template %d saved: %s\n", tpl.ID, c.Templates.PreviewURL(tpl.StoragePath))
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "template name")
	return cmd
}

func newTemplatesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete an image template",
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
			resp := c.Templates.Delete(cmd.Context(), id)
			if _, err := unwrap(cmd.ErrOrStderr(), resp); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Message)
			return nil
		},
	}
}
