package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hrygo/creastudio/client"
	"github.com/hrygo/creastudio/envelope"
)

func newCompanyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "company",
		Short: "Manage the company profile used to generate posts",
	}
	cmd.AddCommand(newCompanyGetCmd(), newCompanySetCmd(), newCompanyDeleteCmd())
	return cmd
}

func newCompanyGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Show the company profile",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			info, err := unwrap(cmd.ErrOrStderr(), c.Company.Get(cmd.Context()))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), info)
		},
	}
}

// newCompanySetCmd creates the profile, or updates the flags that were
// given when one already exists.
func newCompanySetCmd() *cobra.Command {
	var in client.CompanyInfoInput
	var colors client.BrandColors
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Create or update the company profile",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if colors != (client.BrandColors{}) {
				in.BrandColors = &colors
			}
			c, err := newClient()
			if err != nil {
				return err
			}

			var resp *envelope.Response[client.CompanyInfo]
			if c.Company.Exists(cmd.Context()) {
				resp = c.Company.Update(cmd.Context(), &in)
			} else {
				resp = c.Company.Create(cmd.Context(), &in)
			}
			info, err := unwrap(cmd.ErrOrStderr(), resp)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.ErrOrStderr(), resp.Message)
			return printJSON(cmd.OutOrStdout(), info)
		},
	}
	f := cmd.Flags()
	f.StringVar(&in.CompanyName, "name", "", "company name")
	f.StringVar(&in.BusinessDescription, "description", "", "what the business does")
	f.StringVar(&in.Address, "address", "", "address")
	f.StringVar(&in.Phone, "phone", "", "phone")
	f.StringVar(&in.Website, "website", "", "website")
	f.StringVar(&in.Email, "email", "", "contact email")
	f.StringVar(&in.Hashtags, "hashtags", "", "hashtags added to every post")
	f.StringVar(&in.LogoPath, "logo-path", "", "logo storage path")
	f.StringVar(&in.TemplateStyle, "template-style", "", "template style")
	f.StringVar(&in.BusinessType, "business-type", "", "business type")
	f.StringVar(&in.PhotographyStyle, "photography-style", "", "photography style")
	f.StringVar(&in.BrandPersonality, "personality", "", "brand personality")
	f.StringVar(&in.TargetAudienceDetails, "audience", "", "target audience")
	f.StringVar(&in.VisualReferences, "visual-references", "", "visual references")
	f.StringVar(&colors.Primary, "primary-color", "", "primary brand color")
	f.StringVar(&colors.Secondary, "secondary-color", "", "secondary brand color")
	return cmd
}

func newCompanyDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete",
		Short: "Delete the company profile",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			resp := c.Company.Delete(cmd.Context())
			if _, err := unwrap(cmd.ErrOrStderr(), resp); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Message)
			return nil
		},
	}
}
