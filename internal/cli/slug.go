package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yanizio/catalog-console/internal/slug"
)

// slugFlags are shared by the commands that consult the catalog.
type slugFlags struct {
	kind    string
	exclude int64
}

func (f *slugFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.kind, "kind", "k", string(slug.KindProduct), "entity kind: category or product")
	cmd.Flags().Int64Var(&f.exclude, "exclude", 0, "id of the entity being edited")
}

func (f *slugFlags) parse() (slug.Kind, error) {
	k, ok := slug.ParseKind(f.kind)
	if !ok {
		return "", fmt.Errorf("%w: %q", slug.ErrUnknownKind, f.kind)
	}
	return k, nil
}

func newSlugCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "slug",
		Short: "Generate and check slugs",
	}
	cmd.AddCommand(newSlugMakeCmd(), newSlugCheckCmd(g), newSlugResolveCmd(g))
	return cmd
}

func newSlugMakeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "make <name>",
		Short: "Print the normalized slug of a name (no catalog lookup)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := slug.Normalize(strings.Join(args, " "))
			if s == "" {
				return errors.New("name has no sluggable characters")
			}
			fmt.Fprintln(cmd.OutOrStdout(), s)
			return nil
		},
	}
}

func newSlugCheckCmd(g *globals) *cobra.Command {
	var f slugFlags
	cmd := &cobra.Command{
		Use:   "check <slug>",
		Short: "Report whether a slug is already used",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := f.parse()
			if err != nil {
				return err
			}
			taken, err := g.resolver().Check(cmd.Context(), kind, args[0], f.exclude)
			if err != nil {
				return err
			}
			verdict := "free"
			if taken {
				verdict = "taken"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", args[0], verdict)
			return nil
		},
	}
	f.bind(cmd)
	return cmd
}

func newSlugResolveCmd(g *globals) *cobra.Command {
	var f slugFlags
	cmd := &cobra.Command{
		Use:   "resolve <name>",
		Short: "Print the first free slug for a name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := f.parse()
			if err != nil {
				return err
			}
			s, err := g.resolver().Resolve(cmd.Context(), kind, strings.Join(args, " "), f.exclude)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), s)
			return nil
		},
	}
	f.bind(cmd)
	return cmd
}
