package main

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cory-johannsen/statengine/internal/game/property"
	"github.com/cory-johannsen/statengine/internal/scripting"
)

func newValidateCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load configuration, content, and condition scripts and report problems",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			checker, cleanup, err := initializeChecker(cfg)
			if err != nil {
				return err
			}
			defer cleanup()
			return checker.Report(cmd.OutOrStdout())
		},
	}
}

// MissingHooks returns the sorted, distinct hook names of conditions used by
// content that no loaded script defines.
func (c *Checker) MissingHooks() []string {
	seen := map[string]bool{}
	var missing []string
	check := func(props []property.Property) {
		for _, p := range props {
			for _, cond := range p.Conditions {
				hook := scripting.HookName(cond.Type)
				if seen[hook] {
					continue
				}
				seen[hook] = true
				if !c.Scripts.HasHook(scripting.GlobalScope, hook) {
					missing = append(missing, hook)
				}
			}
		}
	}
	for _, t := range c.Content.Tags.All() {
		check(t.Properties)
	}
	for _, et := range c.Content.EntityTypes.All() {
		check(et.Properties)
	}
	slices.Sort(missing)
	return missing
}

// Report writes a content summary and every problem found to w.
//
// Postcondition: returns an error when any asset or condition hook is missing.
// Assets with identical data are reported but are not problems.
func (c *Checker) Report(w io.Writer) error {
	b := c.Content
	items := 0
	if b.Items != nil {
		items = b.Items.Len()
	}
	fmt.Fprintf(w, "tags: %d\nentity types: %d\nitems: %d\nnpc templates: %d\nassets: %d\n",
		b.Tags.Len(), b.EntityTypes.Len(), items, len(b.Templates), b.Assets.Len())

	assets := b.MissingAssets()
	for _, m := range assets {
		fmt.Fprintf(w, "missing asset: %s\n", m)
	}
	for _, dup := range b.Assets.DuplicateData() {
		fmt.Fprintf(w, "duplicate asset data: %s\n", strings.Join(dup, ", "))
	}
	hooks := c.MissingHooks()
	for _, h := range hooks {
		fmt.Fprintf(w, "missing condition hook: %s\n", h)
	}
	if n := len(assets) + len(hooks); n > 0 {
		return fmt.Errorf("content has %d problems", n)
	}
	fmt.Fprintln(w, "ok")
	return nil
}
