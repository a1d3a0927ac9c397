package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-dev/yui/internal/errors"
	"github.com/vango-dev/yui/pkg/pref"
)

func prefCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pref",
		Short: "Inspect and edit stored preferences",
		Long: `Inspect and edit the preference store configured in yui.json
(store.path). Values are JSON; a value that is not valid JSON is stored
as a string.`,
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List preference keys",
			Args:  cobra.NoArgs,
			RunE: withStore(a, func(cmd *cobra.Command, store pref.Store, _ []string) error {
				prefs, err := loadPrefs(store)
				if err != nil {
					return err
				}
				for _, p := range prefs {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", p.Key(), p.Get(), p.UpdatedAt().Format(time.RFC3339))
				}
				return nil
			}),
		},
		&cobra.Command{
			Use:   "get <key>",
			Short: "Print a preference value",
			Args:  cobra.ExactArgs(1),
			RunE: withStore(a, func(cmd *cobra.Command, store pref.Store, args []string) error {
				p, err := loadPref(store, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(p.Get()))
				return nil
			}),
		},
		&cobra.Command{
			Use:   "export",
			Short: "Print every preference as a JSON array",
			Long: `Print every stored preference with its key and modification time.
The output is accepted by "yui pref import".`,
			Args: cobra.NoArgs,
			RunE: withStore(a, func(cmd *cobra.Command, store pref.Store, _ []string) error {
				prefs, err := loadPrefs(store)
				if err != nil {
					return err
				}
				if prefs == nil {
					prefs = []*pref.Pref[json.RawMessage]{}
				}
				data, err := json.MarshalIndent(prefs, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}),
		},
		&cobra.Command{
			Use:   "import <file|->",
			Short: "Merge exported preferences into the store",
			Long: `Merge the output of "yui pref export" into the store. For each key
the most recently modified value wins, so importing an older export
never overwrites newer local changes.`,
			Args: cobra.ExactArgs(1),
			RunE: withStore(a, func(cmd *cobra.Command, store pref.Store, args []string) error {
				doc, err := a.readDocument(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				var records []json.RawMessage
				if err := json.Unmarshal(doc.Data, &records); err != nil {
					return errors.New(errors.CodeParse).WithPath(args[0]).Wrap(err).WithDetail(err.Error())
				}
				imported, kept := 0, 0
				for i, rec := range records {
					p := pref.New[json.RawMessage]("", nil, pref.MergeWith(pref.LWW))
					if err := json.Unmarshal(rec, p); err != nil || p.Key() == "" {
						return errors.New(errors.CodeParse).WithPath(fmt.Sprintf("%s[%d]", args[0], i)).
							WithDetail("Each entry needs a key, a value and updated_at")
					}
					before := p.UpdatedAt()
					if err := p.Bind(store); err != nil {
						return errors.New(errors.CodeStore).WithPath(p.Key()).Wrap(err)
					}
					if p.UpdatedAt().Equal(before) {
						imported++
					} else {
						kept++
					}
				}
				success(cmd, "imported %d, kept %d newer", imported, kept)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "set <key> <value>",
			Short: "Store a preference value",
			Args:  cobra.ExactArgs(2),
			RunE: withStore(a, func(cmd *cobra.Command, store pref.Store, args []string) error {
				value := []byte(args[1])
				if !json.Valid(value) {
					value, _ = json.Marshal(args[1])
				}
				if err := store.Put(args[0], pref.Entry{Value: value, UpdatedAt: time.Now()}); err != nil {
					return err
				}
				success(cmd, "%s = %s", args[0], value)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "delete <key>",
			Short: "Remove a preference",
			Args:  cobra.ExactArgs(1),
			RunE: withStore(a, func(cmd *cobra.Command, store pref.Store, args []string) error {
				if err := store.Delete(args[0]); err != nil {
					return err
				}
				success(cmd, "%s deleted", args[0])
				return nil
			}),
		},
	)
	return cmd
}

// loadPref reads one stored preference without writing to the store.
func loadPref(store pref.Store, key string) (*pref.Pref[json.RawMessage], error) {
	p := pref.New[json.RawMessage](key, nil, pref.ReadOnly())
	if err := p.Bind(store); err != nil {
		return nil, errors.New(errors.CodeStore).WithPath(key).Wrap(err)
	}
	if p.Get() == nil {
		return nil, errors.New(errors.CodeStore).WithPath(key).
			WithDetail("No preference is stored under this key")
	}
	return p, nil
}

func loadPrefs(store pref.Store) ([]*pref.Pref[json.RawMessage], error) {
	keys, err := store.Keys()
	if err != nil {
		return nil, errors.New(errors.CodeStore).Wrap(err)
	}
	var prefs []*pref.Pref[json.RawMessage]
	for _, k := range keys {
		p, err := loadPref(store, k)
		if err != nil {
			return nil, err
		}
		prefs = append(prefs, p)
	}
	return prefs, nil
}

// withStore opens the preference store around fn.
func withStore(a *app, fn func(*cobra.Command, pref.Store, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		store, err := a.openStore()
		if err != nil {
			return err
		}
		defer store.Close()
		return fn(cmd, store, args)
	}
}
