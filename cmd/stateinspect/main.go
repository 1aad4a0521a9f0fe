package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/delaneyj/statekit/app"
	"github.com/delaneyj/statekit/cmd/stateinspect/templates"
	"github.com/delaneyj/statekit/persist"
	"github.com/delaneyj/statekit/persist/boltstore"
	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"
)

const (
	configKey = "config"
	dbKey     = "db"
	bucketKey = "bucket"
	htmlKey   = "html"
)

func main() {
	cmd := &cli.Command{
		Name:  "stateinspect",
		Usage: "Inspect and edit persisted application state",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  configKey,
				Usage: "YAML options file",
			},
			&cli.StringFlag{
				Name:  dbKey,
				Usage: "bbolt database, overrides the options file",
			},
			&cli.StringFlag{
				Name:  bucketKey,
				Usage: "Bucket holding the persisted keys",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List every persisted key",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  htmlKey,
						Usage: "Write an HTML report to this file instead of printing a table",
					},
				},
				Action: list,
			},
			{
				Name:      "get",
				Usage:     "Print the JSON value of a key",
				ArgsUsage: "KEY",
				Action:    get,
			},
			{
				Name:      "set",
				Usage:     "Set a key to a JSON value",
				ArgsUsage: "KEY VALUE",
				Action:    set,
			},
			{
				Name:      "delete",
				Usage:     "Remove a key",
				ArgsUsage: "KEY",
				Action:    del,
			},
		},
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func options(cmd *cli.Command) (*app.Options, error) {
	opts := app.DefaultOptions()
	if path := cmd.String(configKey); path != "" {
		var err error
		if opts, err = app.LoadOptions(path); err != nil {
			return nil, err
		}
	}
	if db := cmd.String(dbKey); db != "" {
		opts.Persist.Path = db
	}
	if bucket := cmd.String(bucketKey); bucket != "" {
		opts.Persist.Bucket = bucket
	}
	if opts.Persist.Path == "" {
		return nil, errors.New("no database: pass --db or set persist.path")
	}
	if opts.Persist.Bucket == "" {
		opts.Persist.Bucket = boltstore.DefaultBucket
	}
	// keep stdout for command output
	opts.Log.Level = "warn"
	return opts, nil
}

func openStore(cmd *cli.Command) (*boltstore.Store, *app.Options, error) {
	opts, err := options(cmd)
	if err != nil {
		return nil, nil, err
	}
	st, err := boltstore.Open(opts.Persist.Path, opts.Persist.Bucket)
	if err != nil {
		return nil, nil, err
	}
	return st, opts, nil
}

func list(ctx context.Context, cmd *cli.Command) error {
	st, opts, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	var entries []templates.Entry
	err = st.Each(func(key string, value []byte) error {
		entries = append(entries, templates.Entry{
			Key:   key,
			Size:  humanize.Bytes(uint64(len(value))),
			Value: string(value),
		})
		return nil
	})
	if err != nil {
		return err
	}

	if path := cmd.String(htmlKey); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		templates.WriteReport(f, opts.Persist.Path, opts.Persist.Bucket, entries)
		log.Printf("wrote %d keys to %s", len(entries), path)
		return f.Close()
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"key", "size", "value"})
	for _, e := range entries {
		table.Append([]string{e.Key, e.Size, e.Value})
	}
	table.Render()
	return nil
}

func get(ctx context.Context, cmd *cli.Command) error {
	key := cmd.Args().First()
	if key == "" {
		return errors.New("missing KEY")
	}
	st, _, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	value, ok, err := st.Get(key)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%q is not persisted", key)
	}
	fmt.Println(string(value))
	return nil
}

// set routes primitive values through AppStorage so they are encoded the same
// way a running application would write them. Objects are stored verbatim.
func set(ctx context.Context, cmd *cli.Command) error {
	key, raw := cmd.Args().Get(0), cmd.Args().Get(1)
	if key == "" || raw == "" {
		return errors.New("usage: set KEY VALUE")
	}
	var value any
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&value); err != nil {
		return fmt.Errorf("value is not JSON: %w", err)
	}
	value = normalize(value)

	opts, err := options(cmd)
	if err != nil {
		return err
	}
	a, err := app.New(opts)
	if err != nil {
		return err
	}
	defer a.Close()

	switch value.(type) {
	case bool, string, int64, float64:
	default:
		return a.Backend().Set(key, []byte(raw))
	}
	if err := a.Persistent.PersistProps([]persist.PropOptions{{Key: key, DefaultValue: value}}); err != nil {
		return fmt.Errorf("%w (delete the key to change its type)", err)
	}
	return a.Storage.SetAny(key, value)
}

// normalize turns a json.Number into int64 when it has no fraction.
func normalize(v any) any {
	n, ok := v.(json.Number)
	if !ok {
		return v
	}
	if i, err := n.Int64(); err == nil {
		return i
	}
	f, _ := n.Float64()
	return f
}

func del(ctx context.Context, cmd *cli.Command) error {
	key := cmd.Args().First()
	if key == "" {
		return errors.New("missing KEY")
	}
	st, _, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	if _, ok, err := st.Get(key); err != nil {
		return err
	} else if !ok {
		return fmt.Errorf("%q is not persisted", key)
	}
	return st.Delete(key)
}
