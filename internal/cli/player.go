package cli

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

// listFlags mirrors the query parameters accepted by GET /players
type listFlags struct {
	name        string
	position    string
	nationality string
	minAge      string
	maxAge      string
	minRating   string
	maxRating   string
}

func (f listFlags) query() url.Values {
	q := url.Values{}
	set := func(key, val string) {
		if val != "" {
			q.Set(key, val)
		}
	}
	set("name", f.name)
	set("position", f.position)
	set("nationality", f.nationality)
	set("min_age", f.minAge)
	set("max_age", f.maxAge)
	set("min_rating", f.minRating)
	set("max_rating", f.maxRating)
	return q
}

func newListCmd() *cobra.Command {
	var flags listFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List players matching a filter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/players"
			if q := flags.query(); len(q) > 0 {
				path += "?" + q.Encode()
			}

			var players []Player
			header, err := client.Get(path, &players)
			if err != nil {
				return err
			}

			result := PlayerList{Total: len(players), Players: players}
			if result.Players == nil {
				result.Players = []Player{}
			}
			if v := header.Get("X-Total-Records"); v != "" {
				total, err := strconv.Atoi(v)
				if err != nil {
					return fmt.Errorf("invalid X-Total-Records header %q: %w", v, err)
				}
				result.Total = total
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}

	// Bounds are passed through as strings so the server reports bad numbers
	cmd.Flags().StringVar(&flags.name, "name", "", "Case-insensitive name substring")
	cmd.Flags().StringVar(&flags.position, "position", "", "Exact position (goalkeeper, defender, midfielder, forward)")
	cmd.Flags().StringVar(&flags.nationality, "nationality", "", "Nationality code")
	cmd.Flags().StringVar(&flags.minAge, "min-age", "", "Minimum age")
	cmd.Flags().StringVar(&flags.maxAge, "max-age", "", "Maximum age")
	cmd.Flags().StringVar(&flags.minRating, "min-rating", "", "Minimum rating")
	cmd.Flags().StringVar(&flags.maxRating, "max-rating", "", "Maximum rating")

	return cmd
}

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a single player",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Player
			if _, err := client.Get(playerPath(args[0]), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}
}

func newCreateCmd() *cobra.Command {
	var in bodyFlags

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a player from a JSON document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := in.read(cmd.InOrStdin())
			if err != nil {
				return err
			}

			var result Player
			if _, err := client.Post("/players", body, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.Print(result)
			return nil
		},
	}

	in.register(cmd, "Player JSON document")
	return cmd
}

func newReplaceCmd() *cobra.Command {
	var in bodyFlags

	cmd := &cobra.Command{
		Use:   "replace <id>",
		Short: "Replace a player with a full JSON document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := in.read(cmd.InOrStdin())
			if err != nil {
				return err
			}

			if err := client.Put(playerPath(args[0]), body); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.PrintMessage(fmt.Sprintf("Player %s replaced", args[0]))
			return nil
		},
	}

	in.register(cmd, "Player JSON document")
	return cmd
}

func newPatchCmd() *cobra.Command {
	var in bodyFlags

	cmd := &cobra.Command{
		Use:   "patch <id>",
		Short: "Apply a JSON Patch (RFC 6902) to a player",
		Example: `  playerctl patch 42 --data '[{"op":"replace","path":"/name","value":"Bob"}]'
  playerctl patch 42 --file changes.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := in.read(cmd.InOrStdin())
			if err != nil {
				return err
			}

			if err := client.Patch(playerPath(args[0]), body); err != nil {
				return err
			}

			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			out.PrintMessage(fmt.Sprintf("Player %s patched", args[0]))
			return nil
		},
	}

	in.register(cmd, "JSON Patch document")
	return cmd
}

func playerPath(id string) string {
	return "/players/" + url.PathEscape(id)
}

// bodyFlags reads a request body from --data or --file. A file of "-" means stdin.
type bodyFlags struct {
	data string
	file string
}

func (b *bodyFlags) register(cmd *cobra.Command, what string) {
	cmd.Flags().StringVar(&b.data, "data", "", what+" given inline")
	cmd.Flags().StringVar(&b.file, "file", "", what+" read from a file (- for stdin)")
	cmd.MarkFlagsMutuallyExclusive("data", "file")
	cmd.MarkFlagsOneRequired("data", "file")
}

func (b *bodyFlags) read(stdin io.Reader) ([]byte, error) {
	switch {
	case b.data != "":
		return []byte(b.data), nil
	case b.file == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	case b.file != "":
		data, err := os.ReadFile(b.file)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", b.file, err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("one of --data or --file is required")
	}
}
