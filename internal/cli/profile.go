package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/satchel/internal/profiles"
	"github.com/mesh-intelligence/satchel/pkg/types"
)

func newProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage profiles and their properties",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "create <name> [key=value...]",
			Short: "Create a profile, optionally setting properties",
			Args:  cobra.MinimumNArgs(1),
			RunE:  runProfileCreate,
		},
		&cobra.Command{
			Use:   "show <id>",
			Short: "Show a profile with its properties",
			Args:  cobra.ExactArgs(1),
			RunE:  runProfileShow,
		},
		&cobra.Command{
			Use:   "set <id> key=value...",
			Short: "Set profile properties; undeclared keys are ignored",
			Args:  cobra.MinimumNArgs(2),
			RunE:  runProfileSet,
		},
		&cobra.Command{
			Use:   "list",
			Short: "List profiles",
			Args:  cobra.NoArgs,
			RunE:  runProfileList,
		},
	)
	return cmd
}

// withApp runs fn against an open app and closes it afterwards.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) (err error) {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.close(); cerr != nil && err == nil {
			err = exitError(exitSysError, cerr)
		}
	}()
	return fn(cmd.Context(), a)
}

func runProfileCreate(cmd *cobra.Command, args []string) error {
	assignments, err := parseAssignments(args[1:])
	if err != nil {
		return exitError(exitUserError, err)
	}

	return withApp(cmd, func(ctx context.Context, a *app) error {
		p := a.profiles.New(args[0])
		if len(assignments) > 0 {
			bag, err := p.Bag(ctx)
			if err != nil {
				return exitError(exitSysError, err)
			}
			bag.SetMany(assignments)
		}
		if err := a.profiles.Save(ctx, p); err != nil {
			return saveError(err)
		}
		return printProfile(ctx, cmd, p)
	})
}

func runProfileShow(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return exitError(exitUserError, err)
	}

	return withApp(cmd, func(ctx context.Context, a *app) error {
		p, err := loadProfile(ctx, a, id)
		if err != nil {
			return err
		}
		return printProfile(ctx, cmd, p)
	})
}

func runProfileSet(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return exitError(exitUserError, err)
	}
	assignments, err := parseAssignments(args[1:])
	if err != nil {
		return exitError(exitUserError, err)
	}

	return withApp(cmd, func(ctx context.Context, a *app) error {
		p, err := loadProfile(ctx, a, id)
		if err != nil {
			return err
		}
		bag, err := p.Bag(ctx)
		if err != nil {
			return exitError(exitSysError, err)
		}
		bag.SetMany(assignments)
		if err := a.profiles.Save(ctx, p); err != nil {
			return saveError(err)
		}
		return printProfile(ctx, cmd, p)
	})
}

func runProfileList(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		all, err := a.profiles.List(ctx)
		if err != nil {
			return exitError(exitSysError, err)
		}

		if flags.jsonMode {
			views := make([]profileView, 0, len(all))
			for _, p := range all {
				view, err := newProfileView(ctx, p)
				if err != nil {
					return exitError(exitSysError, err)
				}
				views = append(views, view)
			}
			return writeJSON(cmd, views)
		}

		out := cmd.OutOrStdout()
		for _, p := range all {
			fmt.Fprintf(out, "%d\t%s\t%s\n", p.ID, p.UID, p.Name)
		}
		return nil
	})
}

func loadProfile(ctx context.Context, a *app, id int64) (*profiles.Profile, error) {
	p, err := a.profiles.Get(ctx, id)
	if errors.Is(err, types.ErrNotFound) {
		return nil, exitError(exitUserError, fmt.Errorf("profile %d not found", id))
	}
	if err != nil {
		return nil, exitError(exitSysError, err)
	}
	return p, nil
}

// saveError classifies a failed save. A missing catalog entry is fixed by
// running properties:fill, so it is reported as a user error.
func saveError(err error) error {
	if errors.Is(err, types.ErrMissingPropertyDefinition) {
		return exitError(exitUserError, fmt.Errorf("%w (run properties:fill)", err))
	}
	return exitError(exitSysError, err)
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid profile id %q", arg)
	}
	return id, nil
}

// parseAssignments turns key=value arguments into a value map. Values are
// kept as strings; the bag casts them on save.
func parseAssignments(args []string) (map[string]any, error) {
	out := make(map[string]any, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("expected key=value, got %q", arg)
		}
		out[key] = value
	}
	return out, nil
}

// profileView is the printed form of a profile.
type profileView struct {
	ID         int64          `json:"id"`
	UID        string         `json:"uid"`
	Name       string         `json:"name"`
	Properties map[string]any `json:"properties"`
}

func newProfileView(ctx context.Context, p *profiles.Profile) (profileView, error) {
	bag, err := p.Bag(ctx)
	if err != nil {
		return profileView{}, err
	}
	return profileView{ID: p.ID, UID: p.UID, Name: p.Name, Properties: bag.Values()}, nil
}

func printProfile(ctx context.Context, cmd *cobra.Command, p *profiles.Profile) error {
	bag, err := p.Bag(ctx)
	if err != nil {
		return exitError(exitSysError, err)
	}

	if flags.jsonMode {
		view, err := newProfileView(ctx, p)
		if err != nil {
			return exitError(exitSysError, err)
		}
		return writeJSON(cmd, view)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "id: %d\nuid: %s\nname: %s\n", p.ID, p.UID, p.Name)
	for _, name := range bag.Names() {
		fmt.Fprintf(out, "%s: %s\n", name, formatValue(bag.Get(name)))
	}
	return nil
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case time.Time:
		return x.Format(time.RFC3339)
	case map[string]any, []any:
		data, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(data)
	default:
		return cast.ToString(x)
	}
}

func writeJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return exitError(exitSysError, fmt.Errorf("encode output: %w", err))
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
