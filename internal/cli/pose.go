package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/grapplegraph/pkg/config"
	errs "github.com/matzehuels/grapplegraph/pkg/errors"
	"github.com/matzehuels/grapplegraph/pkg/match"
	"github.com/matzehuels/grapplegraph/pkg/pipeline"
	"github.com/matzehuels/grapplegraph/pkg/pose"
	"github.com/matzehuels/grapplegraph/pkg/relax"
)

// =============================================================================
// Shared Helpers
// =============================================================================

// readCode returns the code given as the argument, or read from stdin when
// the argument is missing or "-". Whitespace is allowed, so the
// pretty-printed form can be piped in.
func readCode(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 && args[0] != "-" {
		return args[0], nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}

// codecFor returns the codec for a --convention flag value, falling back
// to the configured convention.
func codecFor(convention string, cfg config.Config) (pose.Codec, error) {
	if convention == "" {
		convention = cfg.Codec.Convention
	}
	conv, err := pose.ParseConvention(convention)
	if err != nil {
		return pose.Codec{}, errs.Wrap(errs.ErrCodeInvalidInput, err, "convention")
	}
	return pose.Codec{Convention: conv}, nil
}

func decodeArg(c pose.Codec, code string) (pose.Position, error) {
	p, err := c.DecodeFormatted(code)
	if err != nil {
		return pose.Position{}, errs.Wrap(errs.ErrCodeInvalidPosition, err, "decode")
	}
	return p, nil
}

func (c *CLI) positionArg(cmd *cobra.Command, args []string, convention string) (pose.Position, pose.Codec, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return pose.Position{}, pose.Codec{}, err
	}
	codec, err := codecFor(convention, cfg)
	if err != nil {
		return pose.Position{}, pose.Codec{}, err
	}
	code, err := readCode(cmd, args)
	if err != nil {
		return pose.Position{}, pose.Codec{}, err
	}
	p, err := decodeArg(codec, code)
	return p, codec, err
}

func writeCoordinates(w io.Writer, p pose.Position) {
	for k, v := range p.All() {
		fmt.Fprintf(w, "%-18s %7.3f %7.3f %7.3f\n", k, v.X, v.Y, v.Z)
	}
}

func writeCoordinatesJSON(w io.Writer, p pose.Position) error {
	coords := make(map[string][3]float64, pose.PlayerJointCount)
	for k, v := range p.All() {
		coords[k.String()] = [3]float64{v.X, v.Y, v.Z}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(coords)
}

// writeFormatted prints p in the four-line form. A pose outside the
// encodable range is an OUT_OF_RANGE error.
func writeFormatted(w io.Writer, c pose.Codec, p pose.Position) error {
	s, err := c.Format(p)
	if err != nil {
		return errs.Wrap(errs.ErrCodeOutOfRange, err, "encode")
	}
	fmt.Fprint(w, s)
	if !strings.HasSuffix(s, "\n") {
		fmt.Fprintln(w)
	}
	return nil
}

func degrees(rad float64) float64 { return rad * 180 / math.Pi }

// =============================================================================
// decode / format
// =============================================================================

func (c *CLI) decodeCommand() *cobra.Command {
	var convention string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "decode [code|-]",
		Short: "Print the 46 joint coordinates of a position code",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, _, err := c.positionArg(cmd, args, convention)
			if err != nil {
				return err
			}
			if asJSON {
				return writeCoordinatesJSON(cmd.OutOrStdout(), p)
			}
			writeCoordinates(cmd.OutOrStdout(), p)
			return nil
		},
	}
	cmd.Flags().StringVar(&convention, "convention", "", "codec convention: shift-xz, scale-all")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print coordinates as JSON keyed by p<player>.<Joint>")
	return cmd
}

func (c *CLI) formatCommand() *cobra.Command {
	var convention string
	var compact bool

	cmd := &cobra.Command{
		Use:   "format [code|-]",
		Short: "Pretty-print a position code as four indented lines",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, codec, err := c.positionArg(cmd, args, convention)
			if err != nil {
				return err
			}
			if compact {
				s, err := codec.Encode(p)
				if err != nil {
					return errs.Wrap(errs.ErrCodeOutOfRange, err, "encode")
				}
				fmt.Fprintln(cmd.OutOrStdout(), s)
				return nil
			}
			return writeFormatted(cmd.OutOrStdout(), codec, p)
		},
	}
	cmd.Flags().StringVar(&convention, "convention", "", "codec convention: shift-xz, scale-all")
	cmd.Flags().BoolVar(&compact, "compact", false, "print the code on one line instead")
	return cmd
}

// =============================================================================
// match
// =============================================================================

func (c *CLI) matchCommand() *cobra.Command {
	var (
		convention string
		metric     string
		tolerance  float64
	)

	cmd := &cobra.Command{
		Use:   "match <code> <code>",
		Short: "Test two positions for equivalence",
		Long: `Match reports whether the second position is the first one reoriented
(yaw and translation), mirrored left to right and/or with the players
swapped, within the match tolerance. The transform found is printed.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			codec, err := codecFor(convention, cfg)
			if err != nil {
				return err
			}
			m, err := matcherFor(cmd, cfg, tolerance, metric)
			if err != nil {
				return err
			}
			a, err := decodeArg(codec, args[0])
			if err != nil {
				return err
			}
			b, err := decodeArg(codec, args[1])
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			t, ok := m.Match(a, b)
			if !ok {
				fmt.Fprintln(w, "not equivalent")
				return nil
			}
			fmt.Fprintln(w, "equivalent")
			fmt.Fprintf(w, "yaw      %.2f°\n", degrees(t.Reorientation.Yaw))
			o := t.Reorientation.Offset
			fmt.Fprintf(w, "offset   %.3f %.3f %.3f\n", o.X, o.Y, o.Z)
			fmt.Fprintf(w, "mirror   %t\n", t.Mirror)
			fmt.Fprintf(w, "swap     %t\n", t.SwapPlayers)
			return nil
		},
	}
	cmd.Flags().StringVar(&convention, "convention", "", "codec convention: shift-xz, scale-all")
	cmd.Flags().StringVar(&metric, "metric", "", "joint metric: euclidean, squared-sum, abs-component")
	cmd.Flags().Float64Var(&tolerance, "tolerance", 0, "match tolerance (default from config)")
	return cmd
}

func matcherFor(cmd *cobra.Command, cfg config.Config, tolerance float64, metric string) (match.Matcher, error) {
	tol := cfg.Match.Tolerance
	if cmd.Flags().Changed("tolerance") {
		if err := errs.ValidateTolerance(tolerance); err != nil {
			return match.Matcher{}, err
		}
		tol = tolerance
	}
	name := cfg.Match.Metric
	if metric != "" {
		name = metric
	}
	mt, err := match.ParseMetric(name)
	if err != nil {
		return match.Matcher{}, errs.Wrap(errs.ErrCodeInvalidInput, err, "metric")
	}
	return match.Matcher{Tolerance: tol, Metric: mt}, nil
}

// =============================================================================
// canon
// =============================================================================

func (c *CLI) canonCommand() *cobra.Command {
	var convention string
	var grid float64

	cmd := &cobra.Command{
		Use:   "canon [code|-]",
		Short: "Move a position into the canonical frame and print its bucket key",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			g := cfg.Graph.Grid
			if cmd.Flags().Changed("grid") {
				if err := errs.ValidateGrid(grid); err != nil {
					return err
				}
				g = grid
			}
			p, codec, err := c.positionArg(cmd, args, convention)
			if err != nil {
				return err
			}

			canon := match.Canonicalize(p)
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "key      %016x\n", match.Key(p, g))
			fmt.Fprintf(w, "yaw      %.2f°\n", degrees(canon.Reorientation.Yaw))
			o := canon.Reorientation.Offset
			fmt.Fprintf(w, "offset   %.3f %.3f %.3f\n", o.X, o.Y, o.Z)
			fmt.Fprintf(w, "mirrored %t\n", canon.Mirrored)
			// Centering on the centroid usually leaves joints below the
			// floor, which the codec cannot represent.
			if s, err := codec.Format(canon.Position); err == nil {
				fmt.Fprint(w, s)
				return nil
			}
			writeCoordinates(w, canon.Position)
			return nil
		},
	}
	cmd.Flags().StringVar(&convention, "convention", "", "codec convention: shift-xz, scale-all")
	cmd.Flags().Float64Var(&grid, "grid", 0, "key grid size (default from config)")
	return cmd
}

// =============================================================================
// relax
// =============================================================================

func (c *CLI) relaxCommand() *cobra.Command {
	var (
		convention string
		iterations int
		fixed      string
		segments   bool
	)

	cmd := &cobra.Command{
		Use:   "relax [code|-]",
		Short: "Move limb lengths toward their anatomical targets",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			opts := relax.Options{Iterations: cfg.Relax.Iterations}
			if cmd.Flags().Changed("iterations") {
				if err := errs.ValidateCount("iterations", iterations, pipeline.MaxRelaxIterations); err != nil {
					return err
				}
				opts.Iterations = iterations
			}
			if fixed != "" {
				k, err := pose.ParsePlayerJoint(fixed)
				if err != nil {
					return errs.Wrap(errs.ErrCodeInvalidInput, err, "fixed")
				}
				opts.Fixed = &k
			}
			p, codec, err := c.positionArg(cmd, args, convention)
			if err != nil {
				return err
			}

			q := relax.Relax(p, opts)
			w := cmd.OutOrStdout()
			if err := writeFormatted(w, codec, q); err != nil {
				return err
			}
			if segments {
				for player := range pose.PlayerCount {
					before := relax.SegmentLengths(p, player, nil)
					after := relax.SegmentLengths(q, player, nil)
					for i, s := range relax.DefaultSegments {
						fmt.Fprintf(w, "p%d %-12s %-12s %.3f %s %.3f (target %.3f)\n",
							player, s.A, s.B, before[i], iconArrow, after[i], s.Length)
					}
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&convention, "convention", "", "codec convention: shift-xz, scale-all")
	cmd.Flags().IntVarP(&iterations, "iterations", "n", 0, "relaxation passes (default from config)")
	cmd.Flags().StringVar(&fixed, "fixed", "", "joint to pin in place, e.g. p0.LeftHand")
	cmd.Flags().BoolVar(&segments, "segments", false, "print segment lengths before and after")
	return cmd
}
