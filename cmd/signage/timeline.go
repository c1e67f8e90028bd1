// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"signage/internal/apiclient"
	"signage/internal/rotation"
	"signage/internal/styleconfig"
)

type timelineOpts struct {
	video      bool
	first      int
	items      []string
	playOnce   bool
	transition string
	horizon    time.Duration

	apiURL    string
	contentID string
}

func newTimelineCmd() *cobra.Command {
	var o timelineOpts
	cmd := &cobra.Command{
		Use:   "timeline [first-url]",
		Short: "Print the phase schedule of a rotation",
		Long: `Print which item a block shows over time.

Build the rotation from flags:

  signage timeline https://cdn/a.mp4 --video --first 10 --item https://cdn/b.mp4=20

or fetch the schedule of a stored content from a running server:

  signage timeline --api http://localhost:8080 --content <id>`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if o.horizon <= 0 {
				return fmt.Errorf("horizon must be positive")
			}
			if o.contentID != "" {
				return remoteTimeline(cmd, o)
			}
			if len(args) == 0 {
				return fmt.Errorf("first-url is required without --content")
			}
			seq, err := buildSequence(args[0], o)
			if err != nil {
				return err
			}
			return printSteps(cmd.OutOrStdout(), seq.CycleDuration(), rotation.Timeline(seq, o.horizon))
		},
	}
	f := cmd.Flags()
	f.BoolVar(&o.video, "video", false, "treat the rotation as a video rotation")
	f.IntVar(&o.first, "first", styleconfig.DefaultFirstSecond, "seconds the first item shows")
	f.StringArrayVar(&o.items, "item", nil, "rotation item as url=seconds (repeatable)")
	f.BoolVar(&o.playOnce, "play-once", false, "stop on the last item instead of looping")
	f.StringVar(&o.transition, "transition", "", "image rotation transition effect")
	f.DurationVar(&o.horizon, "horizon", time.Minute, "how far ahead to schedule")
	f.StringVar(&o.apiURL, "api", "http://localhost:8080", "signage API base URL")
	f.StringVar(&o.contentID, "content", "", "fetch the timeline of this stored content")
	return cmd
}

// buildSequence turns the flags into the same sequence a stored content
// with that style would produce.
func buildSequence(firstURL string, o timelineOpts) (rotation.Sequence, error) {
	var items []styleconfig.RotationItem
	for _, raw := range o.items {
		url, secs, ok := strings.Cut(raw, "=")
		if !ok {
			return rotation.Sequence{}, fmt.Errorf("item %q: want url=seconds", raw)
		}
		n, err := strconv.Atoi(secs)
		if err != nil {
			return rotation.Sequence{}, fmt.Errorf("item %q: %w", raw, err)
		}
		items = append(items, styleconfig.RotationItem{URL: url, DurationSeconds: n})
	}

	var m styleconfig.MediaStyle
	if o.video {
		m.VideoRotation = &styleconfig.VideoRotation{
			FirstVideoDurationSeconds: o.first,
			RotationItems:             items,
			PlayOnce:                  o.playOnce,
		}
	} else {
		m.ImageRotation = &styleconfig.ImageRotation{
			FirstImageDurationSeconds: o.first,
			RotationItems:             items,
			PlayOnce:                  o.playOnce,
		}
		if o.transition != "" {
			tr := styleconfig.Transition(o.transition)
			if !tr.Valid() {
				return rotation.Sequence{}, fmt.Errorf("unknown transition %q", o.transition)
			}
			m.ImageRotationTransition = tr
		}
	}
	return rotation.ForContent(o.video, firstURL, m), nil
}

func remoteTimeline(cmd *cobra.Command, o timelineOpts) error {
	id, err := uuid.Parse(o.contentID)
	if err != nil {
		return fmt.Errorf("invalid content id: %w", err)
	}
	client := apiclient.New(o.apiURL, nil)
	tl, err := client.Timeline(cmd.Context(), id, o.horizon)
	if err != nil {
		return err
	}
	steps := make([]rotation.Step, len(tl.Steps))
	for i, st := range tl.Steps {
		steps[i] = rotation.Step{
			Phase:              st.Phase,
			URL:                st.URL,
			Start:              seconds(st.Start),
			End:                seconds(st.End),
			Transition:         styleconfig.Transition(st.Transition),
			TransitionDuration: time.Duration(st.TransitionMillis) * time.Millisecond,
			Final:              st.Final,
		}
	}
	return printSteps(cmd.OutOrStdout(), seconds(tl.Cycle), steps)
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func printSteps(out io.Writer, cycle time.Duration, steps []rotation.Step) error {
	fmt.Fprintf(out, "cycle %s\n", cycle)
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PHASE\tSTART\tEND\tTRANSITION\tURL")
	for _, st := range steps {
		end := st.End.String()
		if st.Final {
			end = "-"
		}
		tr := "-"
		if st.Transition != "" && st.Transition != styleconfig.TransitionNone {
			tr = fmt.Sprintf("%s %s", st.Transition, st.TransitionDuration)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", st.Phase, st.Start, end, tr, st.URL)
	}
	return tw.Flush()
}
