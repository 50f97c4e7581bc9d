package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/neexbeast/skycast/internal/forecast"
	"github.com/neexbeast/skycast/internal/search"
	"github.com/neexbeast/skycast/internal/selector"
)

const help = `commands:
  search <city>   look up the forecast for a city
  next, prev      page through the hourly forecast
  back            return to the search view
  unit c|f        switch temperature unit
  save            add the current city to favorites
  fav             open the favorites list
  down, up, enter, space, esc, outside
                  drive the open favorites list
  quit`

// keyNames maps typed words onto the selector's key names.
var keyNames = map[string]string{
	"down":    "ArrowDown",
	"up":      "ArrowUp",
	"enter":   "Enter",
	"space":   " ",
	"esc":     "Escape",
	"outside": "Tab",
}

type repl struct {
	ctrl *search.Controller
	out  io.Writer
}

func newREPL(ctrl *search.Controller, out io.Writer) *repl {
	return &repl{ctrl: ctrl, out: out}
}

func (r *repl) run(ctx context.Context, in io.Reader) error {
	sc := bufio.NewScanner(in)
	r.prompt()
	for sc.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		if quit := r.exec(ctx, sc.Text()); quit {
			return nil
		}
		r.prompt()
	}
	return sc.Err()
}

func (r *repl) prompt() { fmt.Fprint(r.out, "> ") }

// exec runs one command line and reports whether the session should end.
func (r *repl) exec(ctx context.Context, line string) bool {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(cmd) {
	case "":
	case "quit", "exit":
		return true
	case "help":
		fmt.Fprintln(r.out, help)
	case "search":
		if err := r.ctrl.Search(ctx, arg); errors.Is(err, search.ErrBusy) {
			fmt.Fprintln(r.out, "A search is already running.")
			return false
		}
		r.render()
	case "next":
		if !r.ctrl.Next() {
			fmt.Fprintln(r.out, "No later hours available.")
			return false
		}
		r.render()
	case "prev":
		if !r.ctrl.Prev() {
			fmt.Fprintln(r.out, "Already at the first page.")
			return false
		}
		r.render()
	case "back":
		if err := r.ctrl.Back(ctx); err != nil {
			return false
		}
		r.render()
	case "unit":
		u, err := forecast.ParseUnit(arg)
		if err != nil {
			fmt.Fprintln(r.out, "Use \"unit c\" or \"unit f\".")
			return false
		}
		r.ctrl.SetUnit(u)
		r.render()
	case "save":
		_ = r.ctrl.SaveFavorite(ctx)
		fmt.Fprintln(r.out, r.ctrl.View().Notice)
	case "fav":
		_, err := r.ctrl.Dispatch(ctx, selector.EventToggle)
		r.afterSelector(err)
	default:
		key, ok := keyNames[strings.ToLower(cmd)]
		if !ok {
			fmt.Fprintf(r.out, "Unknown command %q. Type \"help\".\n", cmd)
			return false
		}
		_, handled, err := r.ctrl.HandleKey(ctx, key)
		if !handled {
			return false
		}
		r.afterSelector(err)
	}
	return false
}

func (r *repl) afterSelector(err error) {
	v := r.ctrl.View()
	if v.Selector.Open {
		r.renderSelector(v)
		return
	}
	if err != nil || v.Phase == search.PhaseResult {
		r.render()
		return
	}
	fmt.Fprintf(r.out, "[%s]\n", v.SelectorLabel)
}

func (r *repl) renderSelector(v search.View) {
	for i, o := range v.Options {
		marker := "  "
		if i == v.Selector.Focus {
			marker = "> "
		}
		fmt.Fprintf(r.out, "%s%s\n", marker, o.Label)
	}
}

func (r *repl) render() {
	v := r.ctrl.View()
	if v.Notice != "" {
		fmt.Fprintln(r.out, v.Notice)
	}
	if v.Page == nil {
		return
	}

	c := v.Page.Conditions
	fmt.Fprintf(r.out, "%s\n%s %s\n", c.Location, c.Date, c.Time)
	fmt.Fprintf(r.out, "%s, %s (feels like %s)\n", c.Description, c.Temperature, c.FeelsLike)
	fmt.Fprintf(r.out, "rain %s  humidity %s\n", c.Rain, c.Humidity)

	tw := tabwriter.NewWriter(r.out, 0, 4, 2, ' ', 0)
	for _, row := range v.Page.Rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", row.Time, row.Temperature, row.Description, row.Rain)
	}
	_ = tw.Flush()

	var nav []string
	if v.Page.HasPrev {
		nav = append(nav, "prev")
	}
	if v.Page.HasNext {
		nav = append(nav, "next")
	}
	if len(nav) > 0 {
		fmt.Fprintf(r.out, "(%s)\n", strings.Join(nav, ", "))
	}
}
