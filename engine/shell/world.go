package shell

import (
	"errors"
	"strings"
	"time"

	"github.com/nathoo/navishell/engine/notify"
	"github.com/nathoo/navishell/engine/resolve"
	"github.com/nathoo/navishell/engine/rules"
	"github.com/nathoo/navishell/types"
)

// ArlsItemDelay paces each entry of an environment scan.
const ArlsItemDelay = 300 * time.Millisecond

var arlsPreamble = []string{
	"[ARLS] Initializing augmented reality layer scan...",
	"[ARLS] Calibrating sensors against local wired signal...",
}

func (in *Interpreter) examine(args []string, s *types.PlayerState) (string, bool) {
	if len(args) == 0 {
		notify.Error(in.Out, "Usage: examine <target> [detail]")
		return "", false
	}

	poi, err := resolve.POI(in.visiblePOIs(s), args[0])
	if err != nil {
		in.resolveError(args[0], err, "nothing like that here")
		return "", false
	}
	if len(args) == 1 {
		return in.describe(poi, s)
	}

	// One level of sub-items only.
	sub, err := resolve.POI(rules.VisiblePOIs(poi.SubItems, s), args[1])
	if err != nil {
		in.resolveError(args[0], err, "no detail '"+args[1]+"'")
		return "", false
	}
	return in.describe(sub, s)
}

// describe prints a POI or returns its embedded action.
func (in *Interpreter) describe(p types.POI, s *types.PlayerState) (string, bool) {
	if p.Action != "" {
		return p.Action, false
	}

	lines := []string{displayName(p)}
	if p.Description != "" {
		lines = append(lines, p.Description)
	}
	if subs := rules.VisiblePOIs(p.SubItems, s); len(subs) > 0 {
		ids := make([]string, len(subs))
		for i, sub := range subs {
			ids[i] = sub.ID
		}
		lines = append(lines, "Details: "+strings.Join(ids, ", "))
	}
	notify.Text(in.Out, "%s", strings.Join(lines, "\n"))
	return "", false
}

func (in *Interpreter) arls(_ []string, s *types.PlayerState) (string, bool) {
	for _, line := range arlsPreamble {
		notify.Text(in.Out, "%s", line)
	}

	pois := in.visiblePOIs(s)
	if len(pois) == 0 {
		notify.Text(in.Out, "[ARLS] No points of interest detected.")
		return "", false
	}
	for _, p := range pois {
		in.pause(ArlsItemDelay)
		notify.Text(in.Out, "  [%s] %s", p.ID, displayName(p))
	}
	notify.Text(in.Out, "[ARLS] Scan complete: %d point(s) of interest.", len(pois))
	return "", false
}

func (in *Interpreter) visiblePOIs(s *types.PlayerState) []types.POI {
	loc, ok := in.Defs.World[s.Location]
	if !ok {
		return nil
	}
	return rules.VisiblePOIs(loc.POIs, s)
}

// resolveError reports a failed lookup. Ambiguous names list candidates;
// anything else gets the missing message.
func (in *Interpreter) resolveError(target string, err error, missing string) {
	var amb *resolve.AmbiguityError
	if errors.As(err, &amb) {
		notify.Error(in.Out, "examine: %s", amb.Error())
		return
	}
	notify.Error(in.Out, "examine: %s: %s", target, missing)
}

func displayName(p types.POI) string {
	if p.Name != "" {
		return p.Name
	}
	return p.ID
}
