package tui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/npratt/tabsuspend/internal/popup"
)

// IsTerminal reports whether both stdout and stdin are TTYs.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd())) && term.IsTerminal(int(os.Stdin.Fd()))
}

// RenderPlain is the non-interactive popup: it resolves the status, waits
// for the patient answer when needed, prints what the panel would show,
// and closes without running any action.
func (p *Popup) RenderPlain(ctx context.Context, w io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p.Activate(ctx)
	p.ctrl.Wait()
	st := p.surface.snapshot()
	p.ctrl.Dismiss()

	_, err := io.WriteString(w, plainView(st))
	return err
}

// plainView is the uncolored line-per-item rendering of a surface.
func plainView(st surfaceState) string {
	var b strings.Builder

	fmt.Fprintf(&b, "status: %s\n", st.status)
	if st.rule.Detail != "" {
		fmt.Fprintf(&b, "%s\n", st.rule.Detail)
	}
	if st.bound > 0 && st.rule.ActionLabel != "" {
		fmt.Fprintf(&b, "action: %s (%s)\n", st.rule.ActionLabel, st.rule.Action)
	}

	var offered []string
	for _, r := range []struct {
		region popup.Region
		label  string
	}{
		{popup.RegionSuspendOne, string(popup.ActionSuspendOne)},
		{popup.RegionWhitelist, string(popup.ActionWhitelist)},
		{popup.RegionTempWhitelist, string(popup.ActionPause)},
	} {
		if st.visible(r.region) {
			offered = append(offered, r.label)
		}
	}
	offered = append(offered, string(popup.ActionSuspendAll), string(popup.ActionUnsuspendAll))
	if st.visible(popup.RegionOptsSelected) {
		offered = append(offered, string(popup.ActionSuspendSelected), string(popup.ActionUnsuspendSelected))
	}
	fmt.Fprintf(&b, "offered: %s\n", strings.Join(offered, ", "))
	return b.String()
}
