package demo

import (
	"fmt"
	"io"

	"github.com/btouchard/gof/internal/listener"
	"github.com/btouchard/gof/internal/notify"
)

// RunObserver walks a hub through three events: both initial listeners hear
// "sign in", nobody hears "logout" after everyone unsubscribed, and only the
// late money listener hears "anniversary".
func RunObserver(w io.Writer) error {
	hub := notify.NewHub[string](
		listener.NewEmail("email", w),
		listener.NewNotification("notification", w),
	)

	if err := emit(w, hub, `"sign in"`); err != nil {
		return err
	}

	for hub.Len() > 0 {
		hub.Deregister(hub.Listeners()[0])
	}

	if err := emit(w, hub, `"logout"`); err != nil {
		return err
	}

	hub.Register(listener.NewMoney("money", w))

	return emit(w, hub, `"anniversary"`)
}

func emit(w io.Writer, hub *notify.Hub[string], evt string) error {
	if _, err := fmt.Fprintf(w, "%s event\n", evt); err != nil {
		return err
	}
	if err := hub.Broadcast(evt); err != nil {
		return fmt.Errorf("broadcasting %s: %w", evt, err)
	}
	_, err := fmt.Fprintln(w)
	return err
}
