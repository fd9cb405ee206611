package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-dev/reflow/internal/errors"
	"github.com/vango-dev/reflow/pkg/client"
	"github.com/vango-dev/reflow/pkg/dom"
	"github.com/vango-dev/reflow/pkg/protocol"
	"github.com/vango-dev/reflow/pkg/render"
	"github.com/vango-dev/reflow/pkg/vdom"
)

type watchOptions struct {
	clicks   []string
	duration time.Duration
	html     bool
}

func watchCmd() *cobra.Command {
	var opts watchOptions

	cmd := &cobra.Command{
		Use:   "watch URL",
		Short: "Follow a live session",
		Long: `Open a live session and print every patch the server sends.

URL is the WebSocket endpoint, for example ws://localhost:8080/live.
With --click the elements with the given ids are clicked in order once the
session is up; each click waits for the patch it causes.

Examples:
  reflow watch ws://localhost:8080/live
  reflow watch ws://localhost:8080/live --click inc --click inc --for 2s
  reflow watch ws://localhost:8080/live --html`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, args[0], opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringArrayVar(&opts.clicks, "click", nil, "Click the element with this id (repeatable)")
	cmd.Flags().DurationVar(&opts.duration, "for", 0, "Stop after this long (default: until interrupted)")
	cmd.Flags().BoolVar(&opts.html, "html", false, "Print the document after every patch")

	return cmd
}

func runWatch(ctx context.Context, url string, opts watchOptions, w io.Writer) error {
	if opts.duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.duration)
		defer cancel()
	}

	var (
		mu sync.Mutex // serializes output from the reader goroutine
		c  *client.Client
	)
	renderer := render.NewRenderer(render.RendererConfig{Pretty: true})
	ready := make(chan struct{})

	onPatch := func(seq uint64, d *vdom.Diff) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintf(w, "%s\n", paint(styleBold, fmt.Sprintf("patch %d", seq)))
		if d == nil {
			info(w, "(empty)")
			return
		}
		printDiff(w, *d, 1)
		if !opts.html {
			return
		}
		<-ready
		c.View(func(doc *dom.Document) {
			html, err := renderer.RenderToString(doc.VNode())
			if err != nil {
				fmt.Fprintf(w, "  render: %v\n", err)
				return
			}
			fmt.Fprintln(w, html)
		})
	}

	c, err := client.Dial(ctx, url,
		client.WithLogger(cliLogger()),
		client.WithPatchHook(onPatch),
	)
	if err != nil {
		return errors.New("E142").WithDetailf("Could not connect to %s.", url).Wrap(err)
	}
	close(ready)
	defer c.Close()

	mu.Lock()
	success(w, "Session %s", c.SessionID)
	mu.Unlock()

	if err := clickAll(ctx, c, opts.clicks); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		return nil
	case <-c.Done():
		if err := c.Err(); err != nil && !stderrors.Is(err, client.ErrClosed) {
			if em, ok := err.(*protocol.ErrorMessage); ok {
				return errors.New("E160").WithDetailf("%s: %s", em.Code, em.Message)
			}
			return errors.New("E160").Wrap(err)
		}
		return nil
	}
}

// clickAll clicks each id in order. Every click waits for the patch it
// causes, since the next click targets the handler ids of that render.
func clickAll(ctx context.Context, c *client.Client, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := c.WaitSeq(ctx, 1); err != nil {
		return nil
	}
	for _, id := range ids {
		seq := c.Seq()
		if err := c.Fire(byID(id), "click", nil); err != nil {
			return errors.New("E142").WithDetailf("Could not click #%s.", id).Wrap(err)
		}
		if err := c.WaitSeq(ctx, seq+1); err != nil {
			return nil
		}
	}
	return nil
}

func byID(id string) func(*dom.Node) bool {
	return func(n *dom.Node) bool {
		v, ok := n.Attr("id")
		if !ok {
			return false
		}
		s, ok := v.Str()
		return ok && s == id
	}
}
