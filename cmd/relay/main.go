// Command relay is an interactive terminal chat against a supervisor agent:
// it streams one turn at a time and renders the answer as it accumulates,
// with tool and plan activity shown inline.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/korvuslabs/relay-core/core/transport"
	"github.com/korvuslabs/relay-core/core/transport/sse"
	"github.com/korvuslabs/relay-core/core/transport/ws"
)

func main() {
	endpoint := flag.String("endpoint", "http://localhost:8080/", "supervisor endpoint URL")
	throttle := flag.Duration("throttle", 100*time.Millisecond, "content update coalescing window (0 for unthrottled)")
	transportKind := flag.String("transport", "sse", "transport to reach the supervisor with (sse or ws)")
	flag.Parse()

	var client transport.Client
	switch *transportKind {
	case "sse":
		client = sse.NewClient(*endpoint)
	case "ws":
		client = ws.NewClient(*endpoint)
	default:
		fmt.Fprintf(os.Stderr, "unknown transport %q (want sse or ws)\n", *transportKind)
		os.Exit(2)
	}

	if err := runChat(client, *throttle); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
