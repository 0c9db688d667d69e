// Command cocc type-checks a single Calculus of Constructions source
// file and reports the first phase at which it fails, if any.
package main

import (
	"fmt"
	"os"

	flags "github.com/jessevdk/go-flags"
	"github.com/magiconair/properties"

	"coc"
)

type options struct {
	Quiet bool `short:"q" long:"quiet" description:"print nothing on success"`
	Color bool `long:"color" description:"colorize ok/error output"`
	Trace bool `long:"trace" description:"print the parser's production trace before checking"`

	Positional struct {
		Source string `positional-arg-name:"source" description:"path to a .coc source file"`
	} `positional-args:"yes" required:"yes"`
}

func main() {
	opts := options{}
	loadRCDefaults(&opts)

	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		os.Exit(1)
	}

	src, err := os.ReadFile(opts.Positional.Source)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if opts.Trace {
		printTrace(string(src))
	}

	ctx, diag := coc.Check(string(src))
	if diag != nil {
		fmt.Fprintln(os.Stderr, colorize(opts.Color, "31", fmt.Sprintf("%s: %v", diag.Phase, diag.Err)))
		os.Exit(1)
	}

	if !opts.Quiet {
		msg := fmt.Sprintf("ok: %d declaration(s) checked", len(ctx.Global))
		fmt.Println(colorize(opts.Color, "32", msg))
	}
}

// printTrace re-parses source with a Tracer attached and reports how
// many productions the parser entered, purely as a diagnostic aid; a
// parse failure here is silently ignored since Check below reports it
// properly.
func printTrace(source string) {
	tracer := coc.NewTracer()
	if _, err := coc.ParseProgramTraced(source, tracer); err != nil {
		return
	}
	fmt.Printf("trace: %d production(s) entered\n", countNodes(tracer.Root()))
}

func countNodes(n *coc.TraceNode) int {
	total := 1
	for _, c := range n.Children {
		total += countNodes(c)
	}
	return total
}

func colorize(enabled bool, code, s string) string {
	if !enabled {
		return s
	}
	return "\x1b[" + code + "m" + s + "\x1b[0m"
}

// loadRCDefaults reads an optional .cocrc in the working directory to
// seed flag defaults before argument parsing overrides them; a missing
// file is not an error.
func loadRCDefaults(opts *options) {
	p, err := properties.LoadFile(".cocrc", properties.UTF8)
	if err != nil {
		return
	}
	opts.Quiet = p.GetBool("quiet", opts.Quiet)
	opts.Color = p.GetBool("color", opts.Color)
	opts.Trace = p.GetBool("trace", opts.Trace)
}
