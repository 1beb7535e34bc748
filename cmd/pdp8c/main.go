package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/clausecker/pdp8c/internal/compiler"
	"github.com/clausecker/pdp8c/internal/errs"
	"github.com/clausecker/pdp8c/internal/value"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "pdp8c",
		Short: "PDP-8 code-generation back end — emits PAL-8 from semantic actions",
	}

	var output string
	var maxErrors int
	var trace bool

	compileCmd := &cobra.Command{
		Use:   "compile",
		Short: "Run a synthetic driver program and emit PAL-8 text",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := os.Stdout
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}

			return runCompile(out, maxErrors, trace)
		},
	}
	compileCmd.Flags().StringVar(&output, "output", "", "Write PAL-8 text to this file instead of stdout")
	compileCmd.Flags().IntVar(&maxErrors, "max-errors", errs.MaxErrors, "Abort after this many recoverable errors")
	compileCmd.Flags().BoolVar(&trace, "trace", false, "Print a note to stderr when compilation starts (isel state transitions are not traced)")

	selftestCmd := &cobra.Command{
		Use:   "selftest",
		Short: "Run the canonical end-to-end scenarios in-process and report pass/fail",
		RunE: func(cmd *cobra.Command, args []string) error {
			results := runSelftest()
			failed := 0
			for _, r := range results {
				status := "PASS"
				if r.err != nil {
					status = "FAIL"
					failed++
				}
				fmt.Printf("  [%s] %s\n", status, r.name)
				if r.err != nil {
					fmt.Printf("         %v\n", r.err)
				}
			}
			fmt.Printf("\n%d/%d scenarios passed\n", len(results)-failed, len(results))
			if failed > 0 {
				return fmt.Errorf("%d scenarios failed", failed)
			}
			return nil
		},
	}

	var dumpFunc string
	dumpFrameCmd := &cobra.Command{
		Use:   "dump-frame",
		Short: "Dump the frame template layout produced by a named synthetic function",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDumpFrame(os.Stdout, dumpFunc)
		},
	}
	dumpFrameCmd.Flags().StringVar(&dumpFunc, "func", "demo", "Name of the synthetic function to build a frame for")

	rootCmd.AddCommand(compileCmd, selftestCmd, dumpFrameCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runCompile drives a minimal synthetic program end to end, recovering the
// panic-based fatal/too-many-errors unwinding internal packages use.
func runCompile(out *os.File, maxErrors int, trace bool) (err error) {
	w := bufio.NewWriter(out)
	defer w.Flush()

	reporter := &errs.Reporter{Out: os.Stderr, MaxErrors: maxErrors}

	defer func() {
		if r := recover(); r != nil {
			switch v := r.(type) {
			case errs.Fatal:
				err = fmt.Errorf("fatal: %s", v.Msg)
			case errs.TooManyErrors:
				err = fmt.Errorf("too many errors")
			default:
				panic(r)
			}
		}
	}()

	c := compiler.New(w, reporter)
	if trace {
		fmt.Fprintln(os.Stderr, "trace: compiling synthetic main()")
	}

	buildEmptyMain(c)
	return nil
}

// buildEmptyMain compiles the equivalent of "main(){return(0);}", the
// simplest possible end-to-end scenario.
func buildEmptyMain(c *compiler.Compiler) {
	main := c.Defs.Define("main")
	c.Defs.PutLabel(main)
	c.Frame.NewFrame(main)
	c.Gen.LdConst(0)
	c.Gen.Ret()
	c.Frame.EndFrame(main)
	c.Finish(main)
}

func runDumpFrame(out *os.File, name string) error {
	reporter := &errs.Reporter{Out: os.Stderr}
	c := compiler.New(out, reporter)

	fn := c.Defs.Define(name)
	c.Defs.PutLabel(fn)
	c.Frame.NewFrame(fn)

	a := c.Frame.NewAuto()
	p := c.Frame.NewParam()
	_ = a
	_ = p

	c.Gen.LdConst(0)
	c.Gen.Ret()
	c.Frame.EndFrame(fn)
	c.Finish(fn)
	return nil
}

type selftestResult struct {
	name string
	err  error
}

func runSelftest() []selftestResult {
	scenarios := []struct {
		name string
		run  func() error
	}{
		{"empty main returns 0", scenarioEmptyMain},
		{"constant load deduplication", scenarioConstDedup},
		{"arithmetic expression", scenarioArithmetic},
		{"conditional skip compilation", scenarioConditionalSkip},
		{"string literal deduplication", scenarioStringDedup},
		{"call to undefined external symbol", scenarioUndefinedCall},
	}

	results := make([]selftestResult, 0, len(scenarios))
	for _, s := range scenarios {
		results = append(results, selftestResult{name: s.name, err: runScenario(s.run)})
	}
	return results
}

func runScenario(run func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			switch v := r.(type) {
			case errs.Fatal:
				err = fmt.Errorf("fatal: %s", v.Msg)
			case errs.TooManyErrors:
				err = fmt.Errorf("too many errors")
			default:
				panic(r)
			}
		}
	}()
	return run()
}

func scenarioEmptyMain() error {
	var discard discardWriter
	c := compiler.New(discard, &errs.Reporter{Out: discard, MaxErrors: 1000})
	buildEmptyMain(c)
	return nil
}

func scenarioConstDedup() error {
	var discard discardWriter
	c := compiler.New(discard, &errs.Reporter{Out: discard, MaxErrors: 1000})

	var e1, e2 value.Expr
	c.Data.Literal(&e1, 5)
	c.Data.Literal(&e2, 5)
	if e1.Value != e2.Value {
		return fmt.Errorf("expected identical data-area slots for repeated constant, got %o and %o", e1.Value, e2.Value)
	}
	return nil
}

func scenarioArithmetic() error {
	var discard discardWriter
	c := compiler.New(discard, &errs.Reporter{Out: discard, MaxErrors: 1000})

	// x = 1 + 2, with x an automatic variable
	x := c.Frame.NewAuto()
	two := value.Expr{Value: value.RConst | 2}
	c.Gen.LdConst(1)
	c.Gen.Tad(&two)
	c.Gen.Dca(&x)
	c.Gen.Catchup()
	return nil
}

func scenarioConditionalSkip() error {
	var discard discardWriter
	c := compiler.New(discard, &errs.Reporter{Out: discard, MaxErrors: 1000})

	label := value.Expr{}
	c.Defs.NewLabel(&label)

	cond := value.Expr{Value: value.RValue | 020}
	c.Gen.Tad(&cond)
	c.Gen.Isz(&cond)
	c.Gen.Jmp(&label)
	c.Gen.Catchup()
	return nil
}

func scenarioStringDedup() error {
	var discard discardWriter
	c := compiler.New(discard, &errs.Reporter{Out: discard, MaxErrors: 1000})

	str := []int{'a', 'b'}
	var head1, head2 value.Expr
	for i, ch := range str {
		var slot value.Expr
		c.Data.Literal(&slot, ch)
		if i == 0 {
			head1 = slot
		}
	}
	for i, ch := range str {
		var slot value.Expr
		c.Data.Literal(&slot, ch)
		if i == 0 {
			head2 = slot
		}
	}
	if head1.Value != head2.Value {
		return fmt.Errorf("expected string literal to be deduplicated")
	}
	return nil
}

func scenarioUndefinedCall() error {
	var discard discardWriter
	c := compiler.New(discard, &errs.Reporter{Out: discard, MaxErrors: 1000})

	foo := c.Defs.Define("foo") // extern foo; never placed
	c.Gen.Jms(foo)
	c.Gen.Catchup()
	return nil
}

// discardWriter is a zero-allocation io.Writer sink for selftest scenarios
// that only care about side effects on the compiler's tables, not on the
// emitted text.
type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }
