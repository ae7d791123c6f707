package terminal

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Lin-Jiong-HDU/guardrail/internal/core/security"
)

// ErrUserExit signals that the user asked to leave the shell
var ErrUserExit = errors.New("user requested exit")

// Prompt is printed before each line is read.
const Prompt = "guardrail> "

// REPL is an interactive validation shell. Plain lines are checked as
// command lines; slash commands check the other input kinds.
type REPL struct {
	validator *security.CommandValidator
	out       io.Writer
	styles    *StyleConfig
	checked   int
	rejected  int
}

// NewREPL creates a REPL writing to out
func NewREPL(validator *security.CommandValidator, out io.Writer) *REPL {
	if validator == nil {
		validator = security.NewCommandValidator(nil)
	}
	return &REPL{
		validator: validator,
		out:       out,
		styles:    DefaultStyleConfig(),
	}
}

// Run reads lines from in until EOF or /exit.
func (r *REPL) Run(in io.Reader) error {
	scanner := bufio.NewScanner(in)
	fmt.Fprint(r.out, Prompt)
	for scanner.Scan() {
		if err := r.ProcessInput(scanner.Text()); err != nil {
			if errors.Is(err, ErrUserExit) {
				return nil
			}
			return err
		}
		fmt.Fprint(r.out, Prompt)
	}
	fmt.Fprintln(r.out)
	r.DisplayExitSummary()
	return scanner.Err()
}

// ProcessInput handles one line
func (r *REPL) ProcessInput(input string) error {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil
	}

	if strings.HasPrefix(input, "/") {
		shouldExit, err := r.HandleCommand(input)
		if err != nil {
			return err
		}
		if shouldExit {
			return ErrUserExit
		}
		return nil
	}

	out := r.validator.Validate(input)
	r.report("command", out.OK(), out.Value(), out.Kind(), out.Reason())
	return nil
}

// HandleCommand handles a slash command
func (r *REPL) HandleCommand(line string) (bool, error) {
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "/exit", "/quit":
		r.DisplayExitSummary()
		return true, nil

	case "/help":
		r.DisplayHelp()

	case "/allowed":
		fmt.Fprintln(r.out, r.styles.Title("Allowed commands"))
		for _, c := range r.validator.AllowedCommands() {
			fmt.Fprintf(r.out, "  • %s\n", c)
		}

	case "/escape":
		fmt.Fprintln(r.out, security.EscapeArgument(arg))

	case "/package":
		out := security.ValidatePackageName(arg)
		r.report("package", out.OK(), out.Value(), out.Kind(), out.Reason())

	case "/path":
		out := security.ValidatePath(arg)
		r.report("path", out.OK(), out.Value(), out.Kind(), out.Reason())

	case "/pid":
		out := security.ValidatePidString(arg)
		r.report("pid", out.OK(), fmt.Sprint(out.Value()), out.Kind(), out.Reason())

	case "/manager":
		out := security.ValidatePackageManager(arg)
		r.report("manager", out.OK(), out.Value().String(), out.Kind(), out.Reason())

	default:
		fmt.Fprintf(r.out, "Unknown command: %s (try /help)\n", name)
	}
	return false, nil
}

func (r *REPL) report(field string, ok bool, value string, kind security.ErrorKind, reason string) {
	r.checked++
	if ok {
		fmt.Fprintln(r.out, r.styles.Accepted(field, value))
		return
	}
	r.rejected++
	fmt.Fprintln(r.out, r.styles.Rejected(field, string(kind), reason))
}

// DisplayHelp shows the available commands
func (r *REPL) DisplayHelp() {
	help := `
Type a command line to validate it, or:
  /allowed           list allowed base commands
  /escape <arg>      show the escaped form of an argument
  /package <name>    validate a package name
  /path <path>       validate a path
  /pid <n>           validate a process id
  /manager <name>    validate a package manager
  /help              show this help
  /exit, /quit       leave
`
	fmt.Fprintln(r.out, help)
}

// DisplayExitSummary shows how many inputs were checked
func (r *REPL) DisplayExitSummary() {
	fmt.Fprintln(r.out, r.styles.Subtle(fmt.Sprintf("%d checked, %d rejected", r.checked, r.rejected)))
}
