package terminal

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Confirm asks the user before a validated command runs.
func Confirm(command, dir string) (bool, error) {
	return ConfirmWithIO(command, dir, nil, nil)
}

// ConfirmWithIO prompts the user with provided IO (for testing).
// End of input counts as a refusal.
func ConfirmWithIO(command, dir string, input io.Reader, output io.Writer) (bool, error) {
	if input == nil {
		input = os.Stdin
	}
	if output == nil {
		output = os.Stdout
	}
	styles := DefaultStyleConfig()

	fmt.Fprintf(output, "\n%s\n\n", styles.Warning("This command will run on your machine"))
	fmt.Fprintf(output, "Command: %s\n", command)
	if dir != "" {
		fmt.Fprintf(output, "Directory: %s\n", dir)
	}
	fmt.Fprintf(output, "\n[y] run  [n] cancel\n> ")

	scanner := bufio.NewScanner(input)
	for scanner.Scan() {
		choice := strings.ToLower(strings.TrimSpace(scanner.Text()))

		switch choice {
		case "y", "yes":
			fmt.Fprintln(output, "✓ approved")
			return true, nil
		case "n", "no":
			fmt.Fprintln(output, "⊘ cancelled")
			return false, nil
		default:
			fmt.Fprintf(output, "Please answer y or n: ")
		}
	}

	if err := scanner.Err(); err != nil {
		return false, err
	}

	return false, nil
}
