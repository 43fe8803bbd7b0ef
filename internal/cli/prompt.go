package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// errNoInput is returned when neither the arguments nor stdin name a path.
var errNoInput = errors.New("no input path given")

// stdinIsTerminal reports whether os.Stdin is an interactive terminal.
func stdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) //nolint:gosec // file descriptors fit in int
}

// promptPath asks for the path of the file to convert and reads the first
// line of in as the answer.
func promptPath(in io.Reader, out io.Writer) (string, error) {
	_, _ = fmt.Fprint(out, "Path of the file to convert: ")

	reader := bufio.NewReader(in)
	answer, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read path: %w", err)
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", errNoInput
	}
	return answer, nil
}
