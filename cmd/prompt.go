package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// promptForInput prints prompt and returns the trimmed line typed by the user.
func (a *app) promptForInput(cmd *cobra.Command, prompt string) (string, error) {
	cmd.Print(prompt)
	input, err := a.readLine()
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return input, nil
}

// promptForPassword prints prompt and reads a password without echoing it.
func (a *app) promptForPassword(cmd *cobra.Command, prompt string) (string, error) {
	cmd.Print(prompt)
	password, err := a.readPassword()
	cmd.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return password, nil
}

func (a *app) readLine() (string, error) {
	if a.reader == nil {
		a.reader = bufio.NewReader(a.in)
	}
	input, err := a.reader.ReadString('\n')
	if err != nil && (err != io.EOF || input == "") {
		return "", err
	}
	return strings.TrimSpace(input), nil
}

// readSecret reads from the terminal without echo. Piped input is read as a
// plain line so the CLI can be scripted.
func (a *app) readSecret() (string, error) {
	if a.in == io.Reader(os.Stdin) && term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(password)), nil
	}
	return a.readLine()
}
