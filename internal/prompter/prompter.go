// Package prompter asks the user for input on the terminal.
package prompter

import (
	"fmt"
	"io"
	"strings"

	"github.com/AlecAivazis/survey/v2"
)

//go:generate mockgen -destination=../mocks/prompter_mock.go -package=mocks github.com/tmeckel/az-cli/internal/prompter Prompter

type Prompter interface {
	// Select returns the index of the chosen option.
	Select(message, defaultValue string, options []string) (int, error)
	Input(message, defaultValue string) (string, error)
	// Password reads a value without echoing it.
	Password(message string) (string, error)
	Confirm(message string, defaultValue bool) (bool, error)
}

type fileWriter interface {
	io.Writer
	Fd() uintptr
}

type fileReader interface {
	io.Reader
	Fd() uintptr
}

func New(stdin fileReader, stdout fileWriter, stderr io.Writer) Prompter {
	return &surveyPrompter{
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
	}
}

type surveyPrompter struct {
	stdin  fileReader
	stdout fileWriter
	stderr io.Writer
}

func (p *surveyPrompter) ask(q survey.Prompt, response any, opts ...survey.AskOpt) error {
	opts = append(opts, survey.WithStdio(p.stdin, p.stdout, p.stderr))
	err := survey.AskOne(q, response, opts...)
	if err == nil {
		return nil
	}
	return fmt.Errorf("could not prompt: %w", err)
}

func (p *surveyPrompter) Select(message, defaultValue string, options []string) (result int, err error) {
	q := &survey.Select{
		Message:  message,
		Options:  options,
		PageSize: 20,
		Filter:   latinMatchingFilter,
	}
	if defaultValue != "" {
		// survey rejects a default that is not one of the options
		for _, o := range options {
			if o == defaultValue {
				q.Default = defaultValue
				break
			}
		}
	}
	err = p.ask(q, &result)
	return
}

func (p *surveyPrompter) Input(message, defaultValue string) (result string, err error) {
	err = p.ask(&survey.Input{
		Message: message,
		Default: defaultValue,
	}, &result)
	return
}

func (p *surveyPrompter) Password(message string) (result string, err error) {
	err = p.ask(&survey.Password{
		Message: message,
	}, &result, survey.WithValidator(survey.Required))
	return
}

func (p *surveyPrompter) Confirm(message string, defaultValue bool) (result bool, err error) {
	err = p.ask(&survey.Confirm{
		Message: message,
		Default: defaultValue,
	}, &result)
	return
}

// latinMatchingFilter matches options case insensitively on any substring.
func latinMatchingFilter(filter, value string, _ int) bool {
	return strings.Contains(strings.ToLower(value), strings.ToLower(filter))
}
