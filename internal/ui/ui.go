package ui

import (
	"github.com/AlecAivazis/survey/v2"
)

// Password prompts for a secret without echoing it
func Password(message, help string) (string, error) {
	var result string
	prompt := &survey.Password{
		Message: message,
		Help:    help,
	}

	err := survey.AskOne(prompt, &result, survey.WithValidator(survey.Required))
	return result, err
}
