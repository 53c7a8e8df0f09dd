package tui

import (
	"fmt"

	"github.com/charmbracelet/huh"
)

// MockPrompts replaces interactive prompts in tests.
type MockPrompts struct {
	PlaintextInputFunc func(title string) (string, error)
	HiddenInputFunc    func(title string) (string, error)
	ConfirmFunc        func(title string) (bool, error)
}

var mock *MockPrompts

func SetMock(m *MockPrompts) { mock = m }

func ClearMock() { mock = nil }

func PlaintextInput(title string) (string, error) {
	if mock != nil && mock.PlaintextInputFunc != nil {
		return mock.PlaintextInputFunc(title)
	}
	var result string
	err := huh.NewInput().
		Title(title).
		Value(&result).
		Run()
	if err != nil {
		return "", fmt.Errorf("prompt: %w", err)
	}
	return result, nil
}

func HiddenInput(title string) (string, error) {
	if mock != nil && mock.HiddenInputFunc != nil {
		return mock.HiddenInputFunc(title)
	}
	var result string
	err := huh.NewInput().
		Title(title).
		EchoMode(huh.EchoModePassword).
		Value(&result).
		Run()
	if err != nil {
		return "", fmt.Errorf("prompt: %w", err)
	}
	return result, nil
}

func Confirm(title string) (bool, error) {
	if mock != nil && mock.ConfirmFunc != nil {
		return mock.ConfirmFunc(title)
	}
	var ok bool
	err := huh.NewConfirm().
		Title(title).
		Affirmative("Yes").
		Negative("No").
		Value(&ok).
		Run()
	if err != nil {
		return false, fmt.Errorf("prompt: %w", err)
	}
	return ok, nil
}
