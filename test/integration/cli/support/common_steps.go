package support

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/cucumber/godog"
)

// iRunCommand executes a command and stores the result.
func (testCtx *TestContext) iRunCommand(command string) error {
	command = testCtx.substituteCommandVariables(command)

	testCtx.LastCommand = command
	testCtx.LastStartTime = time.Now()

	parts := strings.Fields(command)
	if len(parts) == 0 {
		return errors.New("empty command")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, parts[0], parts[1:]...)
	cmd.Dir = testCtx.WorkingDir
	cmd.Env = append(os.Environ(), testCtx.EnvVars...)

	output, err := cmd.CombinedOutput()
	testCtx.LastOutput = string(output)
	testCtx.LastError = err
	testCtx.LastDuration = time.Since(testCtx.LastStartTime)

	if err != nil {
		exitError := &exec.ExitError{}
		if errors.As(err, &exitError) {
			testCtx.LastExitCode = exitError.ExitCode()
		} else {
			testCtx.LastExitCode = -1
		}
	} else {
		testCtx.LastExitCode = 0
	}

	return nil
}

// theCommandShouldSucceed verifies the command succeeded.
func (testCtx *TestContext) theCommandShouldSucceed() error {
	if testCtx.LastExitCode != 0 {
		return fmt.Errorf("command failed with exit code %d: %w\nOutput: %s",
			testCtx.LastExitCode, testCtx.LastError, testCtx.LastOutput)
	}
	return nil
}

// theCommandShouldFail verifies the command failed.
func (testCtx *TestContext) theCommandShouldFail() error {
	if testCtx.LastExitCode == 0 {
		return fmt.Errorf("command succeeded when it should have failed\nOutput: %s", testCtx.LastOutput)
	}
	return nil
}

// theOutputShouldContain verifies the output contains specific text.
func (testCtx *TestContext) theOutputShouldContain(expectedText string) error {
	if !strings.Contains(testCtx.LastOutput, expectedText) {
		return fmt.Errorf("output does not contain '%s'\nActual output: %s", expectedText, testCtx.LastOutput)
	}
	return nil
}

// theOutputShouldNotContain verifies the output lacks specific text.
func (testCtx *TestContext) theOutputShouldNotContain(text string) error {
	if strings.Contains(testCtx.LastOutput, text) {
		return fmt.Errorf("output unexpectedly contains '%s'\nActual output: %s", text, testCtx.LastOutput)
	}
	return nil
}

// jsonPart extracts the JSON document from output that may carry log lines.
func (testCtx *TestContext) jsonPart() (string, error) {
	output := strings.TrimSpace(testCtx.LastOutput)
	for i, r := range output {
		if r == '{' || r == '[' {
			return output[i:], nil
		}
	}
	return "", fmt.Errorf("no JSON found in output: %s", testCtx.LastOutput)
}

// theOutputShouldBeValidJSON verifies the output is valid JSON.
func (testCtx *TestContext) theOutputShouldBeValidJSON() error {
	part, err := testCtx.jsonPart()
	if err != nil {
		return err
	}
	var js json.RawMessage
	if err := json.Unmarshal([]byte(part), &js); err != nil {
		return fmt.Errorf("output is not valid JSON: %w\nJSON part: %s", err, part)
	}
	return nil
}

// theJSONShouldContain verifies JSON contains a specific dotted field path.
func (testCtx *TestContext) theJSONShouldContain(field string) error {
	part, err := testCtx.jsonPart()
	if err != nil {
		return err
	}

	var data map[string]interface{}
	if err := json.Unmarshal([]byte(part), &data); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}
	return checkFieldExists(data, field)
}

func checkFieldExists(data map[string]interface{}, field string) error {
	parts := strings.Split(field, ".")
	current := data

	for i, part := range parts {
		val, exists := current[part]
		if !exists {
			return fmt.Errorf("field '%s' not found in JSON", strings.Join(parts[:i+1], "."))
		}
		if i == len(parts)-1 {
			return nil
		}
		next, ok := val.(map[string]interface{})
		if !ok {
			return fmt.Errorf("cannot navigate deeper into non-object field '%s'", part)
		}
		current = next
	}
	return nil
}

// theErrorShouldMention verifies the error message contains specific text.
func (testCtx *TestContext) theErrorShouldMention(errorText string) error {
	if testCtx.LastError == nil && testCtx.LastExitCode == 0 {
		return fmt.Errorf("no error occurred, but expected error containing '%s'", errorText)
	}

	fullErrorText := testCtx.LastOutput
	if testCtx.LastError != nil {
		fullErrorText += " " + testCtx.LastError.Error()
	}

	if !strings.Contains(strings.ToLower(fullErrorText), strings.ToLower(errorText)) {
		return fmt.Errorf("error does not contain '%s'\nActual error: %s", errorText, fullErrorText)
	}
	return nil
}

// theFileShouldExist verifies a scenario file exists.
func (testCtx *TestContext) theFileShouldExist(name string) error {
	if _, err := os.Stat(testCtx.Path(name)); err != nil {
		return fmt.Errorf("file %s does not exist: %w", name, err)
	}
	return nil
}

// theFileShouldNotExist verifies a scenario file does not exist.
func (testCtx *TestContext) theFileShouldNotExist(name string) error {
	if _, err := os.Stat(testCtx.Path(name)); err == nil {
		return fmt.Errorf("file %s exists but should not", name)
	}
	return nil
}

// theOutputShouldListAvailableSubcommands verifies help lists subcommands.
func (testCtx *TestContext) theOutputShouldListAvailableSubcommands() error {
	if err := testCtx.theOutputShouldContain("Available Commands:"); err != nil {
		return err
	}
	for _, sub := range []string{"merge", "convert", "validate", "info", "preview", "serve"} {
		if err := testCtx.theOutputShouldContain(sub); err != nil {
			return err
		}
	}
	return nil
}

// theOutputShouldContainUsageInformation verifies usage text is shown.
func (testCtx *TestContext) theOutputShouldContainUsageInformation() error {
	return testCtx.theOutputShouldContain("Usage:")
}

// RegisterCommonSteps registers all common step definitions.
func (testCtx *TestContext) RegisterCommonSteps(sc *godog.ScenarioContext) {
	sc.Step(`^I run "([^"]*)"$`, testCtx.iRunCommand)
	sc.Step(`^the command should succeed$`, testCtx.theCommandShouldSucceed)
	sc.Step(`^the command should fail$`, testCtx.theCommandShouldFail)
	sc.Step(`^the output should contain "([^"]*)"$`, testCtx.theOutputShouldContain)
	sc.Step(`^the output should not contain "([^"]*)"$`, testCtx.theOutputShouldNotContain)
	sc.Step(`^the output should be valid JSON$`, testCtx.theOutputShouldBeValidJSON)
	sc.Step(`^the JSON should contain "([^"]*)"$`, testCtx.theJSONShouldContain)
	sc.Step(`^the error should mention "([^"]*)"$`, testCtx.theErrorShouldMention)
	sc.Step(`^the file "([^"]*)" should exist$`, testCtx.theFileShouldExist)
	sc.Step(`^the file "([^"]*)" should not exist$`, testCtx.theFileShouldNotExist)
	sc.Step(`^the output should list available subcommands$`, testCtx.theOutputShouldListAvailableSubcommands)
	sc.Step(`^the output should contain usage information$`, testCtx.theOutputShouldContainUsageInformation)
}
