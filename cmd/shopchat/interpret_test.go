package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/lojasmm/shopchat/internal/widget"
)

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	wd, wdErr := os.Getwd()
	require.NoError(t, wdErr)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("MESSAGING_URL", "")
	for _, k := range []string{"BUTTON_VARIANT", "BUTTON_SIZE", "BUTTON_WIDTH", "BUTTON_ALIGNMENT"} {
		t.Setenv(k, "")
	}

	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestInterpretCmd_StdinJSON(t *testing.T) {
	out, err := runCLI(t, `{"identifier":"e1","entryPayload":"Hello there","sender":{"role":"EndUser"}}`, "interpret")
	require.NoError(t, err)

	var view widget.ViewResponse
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, "e1", view.Identifier)
	assert.Equal(t, "Hello there", view.TextContent)
	assert.True(t, view.IsRichTextContent)
	assert.Equal(t, "embedded-messaging-message-content EndUser", view.MessageBubbleClass)
}

func TestInterpretCmd_PayloadYAML(t *testing.T) {
	payload := `{"abstractMessage":{"staticContent":{"text":"{\"contentType\":\"productRecommendations\",\"products\":[{\"name\":\"Shoe\"}]}"}}}`
	out, err := runCLI(t, "", "interpret", "--payload", payload, "--role", "Chatbot", "-o", "yaml")
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	assert.Equal(t, "productRecommendations", got["contentType"])
	assert.Equal(t, true, got["isProductRecommendations"])
	assert.Equal(t, []any{"Shoe"}, got["products"])
	assert.Equal(t, "slds-button slds-button_brand", got["buttonClass"])
}

func TestInterpretCmd_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "entry.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"entryPayload":"hi","sender":{"role":"Robot"}}`), 0644))

	out, err := runCLI(t, "", "interpret", "--file", path)
	require.NoError(t, err)

	var view widget.ViewResponse
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, "hi", view.TextContent)
	assert.Contains(t, view.Error, "Robot")
}

func TestInterpretCmd_Errors(t *testing.T) {
	_, err := runCLI(t, `not json`, "interpret")
	assert.Error(t, err)

	_, err = runCLI(t, "", "interpret", "--payload", "hi", "-o", "xml")
	assert.ErrorContains(t, err, "xml")
}
