package cli

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func TestPrintOutput_SuccessData_OmitsErrorAndMessage(t *testing.T) {
	var buf bytes.Buffer
	printOutput(&buf, successData(map[string]string{"id": "e1"}))

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("envelope is not valid JSON: %v\n%s", err, buf.String())
	}

	want := map[string]any{
		"success": true,
		"data":    map[string]any{"id": "e1"},
	}
	if !reflect.DeepEqual(decoded, want) {
		t.Errorf("envelope = %v, want %v", decoded, want)
	}
}

func TestPrintOutput_Error_OmitsData(t *testing.T) {
	var buf bytes.Buffer
	printOutput(&buf, errorOutput("boom"))

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("envelope is not valid JSON: %v", err)
	}
	if decoded["success"] != false || decoded["error"] != "boom" {
		t.Errorf("envelope = %v", decoded)
	}
	if _, ok := decoded["data"]; ok {
		t.Error("error envelope should omit data")
	}
	if _, ok := decoded["message"]; ok {
		t.Error("error envelope should omit message")
	}
}

func TestPrintOutput_IsPrettyPrinted(t *testing.T) {
	var buf bytes.Buffer
	printOutput(&buf, successMsg("done"))

	out := buf.String()
	if !strings.Contains(out, "\n  \"success\": true") {
		t.Errorf("output not indented:\n%s", out)
	}
	if !strings.HasSuffix(out, "\n") {
		t.Error("output should end with a newline")
	}
}
